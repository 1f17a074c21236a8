package keyring

import (
	"testing"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

func TestGenerateAndSign(t *testing.T) {
	k := New()
	id, err := k.Generate()
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("record_response")
	sig, err := k.Sign(id, msg)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := Verify(id, msg, sig)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}

	ok, err = Verify(id, []byte("tampered"), sig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected tampered message to fail verification")
	}
}

func TestSignUnknownKey(t *testing.T) {
	k := New()
	if _, err := k.Sign("deadbeef", []byte("msg")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLocalSignersStableOrder(t *testing.T) {
	k := New()
	for i := 0; i < 5; i++ {
		if _, err := k.Generate(); err != nil {
			t.Fatal(err)
		}
	}

	first := k.LocalSigners()
	if len(first) != 5 {
		t.Fatalf("expected 5 signers, got %d", len(first))
	}
	for i := 0; i < 3; i++ {
		again := k.LocalSigners()
		for j := range first {
			if first[j] != again[j] {
				t.Fatal("expected stable enumeration order")
			}
		}
	}
	for i := 1; i < len(first); i++ {
		if !(first[i-1] < first[i]) {
			t.Fatal("expected lexicographic order")
		}
	}
}

func TestRemoveKey(t *testing.T) {
	k := New()
	id, err := k.Generate()
	if err != nil {
		t.Fatal(err)
	}
	k.RemoveKey(id)
	if len(k.LocalSigners()) != 0 {
		t.Fatal("expected empty keyring")
	}
	var _ chain.Keystore = k
}
