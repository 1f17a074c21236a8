package connection

import (
	"errors"
	"testing"
)

func TestStatePutTake(t *testing.T) {
	s := NewState()
	if s.Exists() {
		t.Fatal("expected empty slot")
	}

	if err := s.Put(Connection{ID: 7, Owner: "alice"}); err != nil {
		t.Fatal(err)
	}
	if !s.Exists() {
		t.Fatal("expected occupied slot")
	}

	prior, err := s.Take()
	if err != nil {
		t.Fatal(err)
	}
	if prior.ID != 7 {
		t.Fatalf("expected prior id 7, got %d", prior.ID)
	}
	if s.Exists() {
		t.Fatal("expected empty slot after take")
	}
}

func TestStatePutOccupied(t *testing.T) {
	s := NewState()
	if err := s.Put(Connection{ID: 5, Owner: "alice"}); err != nil {
		t.Fatal(err)
	}

	err := s.Put(Connection{ID: 6, Owner: "bob"})
	if !errors.Is(err, ErrConnectionAlreadyExists) {
		t.Fatalf("expected ErrConnectionAlreadyExists, got %v", err)
	}

	// Slot unchanged on failure.
	got, ok := s.Get()
	if !ok || got.ID != 5 {
		t.Fatalf("expected slot to still hold 5, got %+v ok=%v", got, ok)
	}
}

func TestStateTakeEmpty(t *testing.T) {
	s := NewState()
	_, err := s.Take()
	if !errors.Is(err, ErrConnectionDoesNotExist) {
		t.Fatalf("expected ErrConnectionDoesNotExist, got %v", err)
	}
}
