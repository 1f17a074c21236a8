package submit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

type fakeKeystore struct {
	signers []chain.AccountID
}

func (f *fakeKeystore) LocalSigners() []chain.AccountID { return f.signers }

func (f *fakeKeystore) Sign(chain.AccountID, []byte) ([]byte, error) { return []byte("sig"), nil }

type submission struct {
	signer chain.AccountID
	call   chain.Call
	signed bool
}

type fakeClient struct {
	height      chain.Height
	failSigners map[chain.AccountID]error
	failAll     error
	submissions []submission
}

func (f *fakeClient) CurrentHeight() chain.Height { return f.height }

func (f *fakeClient) BlockHash(chain.Height) chain.Hash { return "hash" }

func (f *fakeClient) SubmitSigned(_ context.Context, signer chain.AccountID, call chain.Call) error {
	if err, ok := f.failSigners[signer]; ok {
		return err
	}
	f.submissions = append(f.submissions, submission{signer: signer, call: call, signed: true})
	return nil
}

func (f *fakeClient) SubmitUnsigned(_ context.Context, call chain.Call) error {
	if f.failAll != nil {
		return f.failAll
	}
	if rr, ok := call.(chain.RecordResponse); ok {
		if err, found := f.failSigners[rr.Public]; found {
			return err
		}
	}
	f.submissions = append(f.submissions, submission{call: call})
	return nil
}

func threeSigners() *fakeKeystore {
	return &fakeKeystore{signers: []chain.AccountID{"alice", "bob", "carol"}}
}

func TestSignedSubmitsPerAccount(t *testing.T) {
	client := &fakeClient{}
	s := NewSubmitter(client, threeSigners(), nil)

	outcome, err := s.Submit(context.Background(), TypeSigned, 8, "resp")
	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Succeeded())
	assert.Equal(t, 0, outcome.Failed())
	require.Len(t, client.submissions, 3)
	for _, sub := range client.submissions {
		assert.True(t, sub.signed)
	}
}

func TestSignedToleratesOneAccountFailure(t *testing.T) {
	client := &fakeClient{
		failSigners: map[chain.AccountID]error{"bob": errors.New("keystore locked")},
	}
	s := NewSubmitter(client, threeSigners(), nil)

	outcome, err := s.Submit(context.Background(), TypeSigned, 8, "resp")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Succeeded())
	assert.Equal(t, 1, outcome.Failed())
	assert.Len(t, client.submissions, 2)

	// The failing account is reported, the others are not discarded.
	for _, r := range outcome.Results {
		if r.Account == "bob" {
			assert.Error(t, r.Err)
		} else {
			assert.NoError(t, r.Err)
		}
	}
}

func TestUnsignedForAnyPicksOneSigner(t *testing.T) {
	client := &fakeClient{}
	s := NewSubmitter(client, threeSigners(), nil)

	outcome, err := s.Submit(context.Background(), TypeUnsignedForAny, 9, "resp")
	require.NoError(t, err)
	require.Len(t, client.submissions, 1)

	call, ok := client.submissions[0].call.(chain.RecordResponse)
	require.True(t, ok)
	assert.Equal(t, chain.AccountID("alice"), call.Public)
	assert.Equal(t, 1, outcome.Succeeded())
}

func TestUnsignedForAnyFailsWholeCycle(t *testing.T) {
	client := &fakeClient{failAll: errors.New("pool full")}
	s := NewSubmitter(client, threeSigners(), nil)

	_, err := s.Submit(context.Background(), TypeUnsignedForAny, 9, "resp")
	require.Error(t, err)
	assert.Empty(t, client.submissions)
}

func TestUnsignedForAllSubmitsPerIdentity(t *testing.T) {
	client := &fakeClient{
		failSigners: map[chain.AccountID]error{"carol": errors.New("rejected")},
	}
	s := NewSubmitter(client, threeSigners(), nil)

	outcome, err := s.Submit(context.Background(), TypeUnsignedForAll, 10, "resp")
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Succeeded())
	assert.Equal(t, 1, outcome.Failed())

	seen := map[chain.AccountID]bool{}
	for _, sub := range client.submissions {
		call, ok := sub.call.(chain.RecordResponse)
		require.True(t, ok)
		seen[call.Public] = true
	}
	assert.True(t, seen["alice"])
	assert.True(t, seen["bob"])
}

func TestRawUnsignedCarriesNoIdentity(t *testing.T) {
	client := &fakeClient{}
	s := NewSubmitter(client, threeSigners(), nil)

	_, err := s.Submit(context.Background(), TypeRawUnsigned, 11, "resp")
	require.NoError(t, err)
	require.Len(t, client.submissions, 1)

	call, ok := client.submissions[0].call.(chain.RecordResponseRaw)
	require.True(t, ok)
	assert.Equal(t, chain.Height(11), call.Height)
}

func TestNoneSubmitsNothing(t *testing.T) {
	client := &fakeClient{}
	s := NewSubmitter(client, threeSigners(), nil)

	outcome, err := s.Submit(context.Background(), TypeNone, 12, "")
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.Empty(t, client.submissions)
}

func TestStrategiesRequireSigners(t *testing.T) {
	for _, strategy := range []TransactionType{TypeSigned, TypeUnsignedForAny, TypeUnsignedForAll} {
		t.Run(fmt.Sprintf("%v", strategy), func(t *testing.T) {
			s := NewSubmitter(&fakeClient{}, &fakeKeystore{}, nil)
			_, err := s.Submit(context.Background(), strategy, 5, "resp")
			assert.ErrorIs(t, err, ErrNoLocalSigners)
		})
	}
}
