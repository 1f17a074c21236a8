// Package admission decides which unsigned transactions the pool accepts.
// Unsigned relay transactions carry no signature or economic stake, so the
// provides-tag plus longevity scheme implemented here is the only replay and
// spam protection they get.
package admission

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/blake2b"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// TagNamespace is the constant prefix of every provides-tag, separating
// edge-connect tags from any other unsigned traffic in the pool.
const TagNamespace = "edge-connect"

const (
	// UnsignedPriority orders admitted relay transactions within the pool.
	UnsignedPriority uint64 = 100

	// UnsignedLongevity bounds, in blocks, how long an unconfirmed unsigned
	// transaction stays eligible.
	UnsignedLongevity uint32 = 3
)

// ErrInvalidTransaction rejects call shapes the validator does not recognize.
var ErrInvalidTransaction = errors.New("invalid unsigned transaction call")

// Decision is the pool admission verdict for an accepted unsigned call.
type Decision struct {
	ProvidesTag []byte
	Priority    uint64
	Longevity   uint32
	Propagate   bool
}

// Validator is the unsigned-call admission rule. It is pure: the decision is
// a deterministic function of the call's logical identity.
type Validator struct{}

// NewValidator creates the validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate admits the two relay-produced unsigned call shapes and rejects
// everything else. Logically identical calls always map to the same
// provides-tag, so the pool deduplicates resubmissions.
func (v *Validator) Validate(call chain.Call) (Decision, error) {
	switch c := call.(type) {
	case chain.RecordResponse:
		return accept(providesTag(c.Kind(), c.Height, c.Public)), nil
	case chain.RecordResponseRaw:
		return accept(providesTag(c.Kind(), c.Height, "")), nil
	default:
		return Decision{}, ErrInvalidTransaction
	}
}

func accept(tag []byte) Decision {
	return Decision{
		ProvidesTag: tag,
		Priority:    UnsignedPriority,
		Longevity:   UnsignedLongevity,
		Propagate:   true,
	}
}

// providesTag hashes the call's logical identity: namespace, call kind,
// producing height, and (for identity-bearing calls) the embedded public.
// Height and public are part of the identity so independent submissions from
// distinct cycles or distinct local signers stay distinguishable.
func providesTag(kind chain.CallKind, height chain.Height, public chain.AccountID) []byte {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(TagNamespace))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	h.Write([]byte{0})
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(height))
	h.Write(buf[:])
	h.Write([]byte(public))
	return h.Sum(nil)
}
