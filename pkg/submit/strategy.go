// Package submit turns a relayed edge-server response into ledger
// transactions, under one of five mutually exclusive submission strategies.
package submit

// TransactionType is the closed set of submission strategies.
type TransactionType uint8

const (
	// TypeNone submits nothing this cycle.
	TypeNone TransactionType = iota
	// TypeSigned submits one signed transaction per local signer.
	TypeSigned
	// TypeUnsignedForAny submits one unsigned transaction embedding a single
	// local signer's public identity.
	TypeUnsignedForAny
	// TypeUnsignedForAll submits one unsigned transaction per local signer's
	// identity, independently.
	TypeUnsignedForAll
	// TypeRawUnsigned submits one bespoke unsigned transaction keyed by
	// height, with no signer identity embedded.
	TypeRawUnsigned
)

// String names the strategy for logs and telemetry.
func (t TransactionType) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeSigned:
		return "signed"
	case TypeUnsignedForAny:
		return "unsigned-for-any"
	case TypeUnsignedForAll:
		return "unsigned-for-all"
	case TypeRawUnsigned:
		return "raw-unsigned"
	default:
		return "unknown"
	}
}
