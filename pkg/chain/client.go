package chain

import "context"

// Client is the ledger submission surface consumed by the relay core.
type Client interface {
	// CurrentHeight returns the best known block height.
	CurrentHeight() Height

	// BlockHash returns the hash of the block at the given height.
	BlockHash(h Height) Hash

	// SubmitSigned builds, signs and submits one transaction attributed to
	// the given local account.
	SubmitSigned(ctx context.Context, signer AccountID, call Call) error

	// SubmitUnsigned submits one unsigned transaction; admission is decided
	// by the pool's unsigned-call validator.
	SubmitUnsigned(ctx context.Context, call Call) error
}

// Keystore enumerates and signs with the node's local accounts.
type Keystore interface {
	// LocalSigners returns the available local signing accounts in a stable
	// order.
	LocalSigners() []AccountID

	// Sign signs msg with the private key of the given account.
	Sign(id AccountID, msg []byte) ([]byte, error)
}

// Pool admits transactions for inclusion in a future block.
type Pool interface {
	Add(ctx context.Context, tx Transaction) error
	Drain() []Transaction
}
