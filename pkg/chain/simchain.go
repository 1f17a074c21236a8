package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ApplyFunc executes an included transaction against runtime state. Errors
// mean the transaction failed its own precondition re-validation; the block
// still advances.
type ApplyFunc func(ctx context.Context, tx Transaction) error

// SimChain is an in-memory ledger: a monotonic height, a parent-hash chain,
// and a transaction pool drained into each produced block. It serializes all
// state mutation through Advance, matching the single-writer-per-block
// execution model of a real chain.
type SimChain struct {
	mu     sync.RWMutex
	height Height
	hashes map[Height]Hash

	keys  Keystore
	pool  Pool
	apply ApplyFunc
	log   *slog.Logger
}

// NewSimChain creates a chain at height 0 with a genesis hash.
func NewSimChain(keys Keystore, pool Pool, logger *slog.Logger) *SimChain {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimChain{
		height: 0,
		hashes: map[Height]Hash{0: "genesis"},
		keys:   keys,
		pool:   pool,
		log:    logger.With("component", "simchain"),
	}
}

// OnApply installs the runtime execution hook for included transactions.
func (c *SimChain) OnApply(fn ApplyFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply = fn
}

// CurrentHeight returns the best block height.
func (c *SimChain) CurrentHeight() Height {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}

// BlockHash returns the hash of the block at the given height, or "" if the
// block does not exist.
func (c *SimChain) BlockHash(h Height) Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hashes[h]
}

// SubmitSigned signs the call with the local key of the given account and
// hands the transaction to the pool.
func (c *SimChain) SubmitSigned(ctx context.Context, signer AccountID, call Call) error {
	payload, err := EncodeCall(call)
	if err != nil {
		return err
	}
	sig, err := c.keys.Sign(signer, payload)
	if err != nil {
		return fmt.Errorf("failed to sign call for %s: %w", signer, err)
	}
	tx := Transaction{
		ID:        uuid.NewString(),
		Call:      call,
		Signer:    signer,
		Signature: sig,
	}
	return c.pool.Add(ctx, tx)
}

// SubmitUnsigned hands an unsigned transaction to the pool; the pool's
// admission validator decides whether it enters.
func (c *SimChain) SubmitUnsigned(ctx context.Context, call Call) error {
	tx := Transaction{
		ID:   uuid.NewString(),
		Call: call,
	}
	return c.pool.Add(ctx, tx)
}

// Advance produces one block: it bumps the height, extends the hash chain,
// drains the pool, and executes every included transaction through the apply
// hook. A transaction whose re-validation fails is logged and dropped; the
// block commits regardless.
func (c *SimChain) Advance(ctx context.Context) Height {
	c.mu.Lock()
	parent := c.hashes[c.height]
	c.height++
	next := c.height
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%d", parent, next)))
	c.hashes[next] = Hash(hex.EncodeToString(sum[:]))
	apply := c.apply
	c.mu.Unlock()

	if c.pool == nil {
		return next
	}
	for _, tx := range c.pool.Drain() {
		if apply == nil {
			continue
		}
		if err := apply(ctx, tx); err != nil {
			c.log.Warn("included transaction failed execution",
				"tx", tx.ID, "call", tx.Call.Kind(), "height", uint64(next), "err", err)
		}
	}
	return next
}
