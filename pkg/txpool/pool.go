// Package txpool is the transaction pool fed by the relay submitter and
// drained by the chain. Signed transactions enter directly; unsigned ones
// must pass the admission validator and are deduplicated by provides-tag for
// the tag's longevity window.
package txpool

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cyborg-network/edge-connect/pkg/admission"
	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// ErrTagSeen rejects an unsigned transaction whose provides-tag is still live.
var ErrTagSeen = errors.New("unsigned transaction tag already seen")

// HeightFunc reports the current block height, used to expire tags.
type HeightFunc func() chain.Height

// RejectionRecorder counts admission rejections, keeping them distinct from
// the submitter's submission failures. *telemetry.Provider implements it.
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, reason string)
}

// Pool buffers admitted transactions until the next block drains them.
type Pool struct {
	mu      sync.Mutex
	pending []chain.Transaction

	validator *admission.Validator
	tags      TagStore
	height    HeightFunc
	metrics   RejectionRecorder
	log       *slog.Logger
}

// New creates a pool. The height function anchors tag longevity; the tag
// store may be shared across processes (see RedisTagStore). metrics may be
// nil.
func New(validator *admission.Validator, tags TagStore, height HeightFunc, metrics RejectionRecorder, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		validator: validator,
		tags:      tags,
		height:    height,
		metrics:   metrics,
		log:       logger.With("component", "txpool"),
	}
}

// Add admits one transaction. Unsigned transactions are validated and
// tag-deduplicated; a rejection here is an admission failure, distinct from
// the submission failures reported by the submitter.
func (p *Pool) Add(ctx context.Context, tx chain.Transaction) error {
	if !tx.IsSigned() {
		decision, err := p.validator.Validate(tx.Call)
		if err != nil {
			p.log.Debug("unsigned transaction rejected",
				"tx", tx.ID, "call", tx.Call.Kind(), "err", err)
			p.recordRejection(ctx, "invalid")
			return err
		}
		fresh, err := p.tags.Admit(ctx, decision.ProvidesTag, p.height(), decision.Longevity)
		if err != nil {
			return err
		}
		if !fresh {
			p.log.Debug("duplicate unsigned transaction dropped",
				"tx", tx.ID, "call", tx.Call.Kind())
			p.recordRejection(ctx, "duplicate")
			return ErrTagSeen
		}
	}

	p.mu.Lock()
	p.pending = append(p.pending, tx)
	p.mu.Unlock()
	return nil
}

func (p *Pool) recordRejection(ctx context.Context, reason string) {
	if p.metrics != nil {
		p.metrics.RecordRejection(ctx, reason)
	}
}

// Drain removes and returns all pending transactions in admission order.
func (p *Pool) Drain() []chain.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	drained := p.pending
	p.pending = nil
	return drained
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
