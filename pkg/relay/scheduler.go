// Package relay runs the per-cycle off-chain relay process: it enumerates
// local signers, polls the edge transport for a pending response, picks a
// submission strategy deterministically from the block height, and dispatches
// to the submitter. It only proposes transactions; its view of ledger state
// is read-only and may be stale, so every committed transaction re-validates
// its own preconditions when executed.
package relay

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cyborg-network/edge-connect/pkg/chain"
	"github.com/cyborg-network/edge-connect/pkg/submit"
	"github.com/cyborg-network/edge-connect/pkg/telemetry"
	"github.com/cyborg-network/edge-connect/pkg/transport"
)

// ErrNoLocalSigners ends a cycle that has no local accounts to work with.
// Non-fatal: the next cycle starts from scratch. Shared with the submitter so
// errors.Is matches regardless of which layer noticed first.
var ErrNoLocalSigners = submit.ErrNoLocalSigners

// CycleContext is the ephemeral per-cycle input. Never persisted.
type CycleContext struct {
	Height       chain.Height
	ParentHash   chain.Hash
	LocalSigners []chain.AccountID
}

// Scheduler is the per-cycle relay entry point, invoked once per block by the
// host's cycle-completion hook.
type Scheduler struct {
	chain     chain.Client
	keys      chain.Keystore
	transport transport.Transport
	submitter *submit.Submitter
	telemetry *telemetry.Provider
	log       *slog.Logger
}

// NewScheduler wires a scheduler. telemetry may be nil.
func NewScheduler(client chain.Client, keys chain.Keystore, tr transport.Transport, submitter *submit.Submitter, tm *telemetry.Provider, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		chain:     client,
		keys:      keys,
		transport: tr,
		submitter: submitter,
		telemetry: tm,
		log:       logger.With("component", "relay"),
	}
}

// RunCycle executes one relay cycle for the given height. Every step is a
// potential early exit; errors are logged and end the cycle with no retry and
// no rollback, since nothing was persisted.
func (s *Scheduler) RunCycle(ctx context.Context, height chain.Height) error {
	start := time.Now()

	ctx, span := s.telemetry.Tracer().Start(ctx, "relay.cycle",
		trace.WithAttributes(attribute.Int64("height", int64(height))))
	defer span.End()

	cctx := CycleContext{Height: height}

	cctx.LocalSigners = s.keys.LocalSigners()
	if len(cctx.LocalSigners) == 0 {
		s.log.Error("relay cycle skipped", "height", uint64(height), "err", ErrNoLocalSigners)
		span.RecordError(ErrNoLocalSigners)
		s.recordCycle(ctx, submit.TypeNone, true, start)
		return ErrNoLocalSigners
	}

	// Parent hash is recorded for auditability only.
	if height > 0 {
		cctx.ParentHash = s.chain.BlockHash(height - 1)
	}
	s.log.Debug("relay cycle started",
		"height", uint64(height), "parent_hash", string(cctx.ParentHash),
		"signers", len(cctx.LocalSigners))

	response, pending := s.transport.PollResponse()
	strategy := ChooseTransactionType(height, pending)
	span.SetAttributes(attribute.String("strategy", strategy.String()))

	outcome, err := s.submitter.Submit(ctx, strategy, height, response)
	if err != nil {
		s.log.Error("relay submission failed",
			"height", uint64(height), "strategy", strategy.String(), "err", err)
		span.RecordError(err)
		s.recordCycle(ctx, strategy, true, start)
		s.telemetry.RecordSubmission(ctx, strategy.String(), outcome.Succeeded(), outcome.Failed())
		return err
	}

	if strategy != submit.TypeNone {
		s.log.Info("relay cycle submitted",
			"height", uint64(height), "strategy", strategy.String(),
			"outcome", outcome.ID, "ok", outcome.Succeeded(), "failed", outcome.Failed())
	}
	s.recordCycle(ctx, strategy, false, start)
	s.telemetry.RecordSubmission(ctx, strategy.String(), outcome.Succeeded(), outcome.Failed())
	return nil
}

func (s *Scheduler) recordCycle(ctx context.Context, strategy submit.TransactionType, failed bool, start time.Time) {
	s.telemetry.RecordCycle(ctx, strategy.String(), failed, time.Since(start))
}

// ChooseTransactionType maps the current height to a submission strategy. It
// is a pure function, reproducible by any node for the same height: no
// wall-clock, no randomness, no I/O. With nothing pending there is nothing to
// relay, so the cycle submits nothing; otherwise the strategy rotates through
// the four submission paths by height modulo 4.
func ChooseTransactionType(height chain.Height, pending bool) submit.TransactionType {
	if !pending {
		return submit.TypeNone
	}
	switch height % 4 {
	case 0:
		return submit.TypeSigned
	case 1:
		return submit.TypeUnsignedForAny
	case 2:
		return submit.TypeUnsignedForAll
	default:
		return submit.TypeRawUnsigned
	}
}
