package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// ErrNoLocalSigners reports that a strategy requiring local accounts found
// none.
var ErrNoLocalSigners = errors.New("no local signing accounts available")

// AccountResult is the submission result for one attempted account.
type AccountResult struct {
	Account chain.AccountID
	Err     error
}

// Outcome aggregates one strategy dispatch. It is logged, never persisted.
type Outcome struct {
	ID       string
	Strategy TransactionType
	Results  []AccountResult
}

// Succeeded counts accounts whose submission was accepted.
func (o Outcome) Succeeded() int {
	n := 0
	for _, r := range o.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts accounts whose submission errored.
func (o Outcome) Failed() int {
	return len(o.Results) - o.Succeeded()
}

// Submitter dispatches relay payloads to the chain under a chosen strategy.
type Submitter struct {
	chain chain.Client
	keys  chain.Keystore
	log   *slog.Logger
}

// NewSubmitter wires the submitter to the chain client and keystore.
func NewSubmitter(client chain.Client, keys chain.Keystore, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		chain: client,
		keys:  keys,
		log:   logger.With("component", "submitter"),
	}
}

// Submit relays the response under the given strategy. Per-account
// strategies (Signed, UnsignedForAll) report individual failures in the
// Outcome without discarding successes; single-shot strategies
// (UnsignedForAny, RawUnsigned) fail the whole cycle. Errors returned here
// are submission failures; admission rejections surface separately in pool
// telemetry.
func (s *Submitter) Submit(ctx context.Context, strategy TransactionType, height chain.Height, response string) (Outcome, error) {
	outcome := Outcome{
		ID:       uuid.NewString(),
		Strategy: strategy,
	}

	switch strategy {
	case TypeNone:
		return outcome, nil
	case TypeSigned:
		return s.signedForAll(ctx, outcome, height, response)
	case TypeUnsignedForAny:
		return s.unsignedForAny(ctx, outcome, height, response)
	case TypeUnsignedForAll:
		return s.unsignedForAll(ctx, outcome, height, response)
	case TypeRawUnsigned:
		return s.rawUnsigned(ctx, outcome, height, response)
	default:
		return outcome, fmt.Errorf("unknown transaction type %d", strategy)
	}
}

// signedForAll submits one signed transaction per local signer. One
// account's failure does not block the others.
func (s *Submitter) signedForAll(ctx context.Context, outcome Outcome, height chain.Height, response string) (Outcome, error) {
	signers := s.keys.LocalSigners()
	if len(signers) == 0 {
		return outcome, ErrNoLocalSigners
	}

	for _, signer := range signers {
		call := chain.RecordResponse{Response: response, Height: height}
		err := s.chain.SubmitSigned(ctx, signer, call)
		outcome.Results = append(outcome.Results, AccountResult{Account: signer, Err: err})
		if err != nil {
			s.log.Warn("signed submission failed", "account", signer, "height", uint64(height), "err", err)
		}
	}
	return outcome, nil
}

// unsignedForAny embeds the first local signer's identity in a single
// unsigned transaction. Whole-cycle failure unit.
func (s *Submitter) unsignedForAny(ctx context.Context, outcome Outcome, height chain.Height, response string) (Outcome, error) {
	signers := s.keys.LocalSigners()
	if len(signers) == 0 {
		return outcome, ErrNoLocalSigners
	}

	signer := signers[0]
	call := chain.RecordResponse{Response: response, Height: height, Public: signer}
	err := s.chain.SubmitUnsigned(ctx, call)
	outcome.Results = append(outcome.Results, AccountResult{Account: signer, Err: err})
	if err != nil {
		return outcome, fmt.Errorf("unsigned-for-any submission failed: %w", err)
	}
	return outcome, nil
}

// unsignedForAll submits one unsigned transaction per local signer's
// identity, each independently.
func (s *Submitter) unsignedForAll(ctx context.Context, outcome Outcome, height chain.Height, response string) (Outcome, error) {
	signers := s.keys.LocalSigners()
	if len(signers) == 0 {
		return outcome, ErrNoLocalSigners
	}

	for _, signer := range signers {
		call := chain.RecordResponse{Response: response, Height: height, Public: signer}
		err := s.chain.SubmitUnsigned(ctx, call)
		outcome.Results = append(outcome.Results, AccountResult{Account: signer, Err: err})
		if err != nil {
			s.log.Warn("unsigned submission failed", "account", signer, "height", uint64(height), "err", err)
		}
	}
	return outcome, nil
}

// rawUnsigned submits the bespoke identity-free payload. Whole-cycle failure
// unit.
func (s *Submitter) rawUnsigned(ctx context.Context, outcome Outcome, height chain.Height, response string) (Outcome, error) {
	call := chain.RecordResponseRaw{Response: response, Height: height}
	err := s.chain.SubmitUnsigned(ctx, call)
	outcome.Results = append(outcome.Results, AccountResult{Err: err})
	if err != nil {
		return outcome, fmt.Errorf("raw unsigned submission failed: %w", err)
	}
	return outcome, nil
}
