// Command edge-node runs a relay node over the in-memory sim chain: local
// ed25519 signers, a transaction pool with unsigned admission control, the
// connection handlers, and a ticker-driven relay scheduler. With
// EDGE_SERVER_URL set it talks to a real edge server over websocket;
// otherwise it uses the loopback transport.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cyborg-network/edge-connect/pkg/admission"
	"github.com/cyborg-network/edge-connect/pkg/chain"
	"github.com/cyborg-network/edge-connect/pkg/config"
	"github.com/cyborg-network/edge-connect/pkg/connection"
	"github.com/cyborg-network/edge-connect/pkg/journal"
	"github.com/cyborg-network/edge-connect/pkg/keyring"
	"github.com/cyborg-network/edge-connect/pkg/relay"
	"github.com/cyborg-network/edge-connect/pkg/submit"
	"github.com/cyborg-network/edge-connect/pkg/telemetry"
	"github.com/cyborg-network/edge-connect/pkg/transport"
	"github.com/cyborg-network/edge-connect/pkg/transport/ws"
	"github.com/cyborg-network/edge-connect/pkg/txpool"
)

func main() {
	if err := run(); err != nil {
		slog.Error("edge-node failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	logger := slog.Default().With("node", cfg.NodeName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tm, err := telemetry.New(ctx, &telemetry.Config{
		ServiceName:    "edge-connect",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        cfg.OTLPEndpoint != "",
		Insecure:       true,
	})
	if err != nil {
		return fmt.Errorf("telemetry init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tm.Shutdown(shutdownCtx)
	}()

	keys := keyring.New()
	for i := 0; i < cfg.SignerCount; i++ {
		if _, err := keys.Generate(); err != nil {
			return fmt.Errorf("keyring init: %w", err)
		}
	}
	signers := keys.LocalSigners()
	logger.Info("keyring ready", "signers", len(signers))

	events := journal.New()
	var store *journal.Store
	if cfg.JournalPath != "" {
		store, err = journal.Open(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("journal store: %w", err)
		}
		defer func() { _ = store.Close() }()
	}
	sink := connection.EventSinkFunc(func(ctx context.Context, ev connection.Event) {
		seq, err := events.Append(ev.Type, string(ev.Who), map[string]interface{}{
			"connection": ev.Connection,
		})
		if err != nil {
			logger.Warn("event journaling failed", "event", ev.Type, "err", err)
			return
		}
		if store != nil {
			entry, _ := events.Get(seq)
			if entry != nil {
				if err := store.Persist(ctx, *entry); err != nil {
					logger.Warn("event persistence failed", "seq", seq, "err", err)
				}
			}
		}
	})

	var tr transport.Transport
	if cfg.EdgeURL != "" {
		client, err := ws.Dial(ctx, cfg.EdgeURL)
		if err != nil {
			return fmt.Errorf("edge transport: %w", err)
		}
		defer func() { _ = client.Close() }()
		tr = client
		logger.Info("edge transport connected", "url", cfg.EdgeURL)
	} else {
		tr = transport.NewLoopback()
		logger.Info("edge transport in loopback mode")
	}

	state := connection.NewState()
	handler := connection.NewHandler(state, tr, sink, logger)

	var sim *chain.SimChain
	var tags txpool.TagStore
	if cfg.RedisAddr != "" {
		rts := txpool.NewRedisTagStore(cfg.RedisAddr, "", 0, cfg.TickInterval)
		if err := rts.Ping(ctx); err != nil {
			return err
		}
		tags = rts
	} else {
		tags = txpool.NewMemoryTagStore()
	}
	pool := txpool.New(admission.NewValidator(), tags, func() chain.Height {
		if sim == nil {
			return 0
		}
		return sim.CurrentHeight()
	}, tm, logger)
	sim = chain.NewSimChain(keys, pool, logger)
	sim.OnApply(applyFunc(handler, state, events, logger))

	submitter := submit.NewSubmitter(sim, keys, logger)
	scheduler := relay.NewScheduler(sim, keys, tr, submitter, tm, logger)

	// Bootstrap: the first local account opens the connection and sends an
	// initial command for the relay to pick up.
	if len(signers) > 0 {
		if err := sim.SubmitSigned(ctx, signers[0], chain.CreateConnection{Connection: 1}); err != nil {
			return fmt.Errorf("bootstrap create_connection: %w", err)
		}
	}

	logger.Info("edge-node running", "tick", cfg.TickInterval.String())
	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			logger.Info("edge-node stopping")
			return nil
		case <-ticker.C:
			tick++
			height := sim.Advance(ctx)
			if err := scheduler.RunCycle(ctx, height); err != nil {
				// The next cycle starts from scratch.
				continue
			}
			if tick%4 == 0 && len(signers) > 0 && state.Exists() {
				cmd := fmt.Sprintf("status-check-%d", tick)
				if err := sim.SubmitSigned(ctx, signers[0], chain.SendCommand{Command: cmd}); err != nil {
					logger.Warn("send_command submission failed", "err", err)
				}
			}
		}
	}
}

func applyFunc(handler *connection.Handler, state *connection.State, events *journal.Journal, logger *slog.Logger) chain.ApplyFunc {
	return func(ctx context.Context, tx chain.Transaction) error {
		switch call := tx.Call.(type) {
		case chain.CreateConnection:
			return handler.CreateConnection(ctx, tx.Signer, call.Connection)
		case chain.SendCommand:
			return handler.SendCommand(ctx, tx.Signer, call.Command)
		case chain.ReceiveResponse:
			_, _, err := handler.ReceiveResponse(ctx, tx.Signer)
			return err
		case chain.RemoveConnection:
			return handler.RemoveConnection(ctx, tx.Signer, call.Connection)
		case chain.RecordResponse:
			return recordResponse(state, events, call.Response, string(who(tx.Signer, call.Public)))
		case chain.RecordResponseRaw:
			return recordResponse(state, events, call.Response, "")
		default:
			return fmt.Errorf("unknown call kind %q", tx.Call.Kind())
		}
	}
}

// recordResponse re-validates its precondition at execution time: a relay
// transaction landing after the connection was removed fails cleanly instead
// of double-applying.
func recordResponse(state *connection.State, events *journal.Journal, response, who string) error {
	if !state.Exists() {
		return connection.ErrConnectionDoesNotExist
	}
	_, err := events.Append("relay.response", who, map[string]interface{}{
		"response": response,
	})
	return err
}

func who(signer, public chain.AccountID) chain.AccountID {
	if signer != "" {
		return signer
	}
	return public
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
