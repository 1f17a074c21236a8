package connection

import (
	"context"
	"log/slog"

	"github.com/cyborg-network/edge-connect/pkg/chain"
	"github.com/cyborg-network/edge-connect/pkg/transport"
)

// Handler implements the four dispatchable operations. The caller identity
// (who) has already been verified by the chain's signature check; handlers
// validate state, mutate the slot, and emit events. Each operation is
// atomic: the guard fails and nothing changes, or the single mutation plus
// its event commit together.
type Handler struct {
	state     *State
	transport transport.Transport
	events    EventSink
	log       *slog.Logger
}

// NewHandler wires the handler to its state, transport and event sink. A nil
// sink drops events.
func NewHandler(state *State, tr transport.Transport, events EventSink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = EventSinkFunc(func(context.Context, Event) {})
	}
	return &Handler{
		state:     state,
		transport: tr,
		events:    events,
		log:       logger.With("component", "connection"),
	}
}

// State exposes the slot for read-only collaborators.
func (h *Handler) State() *State {
	return h.state
}

// CreateConnection occupies the slot with the given connection id.
func (h *Handler) CreateConnection(ctx context.Context, who chain.AccountID, connection uint32) error {
	if err := h.state.Put(Connection{ID: connection, Owner: who}); err != nil {
		return err
	}
	h.log.Info("connection created", "connection", connection, "who", who)
	h.events.Record(ctx, Event{Type: EventConnectionCreated, Connection: connection, Who: who})
	return nil
}

// SendCommand forwards a command to the edge server. Fire-and-forget:
// delivery is reconciled by later relay cycles, so a transport failure is
// logged without failing the dispatch. No ledger mutation.
func (h *Handler) SendCommand(ctx context.Context, who chain.AccountID, command string) error {
	if !h.state.Exists() {
		return ErrConnectionDoesNotExist
	}
	if err := h.transport.SendCommand(ctx, command); err != nil {
		h.log.Warn("command delivery failed", "who", who, "err", err)
	}
	return nil
}

// ReceiveResponse reads the latest buffered edge-server response. Query
// shaped despite its dispatchable form: no ledger mutation.
func (h *Handler) ReceiveResponse(ctx context.Context, who chain.AccountID) (string, bool, error) {
	if !h.state.Exists() {
		return "", false, ErrConnectionDoesNotExist
	}
	response, ok := h.transport.PollResponse()
	return response, ok, nil
}

// RemoveConnection clears the slot. Any verified caller may remove the
// connection; the remover is not checked against the creator.
func (h *Handler) RemoveConnection(ctx context.Context, who chain.AccountID, connection uint32) error {
	if _, err := h.state.Take(); err != nil {
		return err
	}
	h.log.Info("connection removed", "connection", connection, "who", who)
	h.events.Record(ctx, Event{Type: EventConnectionRemoved, Connection: connection, Who: who})
	return nil
}
