package connection

import (
	"context"

	"github.com/cyborg-network/edge-connect/pkg/chain"
)

// Event types emitted by the handlers.
const (
	EventConnectionCreated = "connection.created"
	EventConnectionRemoved = "connection.removed"
)

// Event records a successful connection lifecycle change. [connection, who]
type Event struct {
	Type       string
	Connection uint32
	Who        chain.AccountID
}

// EventSink consumes handler events, typically by appending them to the
// journal.
type EventSink interface {
	Record(ctx context.Context, ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev Event)

// Record calls f.
func (f EventSinkFunc) Record(ctx context.Context, ev Event) {
	f(ctx, ev)
}
