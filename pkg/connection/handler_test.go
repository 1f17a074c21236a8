package connection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyborg-network/edge-connect/pkg/transport"
)

func newTestHandler(t *testing.T) (*Handler, *transport.Loopback, *[]Event) {
	t.Helper()
	var events []Event
	sink := EventSinkFunc(func(_ context.Context, ev Event) {
		events = append(events, ev)
	})
	lo := transport.NewLoopback()
	return NewHandler(NewState(), lo, sink, nil), lo, &events
}

func TestCreateThenRemoveEmitsEventsInOrder(t *testing.T) {
	h, _, events := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.CreateConnection(ctx, "alice", 7))
	require.NoError(t, h.RemoveConnection(ctx, "alice", 7))

	require.Len(t, *events, 2)
	assert.Equal(t, Event{Type: EventConnectionCreated, Connection: 7, Who: "alice"}, (*events)[0])
	assert.Equal(t, Event{Type: EventConnectionRemoved, Connection: 7, Who: "alice"}, (*events)[1])
	assert.False(t, h.State().Exists())
}

func TestCreateConnectionRejectsSecond(t *testing.T) {
	h, _, events := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.CreateConnection(ctx, "alice", 5))
	err := h.CreateConnection(ctx, "bob", 5)
	require.ErrorIs(t, err, ErrConnectionAlreadyExists)

	// No event for the failed call, slot still holds 5.
	assert.Len(t, *events, 1)
	got, ok := h.State().Get()
	require.True(t, ok)
	assert.Equal(t, uint32(5), got.ID)
	assert.Equal(t, "alice", string(got.Owner))
}

func TestOperationsRequireConnection(t *testing.T) {
	h, _, events := newTestHandler(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.SendCommand(ctx, "alice", "restart"), ErrConnectionDoesNotExist)
	_, _, err := h.ReceiveResponse(ctx, "alice")
	assert.ErrorIs(t, err, ErrConnectionDoesNotExist)
	assert.ErrorIs(t, h.RemoveConnection(ctx, "alice", 1), ErrConnectionDoesNotExist)
	assert.Empty(t, *events)
}

func TestSendCommandForwardsToTransport(t *testing.T) {
	h, _, _ := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.CreateConnection(ctx, "alice", 1))
	require.NoError(t, h.SendCommand(ctx, "alice", "reboot"))

	// Loopback echoes the command; ReceiveResponse consumes it.
	resp, ok, err := h.ReceiveResponse(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ack:reboot", resp)

	// Buffer is consumed: no second response.
	_, ok, err = h.ReceiveResponse(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveConnectionIsPermissive(t *testing.T) {
	h, _, events := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, h.CreateConnection(ctx, "alice", 9))
	// Any verified caller may remove; the remover is not the creator.
	require.NoError(t, h.RemoveConnection(ctx, "mallory", 9))

	require.Len(t, *events, 2)
	assert.Equal(t, "mallory", string((*events)[1].Who))
}
