// Package transport abstracts the channel between the node and the external
// edge server: outbound commands, inbound responses. Delivery semantics are
// fire-and-forget; the relay scheduler reconciles responses on later cycles.
package transport

import (
	"context"
	"sync"
)

// Transport carries commands to the edge server and buffers its responses.
type Transport interface {
	// SendCommand forwards one command. Delivery confirmation is not part of
	// this interface.
	SendCommand(ctx context.Context, command string) error

	// PollResponse returns the latest buffered response, if any, and clears
	// the buffer. It never blocks.
	PollResponse() (string, bool)
}

// Loopback is an in-memory transport that answers every command with an echo
// response. The buffer holds one response; a newer one replaces it. Used by
// the demo node and tests.
type Loopback struct {
	mu     sync.Mutex
	latest *string
	reply  func(command string) string
}

// NewLoopback creates a loopback transport with the default echo reply.
func NewLoopback() *Loopback {
	return &Loopback{
		reply: func(command string) string { return "ack:" + command },
	}
}

// WithReply overrides the reply function.
func (l *Loopback) WithReply(reply func(command string) string) *Loopback {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reply = reply
	return l
}

// SendCommand buffers the echoed response for the command.
func (l *Loopback) SendCommand(_ context.Context, command string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	resp := l.reply(command)
	l.latest = &resp
	return nil
}

// Push injects a response directly, replacing any buffered one.
func (l *Loopback) Push(response string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest = &response
}

// PollResponse consumes the buffered response.
func (l *Loopback) PollResponse() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.latest == nil {
		return "", false
	}
	resp := *l.latest
	l.latest = nil
	return resp, true
}
