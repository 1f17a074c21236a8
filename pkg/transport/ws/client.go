// Package ws implements the transport.Transport interface over a websocket
// connection to a real edge server.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	defaultWriteTimeout = 10 * time.Second

	// Outbound command budget; edge servers are not built for bursts.
	defaultCommandRate  = rate.Limit(10)
	defaultCommandBurst = 20
)

// Client is a websocket transport to an edge server. A reader goroutine
// buffers the most recent text message; an older unread response is replaced
// by a newer one.
type Client struct {
	conn    *websocket.Conn
	limiter *rate.Limiter
	log     *slog.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	latest *string

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter overrides the outbound command rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// Dial connects to the edge server at the given ws:// or wss:// URL.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial edge server %s: %w", url, err)
	}

	c := &Client{
		conn:    conn,
		limiter: rate.NewLimiter(defaultCommandRate, defaultCommandBurst),
		log:     slog.Default().With("component", "ws-transport"),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop()
	return c, nil
}

// SendCommand writes one command as a text message, subject to the outbound
// rate limiter.
func (c *Client) SendCommand(ctx context.Context, command string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("command rate limiter: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(command)); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// PollResponse consumes the buffered response, if any. Never blocks.
func (c *Client) PollResponse() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return "", false
	}
	resp := *c.latest
	c.latest = nil
	return resp, true
}

// Close tears down the connection and stops the reader.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.Warn("edge server read failed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		resp := string(msg)
		c.mu.Lock()
		if c.latest != nil {
			c.log.Debug("replacing unread edge response")
		}
		c.latest = &resp
		c.mu.Unlock()
	}
}
