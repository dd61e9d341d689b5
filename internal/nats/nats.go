// Package nats wraps a NATS connection for fire-and-forget event publishing.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Client publishes messages to NATS subjects.
type Client struct {
	conn *nats.Conn
}

// Connect dials the NATS server with sane reconnect defaults.
func Connect(url, name string) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Publish sends data to subject. The context deadline, when set, bounds the
// flush wait.
func (c *Client) Publish(ctx context.Context, subject string, data []byte) error {
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		return c.conn.FlushTimeout(time.Until(deadline))
	}
	return c.conn.FlushTimeout(5 * time.Second)
}

// Close drains and closes the connection.
func (c *Client) Close() {
	if c.conn != nil {
		_ = c.conn.Drain()
	}
}
