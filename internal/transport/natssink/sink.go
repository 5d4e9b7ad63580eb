// Package natssink publishes proposal payloads to a NATS subject.
package natssink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/JonMunkholm/proposals/internal/core"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "proposals.submitted"

// Conn is the subset of *nats.Conn the sink uses.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// Sink publishes each payload as one JSON message.
type Sink struct {
	conn    Conn
	subject string
}

// New returns a Sink publishing on subject.
func New(conn Conn, subject string) *Sink {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Sink{conn: conn, subject: subject}
}

// Connect dials a NATS server for use with New.
func Connect(url, name string, timeout time.Duration) (*nats.Conn, error) {
	if url == "" {
		return nil, errors.New("natssink: server URL is required")
	}
	opts := []nats.Option{nats.Name(name)}
	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Send implements core.Transmitter. The message is flushed so that a
// nil return means the server received it.
func (s *Sink) Send(ctx context.Context, p core.Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return fmt.Errorf("%w: publish %s: %v", core.ErrTransmit, s.subject, err)
	}

	flushCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(ctx, nats.DefaultTimeout)
		defer cancel()
	}
	if err := s.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("%w: flush %s: %v", core.ErrTransmit, s.subject, err)
	}
	return nil
}
