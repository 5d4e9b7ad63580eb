// Package httpsink transmits proposal payloads as a JSON POST.
//
// The default endpoint is a script web app that does not return a readable
// response to the browser, so the sink treats the response as opaque: any
// completed round trip counts as delivered. Set ReadResponse when the
// endpoint is known to answer with a meaningful status.
package httpsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/proposals/internal/core"
)

// ErrStatus is returned for non-2xx responses when ReadResponse is set.
var ErrStatus = errors.New("unexpected response status")

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

// Config configures a Sink.
type Config struct {
	URL          string
	ReadResponse bool
	Timeout      time.Duration // zero means no timeout
}

// Sink posts payloads to a fixed URL.
type Sink struct {
	url          string
	readResponse bool
	client       *http.Client
}

// New returns a Sink. A nil client uses a fresh http.Client with
// cfg.Timeout.
func New(cfg Config, client *http.Client) (*Sink, error) {
	if cfg.URL == "" {
		return nil, errors.New("httpsink: endpoint URL is required")
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Sink{url: cfg.URL, readResponse: cfg.ReadResponse, client: client}, nil
}

// Send implements core.Transmitter.
func (s *Sink) Send(ctx context.Context, p core.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrTransmit, err)
	}
	defer resp.Body.Close()

	if !s.readResponse {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w %d: %s", core.ErrTransmit, ErrStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
