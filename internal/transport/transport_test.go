package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proposals/internal/config"
	"github.com/JonMunkholm/proposals/internal/core"
)

func TestOpen_HTTP(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	cfg := &config.Config{Transmit: config.TransmitConfig{Backend: config.BackendHTTP, EndpointURL: srv.URL}}
	b, err := Open(context.Background(), cfg, "test")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.BackendHTTP, b.Name)
	require.NoError(t, b.Send(context.Background(), core.Payload{District: "Galle"}))
	assert.Contains(t, string(body), `"district":"Galle"`)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown backend", config.Config{Transmit: config.TransmitConfig{Backend: "carrier-pigeon"}}},
		{"bad database url", config.Config{
			Transmit: config.TransmitConfig{Backend: config.BackendPostgres},
			Database: config.DatabaseConfig{URL: "://nope"},
		}},
		{"missing nats url", config.Config{Transmit: config.TransmitConfig{Backend: config.BackendNATS}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), &tt.cfg, "test")
			assert.Error(t, err)
		})
	}
}
