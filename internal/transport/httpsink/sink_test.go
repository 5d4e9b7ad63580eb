package httpsink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proposals/internal/core"
)

func samplePayload() core.Payload {
	return core.Payload{
		District:    "Colombo",
		Division:    "DS1",
		Subdivision: "GN1",
		File:        &core.EncodedAttachment{Name: "a.pdf", MediaType: "application/pdf", Data: "QUJD"},
		Timestamp:   "2025-01-02T03:04:05.000Z",
		Projects:    []core.ProjectPayload{{No: "1", Proposal: "Road", EstimatedCost: "50000"}},
	}
}

func TestSink_PostsJSON(t *testing.T) {
	var gotMethod, gotType string
	var got core.Payload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := New(Config{URL: srv.URL}, nil)
	require.NoError(t, err)
	require.NoError(t, sink.Send(context.Background(), samplePayload()))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, samplePayload(), got)
}

func TestSink_OpaqueIgnoresStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink, err := New(Config{URL: srv.URL}, nil)
	require.NoError(t, err)
	assert.NoError(t, sink.Send(context.Background(), samplePayload()))
}

func TestSink_ReadResponseRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	sink, err := New(Config{URL: srv.URL, ReadResponse: true}, nil)
	require.NoError(t, err)

	err = sink.Send(context.Background(), samplePayload())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTransmit)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSink_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	sink, err := New(Config{URL: url}, nil)
	require.NoError(t, err)

	err = sink.Send(context.Background(), samplePayload())
	assert.True(t, errors.Is(err, core.ErrTransmit), "err = %v", err)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
