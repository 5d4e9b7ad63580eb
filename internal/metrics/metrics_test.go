package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proposals/internal/core"
)

func TestCollector_ObserveSubmission(t *testing.T) {
	c := New()

	c.ObserveSubmission(core.SubmissionResult{AttachmentBytes: 2048, Duration: 120 * time.Millisecond})
	c.ObserveSubmission(core.SubmissionResult{Err: core.ErrTransmit, Duration: time.Second})
	c.ObserveSubmission(core.SubmissionResult{Err: core.ErrTooManySubmissions})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.submissions.WithLabelValues(OutcomeSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.submissions.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.submissions.WithLabelValues(OutcomeBusy)))
}

func TestCollector_ObserveRejection(t *testing.T) {
	c := New()
	c.ObserveRejection("VAL001")
	c.ObserveRejection("VAL001")
	c.ObserveRejection("")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rejections.WithLabelValues("VAL001")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejections.WithLabelValues("unknown")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.SetActiveForms(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "proposals_active_forms 3"), "body missing gauge")
}
