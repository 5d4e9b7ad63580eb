// Package metrics exports submission metrics in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/proposals/internal/core"
)

const namespace = "proposals"

// Outcome labels for submissions_total.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeBusy      = "busy"
)

// Collector implements core.Observer on a private registry.
type Collector struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
	bytes       prometheus.Histogram
	rejections  *prometheus.CounterVec
	sessions    prometheus.Gauge
}

// New registers the submission metrics plus the Go and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions that reached the transmitter, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from submit to settled outcome.",
			Buckets:   prometheus.DefBuckets,
		}),
		bytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attachment_bytes",
			Help:      "Size of submitted attachments.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Inputs and submit attempts refused before transmission, by message code.",
		}, []string{"code"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_forms",
			Help:      "Form sessions currently held in memory.",
		}),
	}

	c.registry.MustRegister(
		c.submissions, c.duration, c.bytes, c.rejections, c.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveSubmission implements core.Observer.
func (c *Collector) ObserveSubmission(r core.SubmissionResult) {
	c.submissions.WithLabelValues(outcome(r)).Inc()
	c.duration.Observe(r.Duration.Seconds())
	if r.Err == nil {
		c.bytes.Observe(float64(r.AttachmentBytes))
	}
}

// ObserveRejection implements core.Observer.
func (c *Collector) ObserveRejection(code string) {
	if code == "" {
		code = "unknown"
	}
	c.rejections.WithLabelValues(code).Inc()
}

// SetActiveForms records the number of live sessions.
func (c *Collector) SetActiveForms(n int) {
	c.sessions.Set(float64(n))
}

// Registry exposes the registry for tests and extra collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func outcome(r core.SubmissionResult) string {
	switch {
	case r.Err == nil:
		return OutcomeSucceeded
	case errors.Is(r.Err, core.ErrTooManySubmissions):
		return OutcomeBusy
	default:
		return OutcomeFailed
	}
}
