package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for generate requests.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeUpstream = "upstream_error"
	OutcomeStream   = "stream_error"
)

// Recorder reports gateway metrics using Prometheus primitives. A nil
// *Recorder discards observations.
type Recorder struct {
	requests    *prometheus.CounterVec
	deltas      *prometheus.CounterVec
	parseErrors *prometheus.CounterVec
	upstream    *prometheus.HistogramVec
}

func NewRecorder(registry prometheus.Registerer) (*Recorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillstream_generate_requests_total",
			Help: "Total number of generate requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		deltas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillstream_text_deltas_total",
			Help: "Total number of text deltas streamed to callers",
		}, []string{"provider"}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillstream_stream_parse_errors_total",
			Help: "Total number of malformed provider frames skipped",
		}, []string{"provider"}),
		upstream: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quillstream_upstream_seconds",
			Help:    "Time from dispatch until the provider stream ends",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}

	for _, collector := range []prometheus.Collector{r.requests, r.deltas, r.parseErrors, r.upstream} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *Recorder) ObserveRequest(provider, outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(provider, outcome).Inc()
}

func (r *Recorder) ObserveDelta(provider string) {
	if r == nil {
		return
	}
	r.deltas.WithLabelValues(provider).Inc()
}

func (r *Recorder) ObserveParseError(provider string) {
	if r == nil {
		return
	}
	r.parseErrors.WithLabelValues(provider).Inc()
}

func (r *Recorder) ObserveUpstream(provider string, d time.Duration) {
	if r == nil {
		return
	}
	r.upstream.WithLabelValues(provider).Observe(d.Seconds())
}
