package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry holds the pipeline's prometheus instruments. A single instance is
// created at startup and shared by the orchestrator.
type Telemetry struct {
	ChatRequests prometheus.Counter
	ChatFailures prometheus.Counter
	Searches     prometheus.Counter
	Completions  prometheus.Counter
	TrimRounds   prometheus.Counter
	ChatDuration prometheus.Histogram
}

func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Telemetry{
		ChatRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatd_chat_requests_total",
			Help: "Chat turns processed.",
		}),
		ChatFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatd_chat_failures_total",
			Help: "Chat turns that ended in a fatal completion failure.",
		}),
		Searches: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatd_web_searches_total",
			Help: "Web searches executed by the pipeline.",
		}),
		Completions: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatd_completions_total",
			Help: "Successful completion calls for final replies.",
		}),
		TrimRounds: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatd_history_trim_rounds_total",
			Help: "Summarization rounds applied to outgoing history copies.",
		}),
		ChatDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatd_chat_duration_seconds",
			Help:    "End-to-end latency of a chat turn.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

// ObserveChat records one finished turn.
func (t *Telemetry) ObserveChat(start time.Time, failed bool) {
	if t == nil {
		return
	}
	t.ChatRequests.Inc()
	if failed {
		t.ChatFailures.Inc()
	}
	t.ChatDuration.Observe(time.Since(start).Seconds())
}
