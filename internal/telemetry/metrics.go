package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the webhook and the inference proxy.
type Metrics struct {
	IntentTotal        *prometheus.CounterVec
	WebhookDurationMs  *prometheus.HistogramVec
	UpstreamTotal      *prometheus.CounterVec
	UpstreamDurationMs *prometheus.HistogramVec
	FilterActionTotal  *prometheus.CounterVec
	RateLimitHitTotal  *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
// A nil reg registers with the Prometheus default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		IntentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbot_intent_total",
			Help: "Total number of fulfillment requests by intent and outcome.",
		}, []string{"intent", "outcome"}),

		WebhookDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greenbot_webhook_duration_ms",
			Help:    "Fulfillment webhook handling time in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"adapter"}),

		UpstreamTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbot_upstream_request_total",
			Help: "Total calls made to the inference server by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),

		UpstreamDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greenbot_upstream_duration_ms",
			Help:    "Inference server call duration in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		}, []string{"endpoint"}),

		FilterActionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbot_filter_action_total",
			Help: "Total content filter actions taken on chat prompts.",
		}, []string{"filter", "action"}),

		RateLimitHitTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greenbot_rate_limit_hit_total",
			Help: "Total requests rejected by the rate limiter.",
		}, []string{"route"}),
	}
}

// RecordIntent records one fulfillment outcome.
func (m *Metrics) RecordIntent(adapter, intent, outcome string, durationMs float64) {
	m.IntentTotal.WithLabelValues(intent, outcome).Inc()
	m.WebhookDurationMs.WithLabelValues(adapter).Observe(durationMs)
}

// RecordUpstream records one call to the inference server.
func (m *Metrics) RecordUpstream(endpoint, outcome string, durationMs float64) {
	m.UpstreamTotal.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDurationMs.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordFilterAction records a filter action metric.
func (m *Metrics) RecordFilterAction(filter, action string) {
	m.FilterActionTotal.WithLabelValues(filter, action).Inc()
}

// RecordRateLimitHit records a request rejected by the limiter.
func (m *Metrics) RecordRateLimitHit(route string) {
	m.RateLimitHitTotal.WithLabelValues(route).Inc()
}

// Outcome label values shared by the recorders.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeUnknown  = "unknown_intent"
)
