package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartbite"

// Monitor keys mirrored from the prometheus collectors
const (
	KeyRecommendations      = "recommendations_total"
	KeyRecommendationsStale = "recommendations_stale_total"
	KeyRecommendationsAI    = "recommendations_delegated_total"
	KeyRecommendationsRule  = "recommendations_rule_based_total"
	KeyFallbacks            = "delegated_fallbacks_total"
	KeyChatReplies          = "chat_replies_total"
	KeyCartMutations        = "cart_mutations_total"
	KeySessionsActive       = "sessions_active"
	KeyCheckouts            = "checkouts_total"
	KeyRevenue              = "revenue_total"
	KeyReservations         = "reservations_total"
)

// Metrics owns the prometheus collectors of the service and mirrors the
// counters into a Monitor for the admin overview. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry
	monitor  *Monitor

	recommendations *prometheus.CounterVec
	stale           prometheus.Counter
	chatReplies     *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	sessionsActive  prometheus.Gauge
	checkouts       prometheus.Counter
	reservations    prometheus.Counter
}

// NewMetrics creates the collectors on a private registry
func NewMetrics(monitor *Monitor) *Metrics {
	if monitor == nil {
		monitor = NewMonitor()
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		monitor:  monitor,
		recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Recommendation results by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_stale_total",
			Help:      "Recommendation results dropped because a newer request was issued",
		}),
		chatReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_replies_total",
				Help:      "Chat replies by source",
			},
			[]string{"source"},
		),
		cartMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cart_mutations_total",
				Help:      "Cart mutations by operation",
			},
			[]string{"op"},
		),
		llmLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_seconds",
				Help:      "Latency of delegated text-generation requests",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"provider", "outcome"},
		),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Live browser sessions",
		}),
		checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Completed checkouts",
		}),
		reservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Confirmed reservations",
		}),
	}

	m.registry.MustRegister(
		m.recommendations,
		m.stale,
		m.chatReplies,
		m.cartMutations,
		m.llmLatency,
		m.sessionsActive,
		m.checkouts,
		m.reservations,
	)

	return m
}

// Registry returns the prometheus registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Monitor returns the JSON snapshot monitor
func (m *Metrics) Monitor() *Monitor {
	return m.monitor
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRecommendation counts a recommendation result
func (m *Metrics) RecordRecommendation(strategy, outcome string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(strategy, outcome).Inc()
	m.monitor.Add(KeyRecommendations, 1)
	switch {
	case outcome == "fallback":
		m.monitor.Add(KeyFallbacks, 1)
		m.monitor.Add(KeyRecommendationsRule, 1)
	case strategy == "delegated":
		m.monitor.Add(KeyRecommendationsAI, 1)
	default:
		m.monitor.Add(KeyRecommendationsRule, 1)
	}
}

// RecordStaleRecommendation counts a superseded feed result
func (m *Metrics) RecordStaleRecommendation() {
	if m == nil {
		return
	}
	m.stale.Inc()
	m.monitor.Add(KeyRecommendationsStale, 1)
}

// RecordChatReply counts a chatbot reply by its source
func (m *Metrics) RecordChatReply(source string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(source).Inc()
	m.monitor.Add(KeyChatReplies, 1)
	m.monitor.Add(KeyChatReplies+"_"+source, 1)
}

// RecordCartMutation counts a cart mutation
func (m *Metrics) RecordCartMutation(op string) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
	m.monitor.Add(KeyCartMutations, 1)
}

// ObserveLLMRequest records the latency and outcome of a delegated call
func (m *Metrics) ObserveLLMRequest(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider, outcome).Observe(d.Seconds())
}

// SessionStarted increments the live session gauge
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.monitor.Add(KeySessionsActive, 1)
}

// SessionEnded decrements the live session gauge
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
	m.monitor.Add(KeySessionsActive, -1)
}

// RecordCheckout counts a checkout and its revenue
func (m *Metrics) RecordCheckout(total float64) {
	if m == nil {
		return
	}
	m.checkouts.Inc()
	m.monitor.Add(KeyCheckouts, 1)
	m.monitor.Add(KeyRevenue, total)
}

// RecordReservation counts a confirmed reservation
func (m *Metrics) RecordReservation() {
	if m == nil {
		return
	}
	m.reservations.Inc()
	m.monitor.Add(KeyReservations, 1)
}
