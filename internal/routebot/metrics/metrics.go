// Package metrics exposes Prometheus metrics of the routing dialogue.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for the routing dialogue.
type DialogueMetrics struct {
	turnsTotal    *prometheus.CounterVec
	outboundTotal *prometheus.CounterVec
	turnLatency   *prometheus.HistogramVec
	conversations prometheus.Gauge
}

// NewDialogueMetrics creates the dialogue metrics and registers them on reg,
// or on the default registerer when reg is nil.
func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routebot",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total processed inbound messages by state transition and outcome",
		}, []string{"from", "to", "outcome"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "routebot",
			Subsystem: "dialogue",
			Name:      "outbound_total",
			Help:      "Total outbound sends by kind and status",
		}, []string{"kind", "status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "routebot",
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of one dialogue turn including the outbound send",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		conversations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "routebot",
			Subsystem: "store",
			Name:      "conversations",
			Help:      "Conversations currently held by the in-memory store",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.outboundTotal, m.turnLatency, m.conversations)
	return m
}

// ObserveTurn counts one processed inbound message.
func (m *DialogueMetrics) ObserveTurn(from, to, outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(from, to, outcome).Inc()
}

// ObserveOutbound counts one outbound send of kind "reply" or "apology".
func (m *DialogueMetrics) ObserveOutbound(kind string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.outboundTotal.WithLabelValues(kind, status).Inc()
}

// ObserveTurnLatency records how long a turn took.
func (m *DialogueMetrics) ObserveTurnLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(outcome).Observe(seconds)
}

// SetConversations reports the size of the in-memory store.
func (m *DialogueMetrics) SetConversations(n int) {
	if m == nil {
		return
	}
	m.conversations.Set(float64(n))
}
