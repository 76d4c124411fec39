package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDialogueMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDialogueMetrics(reg)

	m.ObserveTurn("start", "awaiting_department", "menu")
	m.ObserveTurn("start", "awaiting_department", "menu")
	m.ObserveOutbound("reply", true)
	m.ObserveOutbound("apology", false)
	m.ObserveTurnLatency("menu", 0.01)
	m.SetConversations(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("start", "awaiting_department", "menu")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outboundTotal.WithLabelValues("apology", "failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.conversations))
}

func TestDialogueMetricsNilSafe(t *testing.T) {
	var m *DialogueMetrics
	m.ObserveTurn("start", "start", "ask_greeting")
	m.ObserveOutbound("reply", true)
	m.ObserveTurnLatency("menu", 0.1)
	m.SetConversations(1)
}
