package status

import (
	"testing"

	"github.com/DenisKhanov/RouteBOT/internal/routebot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishAndReplayReady(t *testing.T) {
	h := NewHub("console")

	early, cancelEarly := h.Subscribe()
	defer cancelEarly()

	h.MarkReady("bot connected")
	ev := <-early
	assert.Equal(t, models.StatusEventReady, ev.Type)
	assert.Equal(t, "bot connected", ev.Message)
	assert.False(t, ev.Timestamp.IsZero())

	late, cancelLate := h.Subscribe()
	defer cancelLate()
	ev = <-late
	assert.Equal(t, models.StatusEventReady, ev.Type)

	h.Publish(models.StatusEvent{Type: models.StatusEventTurn, From: "start", To: "awaiting_department"})
	assert.Equal(t, "awaiting_department", (<-early).To)
	assert.Equal(t, "awaiting_department", (<-late).To)

	snap := h.Snapshot()
	assert.Equal(t, Snapshot{Transport: "console", Ready: true, Turns: 1, Subscribers: 2}, snap)
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub("telegram")
	ch, cancel := h.Subscribe()

	for i := 0; i < subscriberBuffer*3; i++ {
		h.Publish(models.StatusEvent{Type: models.StatusEventTurn})
	}
	assert.Len(t, ch, subscriberBuffer)

	cancel()
	cancel()
	assert.Equal(t, 0, h.Snapshot().Subscribers)

	for range ch {
	}
	_, open := <-ch
	require.False(t, open)
}
