package models

import "time"

// Status event types pushed to status page subscribers.
const (
	StatusEventReady = "ready"
	StatusEventTurn  = "turn"
)

// StatusEvent is a live notification for the status page.
type StatusEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	From      string    `json:"from,omitempty"` // Dialogue state before the turn
	To        string    `json:"to,omitempty"`   // Dialogue state after the turn
	Outcome   string    `json:"outcome,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
