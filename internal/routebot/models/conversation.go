package models

import (
	"fmt"
	"time"
)

// State is a step of the routing dialogue.
type State int

const (
	StateStart              State = iota // Waiting for a greeting
	StateAwaitingDepartment              // Menu sent, waiting for a department choice
	StateAwaitingName                    // Department chosen, waiting for the user's name
)

// String returns the state name used in logs and metrics labels.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAwaitingDepartment:
		return "awaiting_department"
	case StateAwaitingName:
		return "awaiting_name"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Valid reports whether s is one of the known dialogue states.
func (s State) Valid() bool {
	return s >= StateStart && s <= StateAwaitingName
}

// Conversation is the dialogue state of one remote party.
type Conversation struct {
	ID                 string    `json:"id"`                 // Remote address of the user
	State              State     `json:"state"`              // Current dialogue step
	SelectedDepartment string    `json:"selectedDepartment"` // Label of the matched department, empty while in StateStart
	ProvidedName       string    `json:"providedName"`       // Name given by the user, empty while in StateStart
	UpdatedAt          time.Time `json:"updatedAt"`          // Last committed turn
}

// NewConversation returns a fresh conversation in StateStart.
func NewConversation(id string) Conversation {
	return Conversation{ID: id, State: StateStart}
}

// Reset moves the conversation back to StateStart and drops per-cycle fields.
func (c *Conversation) Reset() {
	c.State = StateStart
	c.SelectedDepartment = ""
	c.ProvidedName = ""
}
