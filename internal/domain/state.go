package domain

import "time"

// State is a point-in-time copy of one session's values. It is what the
// presentation layer renders from.
type State struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
	Round     int    `json:"round"`
	Score     int    `json:"score"`
	Notes     []Note `json:"notes"`
}

type ActionResponse struct {
	State   State `json:"state"`
	Refresh bool  `json:"refresh,omitempty"`
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	State     State     `json:"state"`
}

type EventKind string

const (
	// EventRender follows every action.
	EventRender EventKind = "render"
	// EventRefresh asks observers to redraw immediately, ahead of the
	// regular render.
	EventRefresh EventKind = "refresh"
)

type Event struct {
	Kind  EventKind `json:"kind"`
	State State     `json:"state"`
}
