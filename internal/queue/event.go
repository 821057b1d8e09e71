// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published after a successful registration.
// Downstream consumers (welcome mail, loyalty onboarding, analytics)
// act on it without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Membership   string `json:"membership"`
	RegisteredAt string `json:"registered_at"`
}

// RewardAccruedEvent arrives from the external rewards system whenever
// a user earns (or loses) points. Points may be negative for
// corrections; the store clamps the resulting balance at zero.
type RewardAccruedEvent struct {
	UserID uint64 `json:"user_id"`
	Points int64  `json:"points"`
	Reason string `json:"reason,omitempty"`
}
