// Package queue defines the registration event payloads exchanged over the
// message broker and the background consumer that audits them.
package queue

// RegistrationConfirmedEvent is published after an admitted registration is
// committed.  It carries enough information for downstream consumers to log
// or notify without querying the primary database.
type RegistrationConfirmedEvent struct {
	RegistrationID int64  `json:"registration_id"`
	Kind           string `json:"kind"`
	SessionName    string `json:"session_name"`
	Email          string `json:"email"`
	NumAdults      int    `json:"num_adults"`
	NumChildren    int    `json:"num_children"`
	ConfirmedAt    string `json:"confirmed_at"`
}
