package models

import "time"

// SessionState is the state of the autocomplete session token
type SessionState string

const (
	SessionStateNone   SessionState = "NONE"
	SessionStateActive SessionState = "ACTIVE"
)

// Session outcomes recorded when a session ends
const (
	SessionOutcomeSelected  = "selected"
	SessionOutcomeFailed    = "details_failed"
	SessionOutcomeAbandoned = "abandoned"
)

// AutocompleteSession records one billable search-then-select sequence
type AutocompleteSession struct {
	Token           string    `json:"token"`
	Platform        string    `json:"platform"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	PredictionCalls int       `json:"prediction_calls"`
	SelectedPlaceID string    `json:"selected_place_id,omitempty"`
	Outcome         string    `json:"outcome"`
}
