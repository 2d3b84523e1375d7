package places

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ternarybob/placesbridge/internal/models"
)

// SessionTokens owns the autocomplete session token. A token is created lazily by the
// first prediction call, reused by every following prediction call, and cleared once
// a details call completes (whether it succeeded or not).
type SessionTokens struct {
	mu      sync.Mutex
	current *models.AutocompleteSession
	now     func() time.Time
}

// NewSessionTokens creates a token holder in state NONE
func NewSessionTokens() *SessionTokens {
	return &SessionTokens{now: time.Now}
}

// Acquire returns the live token, creating one when none exists. started reports
// whether this call created it.
func (s *SessionTokens) Acquire(platform string) (token string, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		s.current = &models.AutocompleteSession{
			Token:     uuid.New().String(),
			Platform:  platform,
			StartedAt: s.now(),
		}
		started = true
	}
	s.current.PredictionCalls++
	return s.current.Token, started
}

// Current returns the live token without creating one ("" in state NONE)
func (s *SessionTokens) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// State reports NONE or ACTIVE
func (s *SessionTokens) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.SessionStateNone
	}
	return models.SessionStateActive
}

// End clears the session if token is still the live one and returns the finished record.
// A token that was already replaced or cleared returns nil.
func (s *SessionTokens) End(token, outcome, placeID string) *models.AutocompleteSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || token == "" || s.current.Token != token {
		return nil
	}

	finished := *s.current
	finished.EndedAt = s.now()
	finished.Outcome = outcome
	finished.SelectedPlaceID = placeID
	s.current = nil
	return &finished
}
