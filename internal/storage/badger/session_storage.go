package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SessionStorage implements interfaces.SessionStorage for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSession inserts or replaces a session record keyed by its token
func (s *SessionStorage) SaveSession(ctx context.Context, session *models.AutocompleteSession) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("session token is required")
	}
	if err := s.db.Store().Upsert(session.Token, session); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.Token, err)
	}
	return nil
}

// GetSession returns the session recorded for token
func (s *SessionStorage) GetSession(ctx context.Context, token string) (*models.AutocompleteSession, error) {
	var session models.AutocompleteSession
	err := s.db.Store().Get(token, &session)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", token, interfaces.ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListSessions returns the most recently started sessions first (limit <= 0 means all)
func (s *SessionStorage) ListSessions(ctx context.Context, limit int) ([]*models.AutocompleteSession, error) {
	query := badgerhold.Where("Token").Ne("").SortBy("StartedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var found []models.AutocompleteSession
	if err := s.db.Store().Find(&found, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*models.AutocompleteSession, len(found))
	for i := range found {
		sessions[i] = &found[i]
	}
	return sessions, nil
}

// DeleteAll removes every session record
func (s *SessionStorage) DeleteAll(ctx context.Context) error {
	if err := s.db.Store().DeleteMatching(&models.AutocompleteSession{}, badgerhold.Where("Token").Ne("")); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	s.logger.Info().Msg("Deleted all session records")
	return nil
}
