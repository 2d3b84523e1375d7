package interfaces

import (
	"context"

	"github.com/ternarybob/placesbridge/internal/models"
)

// SessionStorage persists completed autocomplete sessions for billing audit
type SessionStorage interface {
	SaveSession(ctx context.Context, session *models.AutocompleteSession) error
	GetSession(ctx context.Context, token string) (*models.AutocompleteSession, error)
	ListSessions(ctx context.Context, limit int) ([]*models.AutocompleteSession, error)
	DeleteAll(ctx context.Context) error
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	SessionStorage() SessionStorage

	// LoadVariablesFromFiles seeds the KV store from variables.toml in dirPath
	LoadVariablesFromFiles(ctx context.Context, dirPath string) error

	// LoadEnvFile seeds the KV store from a .env file (missing file is ignored)
	LoadEnvFile(ctx context.Context, filePath string) error

	Close() error
}
