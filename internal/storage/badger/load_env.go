package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile seeds the KV store from a .env file. Keys are stored lowercased, so
// GOOGLE_PLACES_API_KEY=... becomes the google_places_api_key variable.
// A missing file is not an error.
func (m *Manager) LoadEnvFile(ctx context.Context, filePath string) error {
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		m.logger.Debug().Str("file", filePath).Msg(".env file does not exist, skipping")
		return nil
	}

	values, err := godotenv.Read(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse env file %s: %w", filePath, err)
	}

	loaded := 0
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := m.kv.Upsert(ctx, key, value, "Loaded from "+filePath); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("Failed to store env variable")
			continue
		}
		loaded++
	}

	m.logger.Debug().Str("file", filePath).Int("loaded", loaded).Msg("Loaded variables from .env file")
	return nil
}
