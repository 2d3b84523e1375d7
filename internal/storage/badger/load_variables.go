package badger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// VariableFile represents the structure of a variable in a TOML file
// Format:
// [google_places_api_key]
// value = "AIza..."
// description = "optional description"
type VariableFile struct {
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

// LoadVariablesFromFiles seeds the KV store from dirPath/variables.toml and any
// .toml files in dirPath/variables/. Unreadable files are logged and skipped.
func (m *Manager) LoadVariablesFromFiles(ctx context.Context, dirPath string) error {
	loadedCount, skippedCount, errorCount := 0, 0, 0

	variablesFile := filepath.Join(dirPath, "variables.toml")
	if _, err := os.Stat(variablesFile); err == nil {
		l, s, e := m.loadVariablesFromFile(ctx, variablesFile)
		loadedCount, skippedCount, errorCount = loadedCount+l, skippedCount+s, errorCount+e
	} else {
		m.logger.Debug().Str("file", variablesFile).Msg("variables.toml not found")
	}

	variablesDir := filepath.Join(dirPath, "variables")
	if info, err := os.Stat(variablesDir); err == nil && info.IsDir() {
		entries, err := os.ReadDir(variablesDir)
		if err != nil {
			m.logger.Warn().Err(err).Str("dir", variablesDir).Msg("Failed to read variables directory")
			errorCount++
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
				continue
			}
			l, s, e := m.loadVariablesFromFile(ctx, filepath.Join(variablesDir, entry.Name()))
			loadedCount, skippedCount, errorCount = loadedCount+l, skippedCount+s, errorCount+e
		}
	}

	m.logger.Debug().
		Int("loaded", loadedCount).
		Int("skipped", skippedCount).
		Int("errors", errorCount).
		Msg("Finished loading variables from files")

	return nil
}

// loadVariablesFromFile loads variables from a single TOML file
func (m *Manager) loadVariablesFromFile(ctx context.Context, filePath string) (loaded, skipped, errors int) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to read variable file")
		return 0, 0, 1
	}

	var variables map[string]VariableFile
	if err := toml.Unmarshal(content, &variables); err != nil {
		m.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to parse variable file")
		return 0, 0, 1
	}

	fileName := filepath.Base(filePath)
	for key, variable := range variables {
		if strings.TrimSpace(variable.Value) == "" {
			m.logger.Warn().Str("file", fileName).Str("key", key).Msg("Skipping variable with empty value")
			skipped++
			continue
		}

		description := variable.Description
		if description == "" {
			description = "Loaded from " + fileName
		}

		isNew, err := m.kv.Upsert(ctx, key, variable.Value, description)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable")
			errors++
			continue
		}

		m.logger.Debug().Str("key", key).Bool("new", isNew).Msg("Loaded variable")
		loaded++
	}

	return loaded, skipped, errors
}
