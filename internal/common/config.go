package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/interfaces"
)

// ErrMissingAPIKey is returned when no configuration source provides a Places API key
var ErrMissingAPIKey = errors.New("places API key not configured")

// PlacesAPIKeyName is the KV store key probed by ResolveAPIKey
const PlacesAPIKeyName = "google_places_api_key"

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Variables   KeysDirConfig   `toml:"variables"` // Directory holding variables.toml (key/value pairs seeded into the KV store)
	Places      PlacesConfig    `toml:"places"`
	WebSocket   WebSocketConfig `toml:"websocket"`
}

type ServerConfig struct {
	Port        int      `toml:"port" validate:"gte=0,lte=65535"`
	Host        string   `toml:"host"`
	CORSOrigins []string `toml:"cors_origins"` // Browser origins allowed to call the API ("*" is ignored in production)
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required_without=InMemory"` // Database directory path
	InMemory       bool   `toml:"in_memory"`                                 // Keep everything in memory (nothing survives a restart)
	ResetOnStartup bool   `toml:"reset_on_startup"`                          // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output" validate:"dive,oneof=stdout console file"`
}

// KeysDirConfig contains configuration for key/value file loading
type KeysDirConfig struct {
	Dir string `toml:"dir"` // Directory containing variables.toml
}

// PlacesConfig contains Google Places configuration
type PlacesConfig struct {
	APIKey           string        `toml:"api_key"`                                     // Lowest priority key source
	Platform         string        `toml:"platform" validate:"oneof=places-new legacy"` // Which Google platform answers bridge calls
	BaseURL          string        `toml:"base_url" validate:"omitempty,url"`           // Places API (New) endpoint override
	LegacyBaseURL    string        `toml:"legacy_base_url" validate:"omitempty,url"`    // Legacy web service endpoint override
	Language         string        `toml:"language"`                                    // Default response language (e.g. "en")
	Region           string        `toml:"region"`                                      // Default region bias (ccTLD, e.g. "au")
	DebounceInterval time.Duration `toml:"debounce_interval" validate:"gte=0"`          // Keystroke coalescing interval
	RequestTimeout   time.Duration `toml:"request_timeout" validate:"gt=0"`             // HTTP request timeout
	RateLimit        time.Duration `toml:"rate_limit" validate:"gte=0"`                 // Minimum time between platform requests
	MaxPredictions   int           `toml:"max_predictions" validate:"gte=0,lte=20"`     // Cap on predictions delivered (0 = platform default)
}

// WebSocketConfig contains configuration for live autocomplete sessions
type WebSocketConfig struct {
	ReadLimit    int64         `toml:"read_limit" validate:"gt=0"` // Max inbound message size in bytes
	PingInterval time.Duration `toml:"ping_interval" validate:"gt=0"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:        8085,
			Host:        "localhost",
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Variables: KeysDirConfig{
			Dir: "./",
		},
		Places: PlacesConfig{
			APIKey:           "", // User must provide a key via flag, env, variables.toml or config
			Platform:         PlatformPlacesNew,
			Language:         "en",
			DebounceInterval: 300 * time.Millisecond,
			RequestTimeout:   30 * time.Second,
			RateLimit:        100 * time.Millisecond,
			MaxPredictions:   0,
		},
		WebSocket: WebSocketConfig{
			ReadLimit:    4096,
			PingInterval: 30 * time.Second,
		},
	}
}

// Platform identifiers accepted by places.platform
const (
	PlatformPlacesNew = "places-new"
	PlatformLegacy    = "legacy"
)

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(kvStorage interfaces.KeyValueStorage, path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles(kvStorage)
	}
	return LoadFromFiles(kvStorage, path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files. kvStorage can be nil (replacement is skipped).
func LoadFromFiles(kvStorage interfaces.KeyValueStorage, paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	if kvStorage != nil {
		if err := ApplyKeyReferences(context.Background(), config, kvStorage, arbor.NewLogger()); err != nil {
			arbor.NewLogger().Warn().Err(err).Msg("Failed to apply key references to config")
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyKeyReferences replaces {key-name} references in config string fields with KV store values
func ApplyKeyReferences(ctx context.Context, config *Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) error {
	kvMap, err := kvStorage.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch KV map for config replacement: %w", err)
	}
	if err := ReplaceInStruct(config, kvMap, logger); err != nil {
		return err
	}
	logger.Debug().Int("keys", len(kvMap)).Msg("Applied key/value replacements to config")
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PLACES_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("PLACES_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PLACES_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("PLACES_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("PLACES_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PLACES_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if variablesDir := os.Getenv("PLACES_VARIABLES_DIR"); variablesDir != "" {
		config.Variables.Dir = variablesDir
	}

	// Places configuration. The API key itself is resolved by ResolveAPIKey so that
	// env values are honoured even when the config was loaded before the env changed.
	if platform := os.Getenv("PLACES_PLATFORM"); platform != "" {
		config.Places.Platform = platform
	}
	if baseURL := os.Getenv("PLACES_BASE_URL"); baseURL != "" {
		config.Places.BaseURL = baseURL
	}
	if legacyURL := os.Getenv("PLACES_LEGACY_BASE_URL"); legacyURL != "" {
		config.Places.LegacyBaseURL = legacyURL
	}
	if language := os.Getenv("PLACES_LANGUAGE"); language != "" {
		config.Places.Language = language
	}
	if region := os.Getenv("PLACES_REGION"); region != "" {
		config.Places.Region = region
	}
	if debounce := os.Getenv("PLACES_DEBOUNCE_INTERVAL"); debounce != "" {
		if d, err := time.ParseDuration(debounce); err == nil {
			config.Places.DebounceInterval = d
		}
	}
	if timeout := os.Getenv("PLACES_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Places.RequestTimeout = d
		}
	}
	if rateLimit := os.Getenv("PLACES_RATE_LIMIT"); rateLimit != "" {
		if d, err := time.ParseDuration(rateLimit); err == nil {
			config.Places.RateLimit = d
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks the configuration against its validate tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// envKeyNames are probed in order after an explicit key
var envKeyNames = []string{"PLACES_API_KEY", "GOOGLE_MAPS_API_KEY"}

// ResolveAPIKey resolves the Places API key.
// Resolution order: explicit → environment variables → KV store → config fallback → ErrMissingAPIKey
func ResolveAPIKey(ctx context.Context, explicit string, kvStorage interfaces.KeyValueStorage, configFallback string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}

	for _, name := range envKeyNames {
		if envValue := strings.TrimSpace(os.Getenv(name)); envValue != "" {
			return envValue, nil
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, PlacesAPIKeyName)
		if err == nil && strings.TrimSpace(apiKey) != "" {
			return strings.TrimSpace(apiKey), nil
		}
	}

	// an unresolved {key-name} reference is not a key
	if key := strings.TrimSpace(configFallback); key != "" && !keyRefPattern.MatchString(key) {
		return key, nil
	}

	return "", fmt.Errorf("%w: checked explicit value, %s, KV key '%s' and config", ErrMissingAPIKey, strings.Join(envKeyNames, ", "), PlacesAPIKeyName)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
