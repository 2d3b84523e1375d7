package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/bridge"
	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/handlers"
	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/platform"
	"github.com/ternarybob/placesbridge/internal/platform/legacy"
	"github.com/ternarybob/placesbridge/internal/platform/placesnew"
	"github.com/ternarybob/placesbridge/internal/services/events"
	"github.com/ternarybob/placesbridge/internal/services/kv"
	"github.com/ternarybob/placesbridge/internal/services/places"
	"github.com/ternarybob/placesbridge/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event-driven services
	EventService interfaces.EventService

	// Platform side of the bridge
	Bridge interfaces.Bridge

	// Places facade (shared session used by the HTTP API)
	PlacesService *places.Service

	// Variables service (key/value storage)
	KVService *kv.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	PlacesHandler *handlers.PlacesHandler
	KVHandler     *handlers.KVHandler
	WSHandler     *handlers.WebSocketHandler
}

// New initializes the application with all dependencies. apiKey is an explicit key
// (e.g. from a command-line flag) that takes precedence over every other source.
func New(cfg *common.Config, logger arbor.ILogger, apiKey string) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(apiKey); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("platform", app.PlacesService.Platform()).
		Bool("initialized", app.PlacesService.IsInitialized()).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger) and seeds the KV store
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	ctx := context.Background()

	// Load variables from files (e.g. API keys)
	// This must happen before config replacement so that loaded variables can be used
	if err := a.StorageManager.LoadVariablesFromFiles(ctx, a.Config.Variables.Dir); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load variables from files")
	}

	// .env values take precedence over variables.toml
	if err := a.StorageManager.LoadEnvFile(ctx, ".env"); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Replace {key-name} references in config with KV store values
	if err := common.ApplyKeyReferences(ctx, a.Config, a.StorageManager.KeyValueStorage(), a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to replace key references in config")
	}

	return nil
}

// initServices wires the platform handler, bridge and places facade
func (a *App) initServices(apiKey string) error {
	a.EventService = events.NewService(a.Logger)
	if err := events.SubscribeLoggerToAllEvents(a.EventService, a.Logger); err != nil {
		return err
	}

	handler, err := NewPlatformHandler(&a.Config.Places, a.Logger)
	if err != nil {
		return err
	}
	a.Bridge = bridge.NewChannel(handler, a.Logger)

	a.PlacesService, err = places.NewService(&a.Config.Places, a.Bridge, a.StorageManager, a.EventService, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create places service: %w", err)
	}

	// A missing key is not fatal: the key can be supplied later through PUT /api/kv
	if err := a.InitializePlaces(context.Background(), apiKey); err != nil {
		a.Logger.Warn().Err(err).Msg("Places platform not initialized - set PLACES_API_KEY or the google_places_api_key variable")
	}

	a.KVService = kv.NewService(a.StorageManager.KeyValueStorage(), a.Logger)
	return nil
}

// InitializePlaces (re)initializes the platform, e.g. after a key was stored
func (a *App) InitializePlaces(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.Places.RequestTimeout)
	defer cancel()
	return a.PlacesService.Initialize(ctx, apiKey)
}

// NewPlatformHandler builds the handler for config.Platform
func NewPlatformHandler(config *common.PlacesConfig, logger arbor.ILogger) (interfaces.PlatformHandler, error) {
	client := platform.NewClient(config.RequestTimeout, config.RateLimit, logger)

	switch config.Platform {
	case common.PlatformPlacesNew:
		return placesnew.NewHandler(config.BaseURL, client, logger), nil
	case common.PlatformLegacy:
		return legacy.NewHandler(config.LegacyBaseURL, client, logger), nil
	default:
		return nil, fmt.Errorf("unsupported places platform: %s", config.Platform)
	}
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.PlacesService, a.Logger)
	a.PlacesHandler = handlers.NewPlacesHandler(a.PlacesService, a.StorageManager.SessionStorage(), a.Logger)
	a.KVHandler = handlers.NewKVHandler(a.KVService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.PlacesService, a.Config, a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.PlacesService != nil {
		a.PlacesService.AbandonSession(context.Background())
	}

	if a.Bridge != nil {
		if err := a.Bridge.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close bridge")
		}
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
