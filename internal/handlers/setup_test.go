package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/placesbridge/internal/bridge"
	"github.com/ternarybob/placesbridge/internal/common"
	"github.com/ternarybob/placesbridge/internal/interfaces"
	"github.com/ternarybob/placesbridge/internal/models"
	"github.com/ternarybob/placesbridge/internal/services/places"
	"github.com/ternarybob/placesbridge/internal/storage"
)

// stubPlatform answers bridge calls with canned Places API (New) payloads
type stubPlatform struct{}

func (stubPlatform) Platform() string { return common.PlatformPlacesNew }

func (stubPlatform) HandleMethodCall(ctx context.Context, method string, arguments json.RawMessage) (json.RawMessage, error) {
	switch method {
	case interfaces.MethodInitialize:
		return json.RawMessage(`true`), nil
	case interfaces.MethodFindPredictions:
		return json.RawMessage(`[{"placeId":"p1","distanceMeters":1500,"structuredFormat":{"mainText":{"text":"Coffee"},"secondaryText":{"text":"Main St"}}}]`), nil
	case interfaces.MethodFetchPlace:
		var args bridge.FetchPlaceArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, err
		}
		if args.PlaceID == "missing" {
			return nil, &models.PlatformError{Code: models.PlatformCodeNotFound, Message: "place not found"}
		}
		return json.RawMessage(`{"id":"` + args.PlaceID + `","displayName":{"text":"Coffee"},"location":{"latitude":1,"longitude":2}}`), nil
	}
	return nil, &models.PlatformError{Code: models.PlatformCodeUnknownMethod, Message: method}
}

type testEnv struct {
	config  *common.Config
	storage interfaces.StorageManager
	service *places.Service
}

// newTestEnv wires a real bridge and Badger store around stubPlatform
func newTestEnv(t *testing.T, initialize bool) *testEnv {
	t.Helper()
	t.Setenv("PLACES_API_KEY", "")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	logger := arbor.NewLogger()
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir()
	config.Places.APIKey = "test-key"
	config.Places.DebounceInterval = 20 * time.Millisecond
	config.WebSocket.PingInterval = time.Second

	storageManager, err := storage.NewStorageManager(logger, config)
	require.NoError(t, err)
	t.Cleanup(func() { storageManager.Close() })

	channel := bridge.NewChannel(stubPlatform{}, logger)
	t.Cleanup(func() { channel.Close() })

	service, err := places.NewService(&config.Places, channel, storageManager, nil, logger)
	require.NoError(t, err)

	if initialize {
		require.NoError(t, service.Initialize(context.Background(), ""))
	}

	return &testEnv{config: config, storage: storageManager, service: service}
}
