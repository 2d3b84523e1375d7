package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/placesbridge/internal/app"
	"github.com/ternarybob/placesbridge/internal/common"
)

func main() {
	configPath := os.Getenv("PLACES_CONFIG")
	if configPath == "" {
		configPath = "placesbridge.toml"
	}
	if _, err := os.Stat(configPath); err != nil {
		configPath = ""
	}

	// Phase 1: Load config without KV replacement (storage not initialized yet)
	config, err := common.LoadFromFile(nil, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	application, err := app.New(config, logger, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"placesbridge",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetPlacePredictionsTool(), handleGetPlacePredictions(application.PlacesService, logger))
	mcpServer.AddTool(createGetPlaceDetailsTool(), handleGetPlaceDetails(application.PlacesService, logger))
	mcpServer.AddTool(createGetSessionStatusTool(), handleGetSessionStatus(application.PlacesService))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
