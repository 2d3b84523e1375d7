package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and the resolved places settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("PlacesBridge", GetVersion())

	logger.Info().
		Str("platform", config.Places.Platform).
		Str("debounce", config.Places.DebounceInterval.String()).
		Str("environment", config.Environment).
		Msg("Places bridge configuration")
}
