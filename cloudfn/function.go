// Package cloudfn registers the fulfillment webhook as a Google Cloud Function
// named ecoWebhook. It serves the built-in event catalog.
package cloudfn

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/greenbot-eco/greenbot/internal/config"
	"github.com/greenbot-eco/greenbot/internal/events"
	"github.com/greenbot-eco/greenbot/internal/intents"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
	"github.com/greenbot-eco/greenbot/internal/webhook"
)

// FunctionName is the entry point name given to the Cloud Functions deployer.
const FunctionName = "ecoWebhook"

func init() {
	functions.HTTP(FunctionName, NewHandler().ServeHTTP)
}

// NewHandler builds the webhook handler from defaults and environment overrides.
func NewHandler() http.Handler {
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		slog.Warn("ignoring invalid environment overrides", "error", err)
		cfg = config.DefaultConfig()
	}
	logger := telemetry.NewLogger(os.Stdout, cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)

	loc, err := time.LoadLocation(cfg.Events.Timezone)
	if err != nil {
		logger.Warn("invalid events timezone, using UTC", "timezone", cfg.Events.Timezone, "error", err)
		loc = time.UTC
	}

	dispatcher := intents.NewDispatcher(events.NewStaticCatalog(events.DefaultCities()), time.Now, loc)
	return webhook.NewHandler(dispatcher, nil, logger, "cloudfn")
}
