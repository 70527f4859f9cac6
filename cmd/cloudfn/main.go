// Command cloudfn runs the ecoWebhook Cloud Function locally with the
// Functions Framework.
package main

import (
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	"github.com/greenbot-eco/greenbot/cloudfn"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", cloudfn.FunctionName)
	}

	slog.Info("functions framework starting", "port", port, "target", os.Getenv("FUNCTION_TARGET"))
	if err := funcframework.Start(port); err != nil {
		slog.Error("functions framework stopped", "error", err)
		os.Exit(1)
	}
}
