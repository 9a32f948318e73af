package main

import (
	"context"
	"embed"
	"log"
	"net/http"
	"os"

	"sheetcheck/internal"
	"sheetcheck/internal/config"
	"sheetcheck/internal/container"
	"sheetcheck/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

//go:embed ui/templates/** ui/static/*
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level), appConfig.Logging.Format, os.Stderr)

	// Create dependency injection container
	appContainer, err := container.New(context.Background(), appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	var metricsHandler http.Handler
	if appConfig.Metrics.Enabled {
		metricsHandler = appContainer.Metrics.Handler()
	}

	// Initialize web server
	server, err := ui.NewServer(embeddedFiles, appContainer.ValidationService, metricsHandler, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	logger.Info("Starting sheetcheck server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
