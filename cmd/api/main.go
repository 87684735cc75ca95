package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/andresuchdata/pipestock/backend-go/internal/cache"
	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/config"
	"github.com/andresuchdata/pipestock/backend-go/internal/drive"
	"github.com/andresuchdata/pipestock/backend-go/internal/pipeline"
	"github.com/andresuchdata/pipestock/backend-go/internal/repository"
	"github.com/andresuchdata/pipestock/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pipestock/backend-go/pkg/logger"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	// Initialize Google Drive service
	driveService, err := drive.NewService(driveCredentials(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	snapshotRepo := repository.NewSnapshotRepository(db.DB)
	gradeRepo := repository.NewGradeMappingRepository(db.DB)

	mapping, err := gradeRepo.LoadAll(context.Background())
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Grade mappings unavailable, classifying by spec pattern only")
		mapping = nil
	}

	snapshotPipeline := pipeline.NewSnapshotPipeline(pipeline.SnapshotConfig{}, classify.NewEngine(mapping, nil))

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analytics cache unavailable, falling back to noop cache")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	ingestService := drive.NewIngestService(driveService, snapshotPipeline, snapshotRepo, cfg.App.DownloadDir, func(ctx context.Context) {
		if err := analyticsCache.InvalidateAll(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to invalidate analytics cache after ingest")
		}
	})

	// Create router
	r := mux.NewRouter()

	// Register routes
	driveHandler := drive.NewHandler(driveService, ingestService)
	driveHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	if cfg.Drive.Enabled && cfg.Drive.FolderID != "" {
		watcher := drive.NewWatcher(ingestService, cfg.Drive.FolderID, time.Duration(cfg.Drive.PollIntervalSeconds)*time.Second)
		go func() {
			if err := watcher.Run(context.Background()); err != nil {
				logger.Log.Error().Err(err).Msg("Drive watcher stopped")
			}
		}()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

// driveCredentials prefers the configured credentials file and falls back
// to the raw JSON carried in the environment.
func driveCredentials(cfg *config.Config) string {
	if cfg.Drive.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.Drive.CredentialsFile)
		if err == nil {
			return string(data)
		}
		logger.Log.Warn().Err(err).Str("file", cfg.Drive.CredentialsFile).Msg("Failed to read Drive credentials file")
	}
	return os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON")
}
