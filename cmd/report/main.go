package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/pipestock/backend-go/internal/classify"
	"github.com/andresuchdata/pipestock/backend-go/internal/config"
	"github.com/andresuchdata/pipestock/backend-go/internal/pipeline"
	"github.com/andresuchdata/pipestock/backend-go/internal/report"
	"github.com/andresuchdata/pipestock/backend-go/internal/repository"
	"github.com/andresuchdata/pipestock/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pipestock/backend-go/internal/storage"
	"github.com/andresuchdata/pipestock/backend-go/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "report",
		Usage: "Generate the Free-For-Sale and priority reports from an inventory snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Usage:   "Local snapshot workbook to process instead of the latest one in storage",
				EnvVars: []string{"REPORT_FILE"},
			},
			&cli.BoolFlag{
				Name:    "upload",
				Usage:   "Upload the generated CSV reports to object storage",
				EnvVars: []string{"REPORT_UPLOAD"},
			},
			&cli.BoolFlag{
				Name:  "no-persist",
				Usage: "Skip persisting the snapshot to Postgres",
			},
			&cli.StringFlag{
				Name:  "compare-with",
				Usage: "Previous snapshot workbook to diff against (requires --file)",
			},
		},
		Action: runReport,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runReport(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	localFile := c.String("file")
	upload := c.Bool("upload")
	compareWith := c.String("compare-with")
	if compareWith != "" && localFile == "" {
		return fmt.Errorf("--compare-with requires --file")
	}

	var (
		sink    pipeline.SnapshotSink
		mapping map[string]string
	)
	if !c.Bool("no-persist") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		sink = repository.NewSnapshotRepository(db.DB)

		mapping, err = repository.NewGradeMappingRepository(db.DB).LoadAll(c.Context)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Grade mappings unavailable, classifying by spec pattern only")
			mapping = nil
		}
	}

	var store storage.ObjectStorage
	if localFile == "" || upload {
		var err error
		store, err = newObjectStorage(cfg.Storage)
		if err != nil {
			return err
		}
	}

	snapshotPipeline := pipeline.NewSnapshotPipeline(pipeline.SnapshotConfig{}, classify.NewEngine(mapping, nil))
	runner := report.NewRunner(store, snapshotPipeline, sink, cfg.App, cfg.Storage, cfg.Report, upload)

	if localFile != "" {
		if err := runner.RunFile(c.Context, localFile); err != nil {
			return err
		}
		if compareWith != "" {
			return runner.RunComparison(c.Context, compareWith, localFile)
		}
		return nil
	}
	return runner.Run(c.Context)
}

func newObjectStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch cfg.Backend {
	case "sevalla":
		return storage.NewSevallaClient(storage.SevallaConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	case "minio", "":
		return storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
