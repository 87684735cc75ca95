package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how workbooks are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader wraps Service to download snapshot workbooks from a folder.
type Downloader struct {
	service *Service
}

// NewDownloader creates a new Downloader.
func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadFolderXLSX downloads all non-trashed XLSX files from the given
// Drive folder into DownloadDir and returns the local paths.
func (d *Downloader) DownloadFolderXLSX(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListFiles(opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if strings.ToLower(filepath.Ext(f.Name)) != ".xlsx" {
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, f.Name)
		out, err := os.Create(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create local file %s: %w", localPath, err)
		}
		if err := d.service.DownloadFile(f.ID, out); err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		out.Close()
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}

// Watcher polls a Drive folder and ingests workbooks it has not seen yet.
type Watcher struct {
	ingest       *IngestService
	folderID     string
	pollInterval time.Duration

	seen map[string]struct{}
}

// NewWatcher creates a watcher over the given folder.
func NewWatcher(ingest *IngestService, folderID string, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	return &Watcher{
		ingest:       ingest,
		folderID:     folderID,
		pollInterval: pollInterval,
		seen:         make(map[string]struct{}),
	}
}

// Run polls until the context is cancelled. Individual ingest failures
// are logged and retried on the next poll.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if err := w.poll(ctx); err != nil {
			log.Error().Err(err).Str("folder", w.folderID).Msg("drive poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) poll(ctx context.Context) error {
	files, err := w.ingest.driveService.ListFiles(w.folderID)
	if err != nil {
		return err
	}

	for _, f := range files {
		if strings.ToLower(filepath.Ext(f.Name)) != ".xlsx" {
			continue
		}
		if _, ok := w.seen[f.ID]; ok {
			continue
		}

		log.Info().Str("file", f.Name).Msg("ingesting new snapshot workbook")
		if err := w.ingest.IngestFile(ctx, f.ID); err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("snapshot ingest failed")
			continue
		}
		w.seen[f.ID] = struct{}{}
	}

	return nil
}
