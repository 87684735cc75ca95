package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/pipestock/backend-go/internal/pipeline"
)

// IngestService downloads snapshot workbooks from Drive and runs them
// through the snapshot pipeline.
type IngestService struct {
	driveService *Service
	pipeline     pipeline.Pipeline
	sink         pipeline.SnapshotSink
	downloadDir  string

	// onIngested is called after a snapshot is persisted, typically to
	// invalidate the analytics cache.
	onIngested func(ctx context.Context)
}

func NewIngestService(driveService *Service, p pipeline.Pipeline, sink pipeline.SnapshotSink, downloadDir string, onIngested func(ctx context.Context)) *IngestService {
	return &IngestService{
		driveService: driveService,
		pipeline:     p,
		sink:         sink,
		downloadDir:  downloadDir,
		onIngested:   onIngested,
	}
}

// IngestFile downloads one workbook by Drive file ID, transforms it and
// persists the snapshot.
func (s *IngestService) IngestFile(ctx context.Context, fileID string) error {
	meta, err := s.fileMeta(fileID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.downloadDir, 0755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}

	localPath := filepath.Join(s.downloadDir, meta.Name)
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := s.driveService.DownloadFile(fileID, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", meta.Name, err)
	}
	out.Close()

	return s.IngestLocal(ctx, localPath)
}

// IngestLocal runs an already-downloaded workbook through the pipeline.
func (s *IngestService) IngestLocal(ctx context.Context, path string) error {
	if err := s.pipeline.Validate(path); err != nil {
		return fmt.Errorf("validation failed for %s: %w", path, err)
	}

	snap, err := s.pipeline.Transform(ctx, path)
	if err != nil {
		return fmt.Errorf("transformation failed for %s: %w", path, err)
	}

	if err := s.sink.SaveSnapshot(ctx, snap.Date, snap); err != nil {
		return fmt.Errorf("persistence failed for %s: %w", path, err)
	}

	if s.onIngested != nil {
		s.onIngested(ctx)
	}

	return nil
}

func (s *IngestService) fileMeta(fileID string) (*File, error) {
	f, err := s.driveService.srv.Files.Get(fileID).Fields("id, name, mimeType, modifiedTime, size").Do()
	if err != nil {
		return nil, fmt.Errorf("unable to stat drive file %s: %w", fileID, err)
	}
	return &File{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Size:         f.Size,
	}, nil
}
