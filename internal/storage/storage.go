package storage

import (
	"context"
	"fmt"
	"strings"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the
// snapshot pipeline and report runner need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

// LatestSnapshotKey resolves the most recent snapshot workbook under a
// prefix. Snapshot keys embed the date as YYYYMMDD (or YYYY-MM-DD), so the
// lexically greatest xlsx key is the newest one.
func LatestSnapshotKey(ctx context.Context, store ObjectStorage, prefix string) (string, error) {
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed listing snapshots under %q: %w", prefix, err)
	}

	latest := ""
	for _, obj := range objects {
		if !strings.EqualFold(strings.TrimSpace(extOf(obj.Key)), ".xlsx") {
			continue
		}
		if obj.Key > latest {
			latest = obj.Key
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no snapshot workbooks found under %q", prefix)
	}
	return latest, nil
}

func extOf(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i:]
	}
	return ""
}
