package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/pipestock/backend-go/internal/config"
	"github.com/andresuchdata/pipestock/backend-go/internal/storage"
)

// runDownload pulls snapshot workbooks from the configured object storage
// bucket into a local directory, ready for the backfill command.
func runDownload(c *cli.Context) error {
	cfg := config.Load()

	store, err := newObjectStorage(cfg.Storage)
	if err != nil {
		return err
	}

	destDir := c.String("dest")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}

	prefix := cfg.Storage.SnapshotPrefix
	var keys []string
	if override := c.String("key"); override != "" {
		keys = []string{resolveObjectKey(prefix, override)}
	} else {
		objects, err := store.ListObjects(c.Context, strings.TrimSpace(prefix))
		if err != nil {
			return fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
		}
		for _, obj := range objects {
			if strings.HasSuffix(strings.ToLower(obj.Key), ".xlsx") {
				keys = append(keys, obj.Key)
			}
		}
	}

	if len(keys) == 0 {
		return fmt.Errorf("no snapshot workbooks found for prefix %s", prefix)
	}

	sort.Strings(keys)
	for _, key := range keys {
		localPath := filepath.Join(destDir, objectRelativePath(prefix, key))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
		}
		if err := store.DownloadObject(c.Context, key, localPath); err != nil {
			return err
		}
		fmt.Printf("downloaded %s -> %s\n", key, localPath)
	}

	return nil
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

func resolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed) {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
