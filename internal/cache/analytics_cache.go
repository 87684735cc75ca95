package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/pipestock/backend-go/internal/config"
	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/pivot"
)

const (
	heatmapKeyPrefix       = "analytics:heatmap"
	specSummaryKeyPrefix   = "analytics:spec_summary"
	analyticsScanBatchSize = 100
)

// AnalyticsCache holds computed heatmap pivots and per-spec summaries.
// Entries are invalidated wholesale when a new snapshot lands.
type AnalyticsCache interface {
	GetHeatmap(ctx context.Context, filter domain.HeatmapFilter) (*pivot.Table, bool, error)
	SetHeatmap(ctx context.Context, filter domain.HeatmapFilter, table *pivot.Table) error
	GetSpecSummaries(ctx context.Context, snapshotDate string) ([]domain.SpecSummary, bool, error)
	SetSpecSummaries(ctx context.Context, snapshotDate string, summaries []domain.SpecSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalyticsCache struct{}

func NewAnalyticsCache(cfg config.CacheConfig) (AnalyticsCache, error) {
	if !cfg.Enabled {
		return &noopAnalyticsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalyticsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalyticsCache() AnalyticsCache {
	return &noopAnalyticsCache{}
}

func (c *redisAnalyticsCache) GetHeatmap(ctx context.Context, filter domain.HeatmapFilter) (*pivot.Table, bool, error) {
	key := buildHeatmapKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var table pivot.Table
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, false, fmt.Errorf("decode heatmap cache: %w", err)
	}

	return &table, true, nil
}

func (c *redisAnalyticsCache) SetHeatmap(ctx context.Context, filter domain.HeatmapFilter, table *pivot.Table) error {
	key := buildHeatmapKey(filter)
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode heatmap cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalyticsCache) GetSpecSummaries(ctx context.Context, snapshotDate string) ([]domain.SpecSummary, bool, error) {
	key := buildSpecSummaryKey(snapshotDate)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.SpecSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode spec summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisAnalyticsCache) SetSpecSummaries(ctx context.Context, snapshotDate string, summaries []domain.SpecSummary) error {
	key := buildSpecSummaryKey(snapshotDate)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode spec summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalyticsCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, heatmapKeyPrefix, analyticsScanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, specSummaryKeyPrefix, analyticsScanBatchSize)
}

func (n *noopAnalyticsCache) GetHeatmap(ctx context.Context, filter domain.HeatmapFilter) (*pivot.Table, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetHeatmap(ctx context.Context, filter domain.HeatmapFilter, table *pivot.Table) error {
	return nil
}

func (n *noopAnalyticsCache) GetSpecSummaries(ctx context.Context, snapshotDate string) ([]domain.SpecSummary, bool, error) {
	return nil, false, nil
}

func (n *noopAnalyticsCache) SetSpecSummaries(ctx context.Context, snapshotDate string, summaries []domain.SpecSummary) error {
	return nil
}

func (n *noopAnalyticsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildHeatmapKey(filter domain.HeatmapFilter) string {
	return fmt.Sprintf("%s:%s", heatmapKeyPrefix, heatmapFilterHash(filter))
}

func buildSpecSummaryKey(snapshotDate string) string {
	date := strings.TrimSpace(snapshotDate)
	if date == "" {
		date = "latest"
	}
	return fmt.Sprintf("%s:%s", specSummaryKeyPrefix, date)
}

func heatmapFilterHash(filter domain.HeatmapFilter) string {
	parts := []string{}

	if filter.SnapshotDate != "" {
		parts = append(parts, "snapshot_date="+strings.TrimSpace(filter.SnapshotDate))
	}
	if filter.Source != "" {
		parts = append(parts, "source="+strings.ToLower(strings.TrimSpace(string(filter.Source))))
	}
	if filter.Grade != "" {
		parts = append(parts, "grade="+strings.ToLower(strings.TrimSpace(filter.Grade)))
	}
	if filter.Specification != "" {
		parts = append(parts, "specification="+strings.ToUpper(strings.TrimSpace(filter.Specification)))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
