// Package usage tracks how often each seller copies a listing, backed by
// Redis. The compliance engine itself never touches state; this store is
// the collaborator that supplies it with UsageCounts snapshots and records
// confirmed copies.
package usage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/marketguard/listing-sentinel/internal/compliance"
	"github.com/marketguard/listing-sentinel/internal/config"
	"go.uber.org/zap"
)

// Counter buckets are keyed by calendar hour and calendar day. TTLs run
// past the bucket window so a snapshot taken near a boundary still sees
// the bucket it was recorded into.
const (
	hourKeyLayout = "2006010215"
	dayKeyLayout  = "20060102"
	hourTTL       = 2 * time.Hour
	dayTTL        = 48 * time.Hour
)

// Store is a Redis-backed usage counter store.
type Store struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// New creates a usage store and verifies the Redis connection.
func New(cfg config.UsageConfig, logger *zap.Logger) (*Store, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = cfg.MaxConnections
	opts.MinIdleConns = cfg.MinIdleConns

	store := &Store{
		client:    redis.NewClient(opts),
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := store.client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Usage store initialized",
		zap.String("redis_url", maskRedisURL(cfg.RedisURL)),
		zap.Int("max_connections", cfg.MaxConnections),
	)

	return store, nil
}

// Record registers one confirmed copy for the seller, bumping both the
// hourly and the daily counter in a single pipeline round trip.
func (s *Store) Record(ctx context.Context, sellerID string) error {
	now := time.Now()
	hourKey := s.hourKey(sellerID, now)
	dayKey := s.dayKey(sellerID, now)

	pipe := s.client.Pipeline()
	pipe.Incr(ctx, hourKey)
	pipe.Expire(ctx, hourKey, hourTTL)
	pipe.Incr(ctx, dayKey)
	pipe.Expire(ctx, dayKey, dayTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record copy: %w", err)
	}

	s.logger.Debug("Copy recorded", zap.String("seller_id", sellerID))
	return nil
}

// Snapshot returns the seller's current counters. Missing keys read as zero.
func (s *Store) Snapshot(ctx context.Context, sellerID string) (compliance.UsageCounts, error) {
	now := time.Now()

	values, err := s.client.MGet(ctx, s.hourKey(sellerID, now), s.dayKey(sellerID, now)).Result()
	if err != nil {
		return compliance.UsageCounts{}, fmt.Errorf("failed to read usage counters: %w", err)
	}

	return compliance.UsageCounts{
		CopiesLastHour: asInt(values[0]),
		CopiesToday:    asInt(values[1]),
	}, nil
}

// Reset clears the seller's counters. Used by operators, not by the
// request path.
func (s *Store) Reset(ctx context.Context, sellerID string) error {
	now := time.Now()
	if err := s.client.Del(ctx, s.hourKey(sellerID, now), s.dayKey(sellerID, now)).Err(); err != nil {
		return fmt.Errorf("failed to reset usage counters: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) hourKey(sellerID string, now time.Time) string {
	return fmt.Sprintf("%s:usage:%s:h:%s", s.keyPrefix, sellerID, now.Format(hourKeyLayout))
}

func (s *Store) dayKey(sellerID string, now time.Time) string {
	return fmt.Sprintf("%s:usage:%s:d:%s", s.keyPrefix, sellerID, now.Format(dayKeyLayout))
}

func asInt(value interface{}) int {
	str, ok := value.(string)
	if !ok {
		return 0
	}
	n := 0
	if _, err := fmt.Sscanf(str, "%d", &n); err != nil {
		return 0
	}
	return n
}

// maskRedisURL masks credentials in a Redis URL for logging.
func maskRedisURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if idx := strings.LastIndex(parts[0], ":"); idx > strings.Index(parts[0], "//")+1 {
		parts[0] = parts[0][:idx+1] + "***"
	}
	return parts[0] + "@" + parts[1]
}
