// Package redis holds the Redis-backed document number allocator.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"pharmapos/internal/config"
	"pharmapos/internal/domain"
	"pharmapos/internal/port"
)

const (
	keySequence = "seq:%s:%s:%s"

	// Counters expire well after their period closes.
	sequenceTTL = 400 * 24 * time.Hour
)

// NewClient opens a Redis client from config and checks connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.Password),
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

type sequenceAllocator struct {
	client goredis.Cmdable
}

// NewSequenceAllocator creates an allocator on Redis INCR. Numbers never
// collide, but one taken by a transaction that later rolls back is lost.
func NewSequenceAllocator(client goredis.Cmdable) port.SequenceAllocator {
	return &sequenceAllocator{client: client}
}

func (a *sequenceAllocator) Next(ctx context.Context, sellerGSTINID uuid.UUID, kind domain.DocumentKind, period string) (int64, error) {
	key := SequenceKey(sellerGSTINID, kind, period)
	next, err := a.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redisSequence.Next: %w", err)
	}
	if next == 1 {
		if err := a.client.Expire(ctx, key, sequenceTTL).Err(); err != nil {
			return 0, fmt.Errorf("redisSequence.Next expire: %w", err)
		}
	}
	return next, nil
}

// SequenceKey is the Redis key of one sequence scope.
func SequenceKey(sellerGSTINID uuid.UUID, kind domain.DocumentKind, period string) string {
	return fmt.Sprintf(keySequence, sellerGSTINID, strings.ToLower(string(kind)), period)
}
