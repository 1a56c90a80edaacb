// Package cache keeps the full parking lot list in Redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"parking_tracker/internal/domain"
	"parking_tracker/internal/logger"
	"parking_tracker/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	lotListKey       = "parking:lots:all"
	lotGenerationKey = "parking:lots:generation"
)

var errGenerationMoved = errors.New("lot cache generation moved")

// lotListEntry is the cached value. An entry is only served while its
// generation matches lotGenerationKey.
type lotListEntry struct {
	Generation int64               `json:"generation"`
	Lots       []domain.ParkingLot `json:"lots"`
}

type RedisLotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedisLotCache(client *redis.Client, ttl time.Duration) *RedisLotCache {
	return &RedisLotCache{client: client, ttl: ttl}
}

func (c *RedisLotCache) GetLots(ctx context.Context) ([]domain.ParkingLot, int64, bool) {
	vals, err := c.client.MGet(ctx, lotGenerationKey, lotListKey).Result()
	if err != nil {
		logger.Log.WithError(err).Warn("lot cache read failed")
		metrics.CacheMisses.Inc()
		return nil, -1, false
	}

	generation, err := parseGeneration(vals[0])
	if err != nil {
		logger.Log.WithError(err).Warn("lot cache generation is corrupt")
		metrics.CacheMisses.Inc()
		return nil, -1, false
	}

	raw, ok := vals[1].(string)
	if !ok {
		metrics.CacheMisses.Inc()
		return nil, generation, false
	}
	var entry lotListEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Log.WithError(err).Warn("lot cache entry is corrupt, dropping it")
		if err := c.client.Del(ctx, lotListKey).Err(); err != nil {
			logger.Log.WithError(err).Warn("lot cache delete failed")
		}
		metrics.CacheMisses.Inc()
		return nil, generation, false
	}
	if entry.Generation != generation {
		metrics.CacheMisses.Inc()
		return nil, generation, false
	}
	metrics.CacheHits.Inc()
	return entry.Lots, generation, true
}

// SetLots stores lots read while the cache was at generation. The write is
// skipped if an Invalidate has moved the generation since then.
func (c *RedisLotCache) SetLots(ctx context.Context, generation int64, lots []domain.ParkingLot) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(lotListEntry{Generation: generation, Lots: lots})
	if err != nil {
		logger.Log.WithError(err).Warn("lot cache encode failed")
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, lotGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, lotListKey, raw, c.ttl)
			return nil
		})
		return err
	}, lotGenerationKey)

	switch {
	case err == nil:
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		logger.Log.WithField("generation", generation).Debug("lot list changed while loading, not caching it")
	default:
		logger.Log.WithError(err).Warn("lot cache write failed")
	}
}

// Invalidate bumps the generation first, so a cached entry is no longer
// served even if the delete below fails.
func (c *RedisLotCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, lotGenerationKey).Err(); err != nil {
		logger.Log.WithError(err).Warn("lot cache generation bump failed")
	}
	if err := c.client.Del(ctx, lotListKey).Err(); err != nil {
		logger.Log.WithError(err).Warn("lot cache invalidation failed")
	}
}

func parseGeneration(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	s, ok := v.(string)
	if !ok {
		return 0, errors.New("unexpected generation type")
	}
	return strconv.ParseInt(s, 10, 64)
}
