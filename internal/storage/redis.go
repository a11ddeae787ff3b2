package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/abandoned-sites/pkg/catalog"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "sites:"
	orderKey     = keyPrefix + "order"
	maxTxRetries = 10
)

func locationKey(id int) string {
	return keyPrefix + "location:" + strconv.Itoa(id)
}

func ratingKeyFor(session uuid.UUID, id int) string {
	return keyPrefix + "rating:" + session.String() + ":" + strconv.Itoa(id)
}

// RedisStorage keeps the catalog in Redis instead of process memory. Every
// key expires after the session TTL, so nothing outlives the browsing
// session.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage accepts either a host:port address or a redis:// URL.
func NewRedisStorage(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStorage, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisStorage{
		client: redis.NewClient(opts),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection pings until Redis answers, trying at most attempts
// times with delay between tries. The last ping error is wrapped on failure.
func (r *RedisStorage) WaitForConnection(ctx context.Context, attempts int, delay time.Duration) error {
	if delay <= 0 {
		delay = time.Millisecond
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = r.Ping(ctx); lastErr == nil {
			r.logger.Info("Redis connection established", "attempt", attempt)
			return nil
		}
		r.logger.Debug("Redis not ready yet", "error", lastErr, "attempt", attempt)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for redis: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return fmt.Errorf("redis unavailable after %d attempts: %w", attempts, lastErr)
}

func (r *RedisStorage) Seed(ctx context.Context, locs []catalog.Location) error {
	seen := make(map[int]bool, len(locs))
	payloads := make([][]byte, len(locs))
	ids := make([]any, len(locs))
	for i, loc := range locs {
		if seen[loc.ID] {
			return fmt.Errorf("duplicate location id %d", loc.ID)
		}
		seen[loc.ID] = true

		data, err := json.Marshal(loc)
		if err != nil {
			return fmt.Errorf("failed to marshal location %d: %w", loc.ID, err)
		}
		payloads[i] = data
		ids[i] = loc.ID
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, orderKey)
		for i, loc := range locs {
			pipe.Set(ctx, locationKey(loc.ID), payloads[i], r.ttl)
		}
		if len(ids) > 0 {
			pipe.RPush(ctx, orderKey, ids...)
			pipe.Expire(ctx, orderKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to seed catalog", "error", err)
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	r.logger.Debug("Catalog seeded", "locations", len(locs), "ttl", r.ttl)
	return nil
}

func (r *RedisStorage) ListLocations(ctx context.Context, filter catalog.Filter) ([]catalog.Location, error) {
	idStrs, err := r.client.LRange(ctx, orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	out := make([]catalog.Location, 0, len(idStrs))
	if len(idStrs) == 0 {
		return out, nil
	}

	keys := make([]string, len(idStrs))
	for i, s := range idStrs {
		keys[i] = keyPrefix + "location:" + s
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// Expired between LRANGE and MGET.
			r.logger.Warn("Location missing from catalog order", "key", keys[i])
			continue
		}
		var loc catalog.Location
		if err := json.Unmarshal([]byte(s), &loc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		if filter.Matches(loc) {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (r *RedisStorage) GetLocation(ctx context.Context, id int) (*catalog.Location, error) {
	data, err := r.client.Get(ctx, locationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %d", ErrLocationNotFound, id)
		}
		return nil, fmt.Errorf("failed to load location %d: %w", id, err)
	}

	var loc catalog.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location %d: %w", id, err)
	}
	return &loc, nil
}

func (r *RedisStorage) Rate(ctx context.Context, session uuid.UUID, id int, value int) (*catalog.Location, error) {
	if value < catalog.MinRating || value > catalog.MaxRating {
		return nil, fmt.Errorf("%w: got %d", catalog.ErrInvalidRating, value)
	}
	exists, err := r.client.Exists(ctx, locationKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check location %d: %w", id, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrLocationNotFound, id)
	}

	// Claim the vote first; SETNX is what makes a repeat vote impossible.
	key := ratingKeyFor(session, id)
	claimed, err := r.client.SetNX(ctx, key, value, r.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to record rating: %w", err)
	}
	if !claimed {
		return nil, ErrAlreadyRated
	}

	loc, err := r.updateLocation(ctx, id, func(loc *catalog.Location) error {
		return loc.Rate(value)
	})
	if err != nil {
		if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
			r.logger.Error("Failed to release rating claim", "key", key, "error", delErr)
		}
		return nil, err
	}
	return loc, nil
}

func (r *RedisStorage) UserRating(ctx context.Context, session uuid.UUID, id int) (int, error) {
	v, err := r.client.Get(ctx, ratingKeyFor(session, id)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load rating: %w", err)
	}
	return v, nil
}

func (r *RedisStorage) AddStory(ctx context.Context, id int, story catalog.Story) (*catalog.Location, error) {
	return r.updateLocation(ctx, id, func(loc *catalog.Location) error {
		loc.AddStory(story)
		return nil
	})
}

// touchCatalog restarts the TTL of the order list and every listed location
// so the catalog expires as one unit.
func (r *RedisStorage) touchCatalog(ctx context.Context, pipe redis.Pipeliner, order []string) {
	pipe.Expire(ctx, orderKey, r.ttl)
	for _, id := range order {
		pipe.Expire(ctx, keyPrefix+"location:"+id, r.ttl)
	}
}

// updateLocation applies fn under WATCH so concurrent writers never lose an
// update; a conflicting write retries from a fresh read.
func (r *RedisStorage) updateLocation(ctx context.Context, id int, fn func(*catalog.Location) error) (*catalog.Location, error) {
	key := locationKey(id)

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		var updated catalog.Location
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return fmt.Errorf("%w: %d", ErrLocationNotFound, id)
				}
				return fmt.Errorf("failed to load location %d: %w", id, err)
			}

			var loc catalog.Location
			if err := json.Unmarshal(data, &loc); err != nil {
				return fmt.Errorf("failed to unmarshal location %d: %w", id, err)
			}
			if err := fn(&loc); err != nil {
				return err
			}
			out, err := json.Marshal(loc)
			if err != nil {
				return fmt.Errorf("failed to marshal location %d: %w", id, err)
			}

			order, err := tx.LRange(ctx, orderKey, 0, -1).Result()
			if err != nil {
				return fmt.Errorf("failed to read catalog order: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, r.ttl)
				r.touchCatalog(ctx, pipe, order)
				return nil
			})
			if err == nil {
				updated = loc
			}
			return err
		}, key)

		if err == nil {
			return &updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug("Location update conflicted, retrying", "location_id", id, "attempt", attempt+1)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("location %d update conflicted %d times", id, maxTxRetries)
}
