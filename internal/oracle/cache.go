package oracle

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"giggate/internal/platform/redis"
	id "giggate/pkg/domain"
)

const defaultCacheTTL = 30 * time.Second

// Cache is a Redis-backed read-through decorator over a ScoreSource. Scores
// move slowly relative to eligibility traffic, so a short TTL takes most of
// the load off the oracle without letting decisions go stale.
//
// Cache failures degrade to the underlying source; they never fail a lookup
// on their own.
type Cache struct {
	source ScoreSource
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(source ScoreSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{source: source, redis: client, ttl: ttl, logger: logger}
}

func (c *Cache) Score(ctx context.Context, identity id.Identity) (id.TrustScore, error) {
	key := cacheKey(identity)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		if v, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			if score, scoreErr := id.ParseTrustScore(v); scoreErr == nil {
				return score, nil
			}
		}
	} else if !errors.Is(err, goredis.Nil) && c.logger != nil {
		c.logger.WarnContext(ctx, "score cache read failed",
			"identity", identity.String(),
			"error", err,
		)
	}

	score, err := c.source.Score(ctx, identity)
	if err != nil {
		return 0, err
	}

	if setErr := c.redis.Set(ctx, key, strconv.FormatFloat(score.Float64(), 'f', -1, 64), c.ttl).Err(); setErr != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "score cache write failed",
			"identity", identity.String(),
			"error", setErr,
		)
	}
	return score, nil
}

func cacheKey(identity id.Identity) string {
	return "giggate:score:" + identity.String()
}
