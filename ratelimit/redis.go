package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/redis/go-redis/v9"
)

// ErrLimiterUnavailable wraps Redis failures.
var ErrLimiterUnavailable = errors.New("ratelimit: redis unavailable")

const defaultKeyPrefix = "credentials:reset"

// RedisLimiter keeps a per-email counter that expires one window after the
// first hit and a cooldown key that expires after the cooldown.
type RedisLimiter struct {
	client redis.Cmdable
	cfg    Config
	prefix string
}

// RedisOption customizes the RedisLimiter.
type RedisOption func(*RedisLimiter)

// WithKeyPrefix namespaces the limiter keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(l *RedisLimiter) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			l.prefix = trimmed
		}
	}
}

// NewRedisLimiter builds a limiter over the supplied client.
func NewRedisLimiter(client redis.Cmdable, cfg Config, opts ...RedisOption) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("ratelimit: redis client required")
	}
	l := &RedisLimiter{client: client, cfg: cfg.normalize(), prefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

var _ types.RateLimiter = (*RedisLimiter)(nil)

// Status reads the counter and the cooldown TTL.
func (l *RedisLimiter) Status(ctx context.Context, email string) (types.RateLimitStatus, error) {
	count, err := l.client.Get(ctx, l.countKey(email)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return types.RateLimitStatus{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	ttl, err := l.client.PTTL(ctx, l.cooldownKey(email)).Result()
	if err != nil {
		return types.RateLimitStatus{}, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	// PTTL reports negative values for missing keys.
	hasCooldown := ttl > 0
	sinceLast := l.cfg.Cooldown - ttl
	return l.cfg.evaluate(count, sinceLast, hasCooldown), nil
}

// Record counts one accepted request and starts the cooldown.
func (l *RedisLimiter) Record(ctx context.Context, email string, at time.Time) error {
	key := l.countKey(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, key, l.cfg.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	if l.cfg.Cooldown > 0 {
		if err := l.client.Set(ctx, l.cooldownKey(email), at.UTC().Unix(), l.cfg.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return nil
}

func (l *RedisLimiter) countKey(email string) string {
	return l.prefix + ":count:" + normalizeEmail(email)
}

func (l *RedisLimiter) cooldownKey(email string) string {
	return l.prefix + ":cooldown:" + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
