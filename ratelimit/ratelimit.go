// Package ratelimit decides whether an email may submit another password
// reset request. Two strategies share the same status semantics: the
// HistoryLimiter recomputes state from stored requests on every read, the
// RedisLimiter keeps an explicit per-email counter and cooldown key.
package ratelimit

import (
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
)

const (
	DefaultDailyLimit = 3
	DefaultWindow     = 24 * time.Hour
	DefaultCooldown   = 5 * time.Minute
)

// Config holds the intake limits. Zero values fall back to the defaults.
type Config struct {
	DailyLimit int           `json:"daily_limit" env:"RESET_DAILY_LIMIT" default:"3"`
	Window     time.Duration `json:"window" env:"RESET_WINDOW" default:"24h"`
	Cooldown   time.Duration `json:"cooldown" env:"RESET_COOLDOWN" default:"5m"`
}

// DefaultConfig returns 3 requests per trailing 24 hours with a 5 minute
// cooldown.
func DefaultConfig() Config {
	return Config{
		DailyLimit: DefaultDailyLimit,
		Window:     DefaultWindow,
		Cooldown:   DefaultCooldown,
	}
}

func (c Config) normalize() Config {
	if c.DailyLimit <= 0 {
		c.DailyLimit = DefaultDailyLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
	return c
}

// evaluate applies the daily cap first and then the cooldown.
func (c Config) evaluate(count int, sinceLast time.Duration, hasPrevious bool) types.RateLimitStatus {
	remaining := max(c.DailyLimit-count, 0)
	if count >= c.DailyLimit {
		return types.RateLimitStatus{
			CanSubmit:         false,
			AttemptsRemaining: 0,
			Reason:            types.RateLimitReasonDailyLimit,
		}
	}
	if hasPrevious && c.Cooldown > 0 {
		wait := c.Cooldown - max(sinceLast, 0)
		if wait > 0 {
			return types.RateLimitStatus{
				CanSubmit:         false,
				AttemptsRemaining: remaining,
				RemainingSeconds:  ceilSeconds(wait),
				Reason:            types.RateLimitReasonCooldown,
			}
		}
	}
	return types.RateLimitStatus{
		CanSubmit:         true,
		AttemptsRemaining: remaining,
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
