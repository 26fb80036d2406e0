package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
)

// HistoryLimiter derives the limit state from stored reset requests.
type HistoryLimiter struct {
	history types.RequestHistory
	cfg     Config
	clock   types.Clock
}

// NewHistoryLimiter builds a limiter over the request history.
func NewHistoryLimiter(history types.RequestHistory, cfg Config, clock types.Clock) (*HistoryLimiter, error) {
	if history == nil {
		return nil, errors.New("ratelimit: request history required")
	}
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &HistoryLimiter{history: history, cfg: cfg.normalize(), clock: clock}, nil
}

var _ types.RateLimiter = (*HistoryLimiter)(nil)

// WithHistory returns a copy reading from history, typically a repository
// bound to the current transaction.
func (l *HistoryLimiter) WithHistory(history types.RequestHistory) types.RateLimiter {
	if history == nil {
		return l
	}
	scoped := *l
	scoped.history = history
	return &scoped
}

// Status counts requests in the trailing window and measures the time since
// the most recent one.
func (l *HistoryLimiter) Status(ctx context.Context, email string) (types.RateLimitStatus, error) {
	now := l.clock.Now()
	count, err := l.history.CountSince(ctx, email, now.Add(-l.cfg.Window))
	if err != nil {
		return types.RateLimitStatus{}, err
	}
	latest, err := l.history.LatestRequestedAt(ctx, email)
	if err != nil {
		return types.RateLimitStatus{}, err
	}
	return l.cfg.evaluate(count, now.Sub(latest), !latest.IsZero()), nil
}

// Record is a no-op; the inserted request is the record.
func (l *HistoryLimiter) Record(context.Context, string, time.Time) error {
	return nil
}
