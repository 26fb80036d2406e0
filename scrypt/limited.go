package scrypt

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// LimitedHasher bounds how many derivations run at once. Each derivation holds
// a working table of 128*r*N bytes, so unbounded fan-out can exhaust memory.
type LimitedHasher struct {
	hasher *Hasher
	slots  *semaphore.Weighted
}

// NewLimitedHasher wraps hasher so at most limit derivations run concurrently.
// A limit below one is treated as one.
func NewLimitedHasher(hasher *Hasher, limit int) *LimitedHasher {
	if limit < 1 {
		limit = 1
	}
	return &LimitedHasher{
		hasher: hasher,
		slots:  semaphore.NewWeighted(int64(limit)),
	}
}

// Hash waits for a free slot and then hashes password. Cancellation is only
// observed while waiting.
func (l *LimitedHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.slots.Release(1)
	return l.hasher.Hash(password)
}

// Verify waits for a free slot and then verifies password.
func (l *LimitedHasher) Verify(ctx context.Context, stored, password string) (bool, error) {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer l.slots.Release(1)
	return l.hasher.Verify(stored, password), nil
}

// Sync adapts l to the context-free Hash/Verify pair used by the reset
// workflow. Callers wait for a slot without a deadline.
func (l *LimitedHasher) Sync() SyncHasher {
	return SyncHasher{limited: l}
}

// SyncHasher is a LimitedHasher without context arguments.
type SyncHasher struct {
	limited *LimitedHasher
}

// Hash derives a stored credential for password.
func (s SyncHasher) Hash(password string) (string, error) {
	return s.limited.Hash(context.Background(), password)
}

// Verify reports whether password matches stored.
func (s SyncHasher) Verify(stored, password string) bool {
	ok, err := s.limited.Verify(context.Background(), stored, password)
	return err == nil && ok
}
