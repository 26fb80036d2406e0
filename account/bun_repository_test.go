package account

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-credentials/internal/testdb"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestRepository_GetByEmailNormalizes(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(RepositoryConfig{DB: testdb.New(t)})
	require.NoError(t, err)

	created, err := repo.Create(ctx, types.Account{Email: " User@Example.com ", Name: "User"})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", created.Email)

	found, err := repo.GetByEmail(ctx, "USER@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRepository_UnlockClearsLockState(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewRepository(RepositoryConfig{DB: testdb.New(t), Clock: fixedClock{t: now}})
	require.NoError(t, err)

	created, err := repo.Create(ctx, types.Account{
		Email:               "locked@example.com",
		FailedLoginAttempts: 5,
		IsLocked:            true,
		LockReason:          "too many failed attempts",
		LockedAt:            now.Add(-time.Hour),
	})
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, before.IsLocked)
	require.Equal(t, 5, before.FailedLoginAttempts)

	require.NoError(t, repo.Unlock(ctx, created.ID))

	after, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, after.IsLocked)
	require.Zero(t, after.FailedLoginAttempts)
	require.Empty(t, after.LockReason)
	require.True(t, after.LockedAt.IsZero())

	require.ErrorIs(t, repo.Unlock(ctx, uuid.New()), types.ErrAccountNotFound)
}

func TestRepository_RecordFailedLoginLocksAtThreshold(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(RepositoryConfig{DB: testdb.New(t)})
	require.NoError(t, err)

	created, err := repo.Create(ctx, types.Account{Email: "lockme@example.com"})
	require.NoError(t, err)

	var current *types.Account
	for i := 0; i < 3; i++ {
		current, err = repo.RecordFailedLogin(ctx, created.ID, 3, "failed attempts")
		require.NoError(t, err)
	}
	require.Equal(t, 3, current.FailedLoginAttempts)
	require.True(t, current.IsLocked)
	require.Equal(t, "failed attempts", current.LockReason)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, types.ErrAccountNotFound)
}
