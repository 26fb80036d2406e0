package resetrequest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-credentials/internal/testdb"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var sampleHash = strings.Repeat("a", 32) + ":" + strings.Repeat("b", 128)

func newTestRepository(t *testing.T) (*Repository, *stepClock) {
	t.Helper()
	clock := &stepClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	repo, err := NewRepository(RepositoryConfig{DB: testdb.New(t), Clock: clock})
	require.NoError(t, err)
	return repo, clock
}

func TestRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepository(t)

	created, err := repo.CreateRequest(ctx, types.ResetRequest{
		Email:   "  User@Example.COM ",
		Message: "locked out",
		Requester: types.RequesterMetadata{
			IPAddress: "203.0.113.9",
			UserAgent: "test-agent",
		},
		Status:          types.ResetStatusApproved,
		NewPasswordHash: sampleHash,
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", created.Email)
	require.Equal(t, types.ResetStatusPending, created.Status)
	require.Empty(t, created.NewPasswordHash)

	fetched, err := repo.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "locked out", fetched.Message)
	require.Equal(t, "203.0.113.9", fetched.Requester.IPAddress)
	require.Equal(t, uuid.Nil, fetched.UserID)
	require.True(t, fetched.RequestedAt.Equal(clock.Now()))

	_, err = repo.GetRequest(ctx, uuid.New())
	require.ErrorIs(t, err, types.ErrRequestNotFound)
}

func TestRepository_HistoryQueries(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepository(t)

	latest, err := repo.LatestRequestedAt(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, latest.IsZero())

	start := clock.Now()
	for i := 0; i < 3; i++ {
		_, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "user@example.com"})
		require.NoError(t, err)
		clock.Advance(10 * time.Hour)
	}
	_, err = repo.CreateRequest(ctx, types.ResetRequest{Email: "other@example.com"})
	require.NoError(t, err)

	count, err := repo.CountSince(ctx, "USER@example.com", start)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = repo.CountSince(ctx, "user@example.com", start.Add(5*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	latest, err = repo.LatestRequestedAt(ctx, "user@example.com")
	require.NoError(t, err)
	require.True(t, latest.Equal(start.Add(20*time.Hour)), latest)
}

func TestRepository_TransitionIsSingleShot(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepository(t)
	reviewer := uuid.New()

	created, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "user@example.com", UserID: uuid.New()})
	require.NoError(t, err)

	approved, err := repo.Transition(ctx, created.ID, types.ResetStatusApproved, types.ResetReview{
		ReviewerID:      reviewer,
		Notes:           "verified by phone",
		NewPasswordHash: sampleHash,
	})
	require.NoError(t, err)
	require.Equal(t, types.ResetStatusApproved, approved.Status)
	require.Equal(t, reviewer, approved.ReviewedBy)
	require.Equal(t, reviewer, approved.PasswordChangedBy)
	require.Equal(t, sampleHash, approved.NewPasswordHash)
	require.Equal(t, "verified by phone", approved.AdminNotes)
	require.True(t, approved.PasswordChangedAt.Equal(clock.Now()))

	_, err = repo.Transition(ctx, created.ID, types.ResetStatusRejected, types.ResetReview{ReviewerID: reviewer})
	require.ErrorIs(t, err, types.ErrRequestNotPending)
	_, err = repo.Transition(ctx, created.ID, types.ResetStatusApproved, types.ResetReview{ReviewerID: reviewer, NewPasswordHash: sampleHash})
	require.ErrorIs(t, err, types.ErrRequestNotPending)

	_, err = repo.Transition(ctx, uuid.New(), types.ResetStatusRejected, types.ResetReview{ReviewerID: reviewer})
	require.ErrorIs(t, err, types.ErrRequestNotFound)

	_, err = repo.Transition(ctx, created.ID, types.ResetStatusPending, types.ResetReview{})
	require.Error(t, err)
}

func TestRepository_ConcurrentTransitionsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	created, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "race@example.com"})
	require.NoError(t, err)

	const reviewers = 8
	var (
		wg   sync.WaitGroup
		errs = make([]error, reviewers)
	)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Transition(ctx, created.ID, types.ResetStatusApproved, types.ResetReview{
				ReviewerID:      uuid.New(),
				NewPasswordHash: sampleHash,
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, types.ErrRequestNotPending)
	}
	require.Equal(t, 1, wins)
}

func TestRepository_ListRequestsProjectsWithoutHash(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepository(t)

	first, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "a@example.com"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = repo.CreateRequest(ctx, types.ResetRequest{Email: "b@example.com"})
	require.NoError(t, err)
	_, err = repo.Transition(ctx, first.ID, types.ResetStatusApproved, types.ResetReview{
		ReviewerID:      uuid.New(),
		NewPasswordHash: sampleHash,
	})
	require.NoError(t, err)

	page, err := repo.ListRequests(ctx, types.ResetRequestFilter{
		Statuses:   []types.ResetStatus{types.ResetStatusPending},
		Pagination: types.Pagination{Limit: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "b@example.com", page.Requests[0].Email)

	page, err = repo.ListRequests(ctx, types.ResetRequestFilter{Email: "A@example.com"})
	require.NoError(t, err)
	require.Len(t, page.Requests, 1)
	require.Equal(t, types.ResetStatusApproved, page.Requests[0].Status)
	require.False(t, page.HasMore)
}

func TestRepository_PurgeTerminalBefore(t *testing.T) {
	ctx := context.Background()
	repo, clock := newTestRepository(t)
	reviewer := uuid.New()

	oldApproved, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "old@example.com"})
	require.NoError(t, err)
	oldRejected, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "old2@example.com"})
	require.NoError(t, err)
	oldPending, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "old3@example.com"})
	require.NoError(t, err)
	_, err = repo.Transition(ctx, oldApproved.ID, types.ResetStatusApproved, types.ResetReview{ReviewerID: reviewer, NewPasswordHash: sampleHash})
	require.NoError(t, err)
	_, err = repo.Transition(ctx, oldRejected.ID, types.ResetStatusRejected, types.ResetReview{ReviewerID: reviewer})
	require.NoError(t, err)

	clock.Advance(40 * 24 * time.Hour)
	recent, err := repo.CreateRequest(ctx, types.ResetRequest{Email: "new@example.com"})
	require.NoError(t, err)
	_, err = repo.Transition(ctx, recent.ID, types.ResetStatusRejected, types.ResetReview{ReviewerID: reviewer})
	require.NoError(t, err)

	ids, err := repo.PurgeTerminalBefore(ctx, clock.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.ElementsMatch(t, []uuid.UUID{oldApproved.ID, oldRejected.ID}, ids)

	_, err = repo.GetRequest(ctx, oldApproved.ID)
	require.ErrorIs(t, err, types.ErrRequestNotFound)
	_, err = repo.GetRequest(ctx, oldPending.ID)
	require.NoError(t, err)
	_, err = repo.GetRequest(ctx, recent.ID)
	require.NoError(t, err)

	ids, err = repo.PurgeTerminalBefore(ctx, clock.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestRepository_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepository(t)

	boom := context.Canceled
	err := repo.WithinTx(ctx, func(ctx context.Context, tx *Repository) error {
		_, err := tx.CreateRequest(ctx, types.ResetRequest{Email: "tx@example.com"})
		require.NoError(t, err)
		count, err := tx.CountSince(ctx, "tx@example.com", time.Time{})
		require.NoError(t, err)
		require.Equal(t, 1, count)
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := repo.CountSince(ctx, "tx@example.com", time.Time{})
	require.NoError(t, err)
	require.Zero(t, count)
}
