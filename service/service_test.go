package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-credentials/account"
	"github.com/goliatone/go-credentials/command"
	"github.com/goliatone/go-credentials/credential"
	"github.com/goliatone/go-credentials/internal/testdb"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/query"
	"github.com/goliatone/go-credentials/scrypt"
	"github.com/goliatone/go-credentials/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestServiceHealthCheckReportsMissingDependencies(t *testing.T) {
	svc := service.New(service.Config{})
	require.False(t, svc.Ready())
	require.ErrorIs(t, svc.HealthCheck(context.Background()), types.ErrMissingResetRepository)

	var nilSvc *service.Service
	require.ErrorIs(t, nilSvc.HealthCheck(context.Background()), types.ErrServiceNotReady)
}

func TestServiceDefaultsHasher(t *testing.T) {
	svc := service.New(service.Config{})
	hasher, ok := svc.Hasher().(*scrypt.Hasher)
	require.True(t, ok)
	require.Equal(t, scrypt.DefaultParams(), hasher.Params())
}

func TestServiceResetFlowOverBun(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	clock := &manualClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}

	hasher, err := scrypt.NewHasher(scrypt.WithParams(scrypt.Params{N: 16, R: 1, P: 1, KeyLen: 64, SaltLen: 16}))
	require.NoError(t, err)

	accounts, err := account.NewRepository(account.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	credentials, err := credential.NewStore(credential.StoreConfig{DB: db, Clock: clock})
	require.NoError(t, err)

	cfg, err := service.BunRepositories(db, service.Config{
		Accounts:    accounts,
		Credentials: credentials,
		Clock:       clock,
		Hasher:      hasher,
	})
	require.NoError(t, err)
	require.Same(t, accounts, cfg.Accounts)
	svc := service.New(cfg)
	require.True(t, svc.Ready())
	require.NoError(t, svc.HealthCheck(ctx))

	user, err := accounts.Create(ctx, types.Account{Email: "ops@example.com", IsLocked: true, LockReason: "locked"})
	require.NoError(t, err)
	original, err := hasher.Hash("Original1!")
	require.NoError(t, err)
	require.NoError(t, credentials.Enroll(ctx, user.ID, original))

	submitted := &command.SubmitResetRequestResult{}
	require.NoError(t, svc.Commands().SubmitResetRequest.Execute(ctx, command.SubmitResetRequestInput{
		Email:  "OPS@example.com",
		Result: submitted,
	}))
	require.NotEqual(t, uuid.Nil, submitted.RequestID)

	status, err := svc.Queries().ResetRequestStatus.Query(ctx, query.ResetRequestStatusInput{Email: "ops@example.com"})
	require.NoError(t, err)
	require.False(t, status.CanSubmit)
	require.Equal(t, types.RateLimitReasonCooldown, status.Reason)

	admin := types.ActorRef{ID: uuid.New(), Role: types.ActorRoleAdmin}
	page, err := svc.Queries().ResetRequestList.Query(ctx, types.ResetRequestFilter{
		Actor:    admin,
		Statuses: []types.ResetStatus{types.ResetStatusPending},
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	clock.Advance(time.Minute)
	approved := &types.ResetRequestDetails{}
	require.NoError(t, svc.Commands().UpdateRequestStatus.Execute(ctx, command.UpdateRequestStatusInput{
		RequestID:   submitted.RequestID,
		Status:      types.ResetStatusApproved,
		NewPassword: "Rotated9#pass",
		Actor:       admin,
		Result:      approved,
	}))
	require.Equal(t, types.ResetStatusApproved, approved.Status)

	ok, err := credentials.VerifySecret(ctx, user.ID, "Rotated9#pass", hasher)
	require.NoError(t, err)
	require.True(t, ok)

	feed, err := svc.Queries().AuditFeed.Query(ctx, types.AuditFilter{Actor: admin, TargetUserID: user.ID})
	require.NoError(t, err)
	actions := make([]string, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		actions = append(actions, entry.Action)
	}
	require.ElementsMatch(t, []string{types.AuditActionResetRequested, types.AuditActionResetApproved}, actions)

	alerts, err := svc.Queries().SecurityAlerts.Query(ctx, query.SecurityAlertListInput{
		Actor:  admin,
		Filter: types.AlertFilter{UserID: user.ID},
	})
	require.NoError(t, err)
	require.Len(t, alerts.Alerts, 1)

	closed := &types.SecurityAlert{}
	require.NoError(t, svc.Commands().CloseSecurityAlert.Execute(ctx, command.CloseSecurityAlertInput{
		AlertID: alerts.Alerts[0].ID,
		Actor:   admin,
		Result:  closed,
	}))
	require.Equal(t, types.AlertStatusClosed, closed.Status)
}
