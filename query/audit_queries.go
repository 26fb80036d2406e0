package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
	"github.com/google/uuid"
)

// AuditFeedQuery renders paginated audit feeds for administrators.
type AuditFeedQuery struct {
	repo  types.AuditRepository
	guard scope.Guard
}

// NewAuditFeedQuery constructs the feed query helper.
func NewAuditFeedQuery(repo types.AuditRepository, guard scope.Guard) *AuditFeedQuery {
	return &AuditFeedQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.AuditFilter, types.AuditPage] = (*AuditFeedQuery)(nil)

// Query fetches a page of audit entries via the injected repository.
func (q *AuditFeedQuery) Query(ctx context.Context, filter types.AuditFilter) (types.AuditPage, error) {
	if q.repo == nil {
		return types.AuditPage{}, types.ErrMissingAuditRepository
	}
	if err := filter.Validate(); err != nil {
		return types.AuditPage{}, presentError(err)
	}
	if err := q.guard.Enforce(ctx, filter.Actor, types.PolicyActionAuditRead, filter.TargetUserID); err != nil {
		return types.AuditPage{}, presentError(err)
	}
	page, err := q.repo.ListAudit(ctx, filter)
	if err != nil {
		return types.AuditPage{}, internalError(err, "go-credentials: audit feed unavailable")
	}
	return page, nil
}

// SecurityAlertListInput narrows the alert listing.
type SecurityAlertListInput struct {
	Actor  types.ActorRef
	Filter types.AlertFilter
}

// Type implements gocommand.Message.
func (SecurityAlertListInput) Type() string {
	return "query.security_alert.list"
}

// Validate implements gocommand.Message.
func (input SecurityAlertListInput) Validate() error {
	if input.Actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}
	return nil
}

// SecurityAlertPage is a page of alerts.
type SecurityAlertPage struct {
	Alerts []types.SecurityAlert
	Total  int
}

// SecurityAlertListQuery lists alerts for operators.
type SecurityAlertListQuery struct {
	repo  types.AlertRepository
	guard scope.Guard
}

// NewSecurityAlertListQuery constructs the alert listing.
func NewSecurityAlertListQuery(repo types.AlertRepository, guard scope.Guard) *SecurityAlertListQuery {
	return &SecurityAlertListQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[SecurityAlertListInput, SecurityAlertPage] = (*SecurityAlertListQuery)(nil)

// Query returns alerts, newest first.
func (q *SecurityAlertListQuery) Query(ctx context.Context, input SecurityAlertListInput) (SecurityAlertPage, error) {
	if q.repo == nil {
		return SecurityAlertPage{}, types.ErrMissingAlertRepository
	}
	if err := input.Validate(); err != nil {
		return SecurityAlertPage{}, presentError(err)
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionAuditRead, input.Filter.UserID); err != nil {
		return SecurityAlertPage{}, presentError(err)
	}
	alerts, total, err := q.repo.ListAlerts(ctx, input.Filter)
	if err != nil {
		return SecurityAlertPage{}, internalError(err, "go-credentials: security alerts unavailable")
	}
	return SecurityAlertPage{Alerts: alerts, Total: total}, nil
}
