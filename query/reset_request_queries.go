package query

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
	"github.com/google/uuid"
)

// ResetRequestStatusInput asks whether an email may submit another request.
type ResetRequestStatusInput struct {
	Email string
}

// Type implements gocommand.Message.
func (ResetRequestStatusInput) Type() string {
	return "query.password_reset_request.status"
}

// Validate implements gocommand.Message.
func (input ResetRequestStatusInput) Validate() error {
	if strings.TrimSpace(input.Email) == "" {
		return ErrEmailRequired
	}
	return nil
}

// ResetRequestStatusQuery reports the limiter state for an email. It reads
// only and never records an attempt.
type ResetRequestStatusQuery struct {
	limiter types.RateLimiter
}

// NewResetRequestStatusQuery constructs the status query.
func NewResetRequestStatusQuery(limiter types.RateLimiter) *ResetRequestStatusQuery {
	return &ResetRequestStatusQuery{limiter: limiter}
}

var _ gocommand.Querier[ResetRequestStatusInput, types.RateLimitStatus] = (*ResetRequestStatusQuery)(nil)

// Query returns {CanSubmit, AttemptsRemaining, RemainingSeconds}.
func (q *ResetRequestStatusQuery) Query(ctx context.Context, input ResetRequestStatusInput) (types.RateLimitStatus, error) {
	if q.limiter == nil {
		return types.RateLimitStatus{}, types.ErrMissingRateLimiter
	}
	if err := input.Validate(); err != nil {
		return types.RateLimitStatus{}, presentError(err)
	}
	status, err := q.limiter.Status(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return types.RateLimitStatus{}, internalError(err, "go-credentials: rate limiter unavailable")
	}
	return status, nil
}

// ResetRequestDetailInput selects a single request.
type ResetRequestDetailInput struct {
	RequestID uuid.UUID
	Actor     types.ActorRef
}

// Type implements gocommand.Message.
func (ResetRequestDetailInput) Type() string {
	return "query.password_reset_request.detail"
}

// Validate implements gocommand.Message.
func (input ResetRequestDetailInput) Validate() error {
	switch {
	case input.Actor.ID == uuid.Nil:
		return types.ErrActorRequired
	case input.RequestID == uuid.Nil:
		return ErrRequestIDRequired
	default:
		return nil
	}
}

// ResetRequestDetailQuery returns the administrator projection of a request.
// The projection type cannot carry the stored hash.
type ResetRequestDetailQuery struct {
	repo  types.ResetRequestRepository
	guard scope.Guard
}

// NewResetRequestDetailQuery constructs the detail query.
func NewResetRequestDetailQuery(repo types.ResetRequestRepository, guard scope.Guard) *ResetRequestDetailQuery {
	return &ResetRequestDetailQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[ResetRequestDetailInput, types.ResetRequestDetails] = (*ResetRequestDetailQuery)(nil)

// Query loads the request and projects it.
func (q *ResetRequestDetailQuery) Query(ctx context.Context, input ResetRequestDetailInput) (types.ResetRequestDetails, error) {
	if q.repo == nil {
		return types.ResetRequestDetails{}, types.ErrMissingResetRepository
	}
	if err := input.Validate(); err != nil {
		return types.ResetRequestDetails{}, presentError(err)
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionResetRead, input.RequestID); err != nil {
		return types.ResetRequestDetails{}, presentError(err)
	}
	request, err := q.repo.GetRequest(ctx, input.RequestID)
	if err != nil {
		return types.ResetRequestDetails{}, presentError(err)
	}
	return request.Details(), nil
}

// ResetRequestListQuery pages through requests for the review queue.
type ResetRequestListQuery struct {
	repo  types.ResetRequestRepository
	guard scope.Guard
}

// NewResetRequestListQuery constructs the list query.
func NewResetRequestListQuery(repo types.ResetRequestRepository, guard scope.Guard) *ResetRequestListQuery {
	return &ResetRequestListQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.ResetRequestFilter, types.ResetRequestPage] = (*ResetRequestListQuery)(nil)

// Query returns a page of request projections, newest first.
func (q *ResetRequestListQuery) Query(ctx context.Context, filter types.ResetRequestFilter) (types.ResetRequestPage, error) {
	if q.repo == nil {
		return types.ResetRequestPage{}, types.ErrMissingResetRepository
	}
	if err := filter.Validate(); err != nil {
		return types.ResetRequestPage{}, presentError(err)
	}
	if err := q.guard.Enforce(ctx, filter.Actor, types.PolicyActionResetRead, uuid.Nil); err != nil {
		return types.ResetRequestPage{}, presentError(err)
	}
	page, err := q.repo.ListRequests(ctx, filter)
	if err != nil {
		return types.ResetRequestPage{}, internalError(err, "go-credentials: reset requests unavailable")
	}
	return page, nil
}
