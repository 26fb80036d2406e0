package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
	"github.com/google/uuid"
)

// RejectResetRequestInput closes a pending request without changing the
// credential.
type RejectResetRequestInput struct {
	RequestID uuid.UUID
	Notes     string
	IPAddress string
	Actor     types.ActorRef
	Result    *types.ResetRequestDetails
}

// Type implements gocommand.Message.
func (RejectResetRequestInput) Type() string {
	return "command.password_reset_request.reject"
}

// Validate implements gocommand.Message.
func (input RejectResetRequestInput) Validate() error {
	switch {
	case input.RequestID == uuid.Nil:
		return ErrRequestIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// ReviewCommandConfig holds dependencies shared by the review commands.
type ReviewCommandConfig struct {
	Requests    types.ResetRequestRepository
	Accounts    types.AccountRepository
	Credentials types.CredentialStore
	Hasher      types.PasswordHasher
	Audit       types.AuditSink
	Alerts      types.AlertRepository
	UnitOfWork  types.UnitOfWork
	Clock       types.Clock
	Hooks       types.Hooks
	Logger      types.Logger
	ScopeGuard  scope.Guard
}

// RejectResetRequestCommand moves a pending request to rejected.
type RejectResetRequestCommand struct {
	requests types.ResetRequestRepository
	audit    types.AuditSink
	clock    types.Clock
	hooks    types.Hooks
	logger   types.Logger
	guard    scope.Guard
}

// NewRejectResetRequestCommand constructs the reject handler.
func NewRejectResetRequestCommand(cfg ReviewCommandConfig) *RejectResetRequestCommand {
	return &RejectResetRequestCommand{
		requests: cfg.Requests,
		audit:    cfg.Audit,
		clock:    safeClock(cfg.Clock),
		hooks:    cfg.Hooks,
		logger:   safeLogger(cfg.Logger),
		guard:    safeScopeGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[RejectResetRequestInput] = (*RejectResetRequestCommand)(nil)

// Execute authorizes the reviewer and performs the conditional transition.
func (c *RejectResetRequestCommand) Execute(ctx context.Context, input RejectResetRequestInput) error {
	if c.requests == nil {
		return types.ErrMissingResetRepository
	}
	if err := input.Validate(); err != nil {
		return presentError(err)
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionResetReview, input.RequestID); err != nil {
		return presentError(err)
	}

	reviewedAt := now(c.clock)
	updated, err := c.requests.Transition(ctx, input.RequestID, types.ResetStatusRejected, types.ResetReview{
		ReviewerID: input.Actor.ID,
		ReviewedAt: reviewedAt,
		Notes:      strings.TrimSpace(input.Notes),
	})
	if err != nil {
		return presentError(err)
	}

	entry := types.AuditEntry{
		ActorID:      input.Actor.ID,
		TargetUserID: updated.UserID,
		Action:       types.AuditActionResetRejected,
		ObjectType:   types.AuditObjectResetRequest,
		ObjectID:     updated.ID.String(),
		Before:       statusSnapshot(types.ResetStatusPending),
		After:        statusSnapshot(types.ResetStatusRejected),
		Notes:        updated.AdminNotes,
		IP:           strings.TrimSpace(input.IPAddress),
		OccurredAt:   reviewedAt,
	}
	if err := logAudit(ctx, c.audit, c.hooks, entry); err != nil {
		c.logger.Error("password reset rejection audit failed", err, "request_id", updated.ID)
	}
	emitReviewHook(ctx, c.hooks, types.ReviewEvent{
		RequestID:  updated.ID,
		UserID:     updated.UserID,
		ActorID:    input.Actor.ID,
		Status:     types.ResetStatusRejected,
		OccurredAt: reviewedAt,
	})
	c.logger.Info("password reset request rejected", "request_id", updated.ID, "reviewer_id", input.Actor.ID)

	if input.Result != nil {
		*input.Result = updated.Details()
	}
	return nil
}
