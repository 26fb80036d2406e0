package command

import (
	"context"
	"errors"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Steps reported when an approval could not be fully applied or recorded.
const (
	StepMarkApproved  = "mark_approved"
	StepReplaceSecret = "replace_secret"
	StepUnlockAccount = "unlock_account"
	StepAudit         = "audit"
	StepSecurityAlert = "security_alert"
)

// ApproveResetRequestInput sets a new password for the requester. The
// plaintext is hashed once and never stored.
type ApproveResetRequestInput struct {
	RequestID   uuid.UUID
	NewPassword string
	Notes       string
	IPAddress   string
	Actor       types.ActorRef
	Result      *ApproveResetRequestResult
}

// Type implements gocommand.Message.
func (ApproveResetRequestInput) Type() string {
	return "command.password_reset_request.approve"
}

// Validate implements gocommand.Message.
func (input ApproveResetRequestInput) Validate() error {
	switch {
	case input.RequestID == uuid.Nil:
		return ErrRequestIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// ApproveResetRequestResult reports the reviewed request and the alert raised
// for the user.
type ApproveResetRequestResult struct {
	Request types.ResetRequestDetails
	AlertID uuid.UUID
}

// ApproveResetRequestCommand replaces the credential, unlocks the account and
// records the approval.
type ApproveResetRequestCommand struct {
	requests    types.ResetRequestRepository
	accounts    types.AccountRepository
	credentials types.CredentialStore
	hasher      types.PasswordHasher
	audit       types.AuditSink
	alerts      types.AlertRepository
	clock       types.Clock
	hooks       types.Hooks
	logger      types.Logger
	unit        types.UnitOfWork
	guard       scope.Guard
}

// NewApproveResetRequestCommand constructs the approval handler.
func NewApproveResetRequestCommand(cfg ReviewCommandConfig) *ApproveResetRequestCommand {
	return &ApproveResetRequestCommand{
		requests:    cfg.Requests,
		accounts:    cfg.Accounts,
		credentials: cfg.Credentials,
		hasher:      cfg.Hasher,
		audit:       cfg.Audit,
		alerts:      cfg.Alerts,
		clock:       safeClock(cfg.Clock),
		hooks:       cfg.Hooks,
		logger:      safeLogger(cfg.Logger),
		unit:        cfg.UnitOfWork,
		guard:       safeScopeGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[ApproveResetRequestInput] = (*ApproveResetRequestCommand)(nil)

// Execute runs the approval. The pending to approved transition is claimed
// first, then the secret is replaced and the account unlocked, all in one unit
// of work, so a reviewer that loses the race never touches the credential.
// Once that commits, a failing audit or alert write is reported as
// ErrBookkeepingIncomplete and never rolled back.
func (c *ApproveResetRequestCommand) Execute(ctx context.Context, input ApproveResetRequestInput) error {
	switch {
	case c.requests == nil:
		return types.ErrMissingResetRepository
	case c.accounts == nil:
		return types.ErrMissingAccountRepository
	case c.credentials == nil:
		return types.ErrMissingCredentialStore
	case c.hasher == nil:
		return types.ErrMissingPasswordHasher
	}
	if err := input.Validate(); err != nil {
		return presentError(err)
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionResetReview, input.RequestID); err != nil {
		return presentError(err)
	}
	if err := ValidatePassword(input.NewPassword); err != nil {
		return presentError(err)
	}

	request, err := c.requests.GetRequest(ctx, input.RequestID)
	if err != nil {
		return presentError(err)
	}
	if request.Status != types.ResetStatusPending {
		return presentError(types.ErrRequestNotPending)
	}
	if request.UserID == uuid.Nil {
		return presentError(ErrRequestHasNoAccount)
	}

	newHash, err := c.hasher.Hash(input.NewPassword)
	if err != nil {
		return internalError(err, "go-credentials: password hashing failed")
	}

	before := map[string]any{"status": string(types.ResetStatusPending)}
	if account, err := c.accounts.GetByID(ctx, request.UserID); err == nil && account != nil {
		before["is_locked"] = account.IsLocked
		before["failed_login_attempts"] = account.FailedLoginAttempts
	}

	changedAt := now(c.clock)
	unit, atomic := unitOrDirect(c.unit, types.TxStores{
		Requests:    c.requests,
		Accounts:    c.accounts,
		Credentials: c.credentials,
	})
	var (
		updated *types.ResetRequest
		claimed bool
		step    string
	)
	err = unit.RunInTx(ctx, func(ctx context.Context, stores types.TxStores) error {
		claimed = false
		step = StepMarkApproved
		approved, err := stores.Requests.Transition(ctx, request.ID, types.ResetStatusApproved, types.ResetReview{
			ReviewerID:      input.Actor.ID,
			ReviewedAt:      changedAt,
			Notes:           strings.TrimSpace(input.Notes),
			NewPasswordHash: newHash,
		})
		if err != nil {
			return err
		}
		claimed = true
		step = StepReplaceSecret
		if err := stores.Credentials.ReplaceSecret(ctx, request.UserID, newHash); err != nil {
			return err
		}
		step = StepUnlockAccount
		if err := stores.Accounts.Unlock(ctx, request.UserID); err != nil {
			return err
		}
		updated = approved
		return nil
	})
	if err != nil {
		if claimed && !atomic {
			return c.partiallyApplied(ctx, request, step, err)
		}
		c.logger.Debug("password reset approval not applied", "request_id", request.ID, "step", step, "error", err)
		return presentError(reviewFailure(err))
	}
	c.logger.Info("password replaced by administrator", "request_id", request.ID, "user_id", request.UserID, "reviewer_id", input.Actor.ID)

	var failures []error
	var steps []string
	fail := func(step string, err error) {
		steps = append(steps, step)
		failures = append(failures, err)
		c.logger.Error("password reset bookkeeping failed", err, "request_id", request.ID, "user_id", request.UserID, "step", step)
		emitBookkeepingFailure(ctx, c.hooks, types.BookkeepingFailure{
			RequestID:  request.ID,
			UserID:     request.UserID,
			Step:       step,
			Err:        err,
			OccurredAt: now(c.clock),
		})
	}

	result := ApproveResetRequestResult{Request: updated.Details()}

	entry := types.AuditEntry{
		ActorID:      input.Actor.ID,
		TargetUserID: request.UserID,
		Action:       types.AuditActionResetApproved,
		ObjectType:   types.AuditObjectResetRequest,
		ObjectID:     request.ID.String(),
		Before:       before,
		After: map[string]any{
			"status":                string(types.ResetStatusApproved),
			"is_locked":             false,
			"failed_login_attempts": 0,
			"password_changed_at":   changedAt.Format(time.RFC3339),
		},
		Notes:      strings.TrimSpace(input.Notes),
		IP:         strings.TrimSpace(input.IPAddress),
		OccurredAt: changedAt,
	}
	if err := logAudit(ctx, c.audit, c.hooks, entry); err != nil {
		fail(StepAudit, err)
	}

	if c.alerts != nil {
		alert, err := c.alerts.CreateAlert(ctx, types.SecurityAlert{
			UserID:      request.UserID,
			Type:        types.AlertTypePasswordReset,
			Severity:    types.AlertSeverityHigh,
			Title:       "Your password was reset by an administrator",
			Description: "An administrator set a new password for your account after reviewing your reset request. Contact support if you did not ask for this.",
			Metadata: map[string]any{
				"request_id":  request.ID.String(),
				"reviewed_by": input.Actor.ID.String(),
			},
			CreatedAt: changedAt,
		})
		if err != nil {
			fail(StepSecurityAlert, err)
		} else {
			result.AlertID = alert.ID
		}
	}

	emitReviewHook(ctx, c.hooks, types.ReviewEvent{
		RequestID:  request.ID,
		UserID:     request.UserID,
		ActorID:    input.Actor.ID,
		Status:     types.ResetStatusApproved,
		OccurredAt: changedAt,
	})
	if input.Result != nil {
		*input.Result = result
	}

	if len(failures) > 0 {
		joined := errors.Join(append([]error{ErrBookkeepingIncomplete}, failures...)...)
		return goerrors.Wrap(joined, goerrors.CategoryInternal, ErrBookkeepingIncomplete.Error()).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeBookkeeping).
			WithMetadata(map[string]any{
				"request_id":   request.ID.String(),
				"failed_steps": steps,
			})
	}
	return nil
}

// partiallyApplied reports an approval whose claim was written but whose
// later writes were not, which only happens without a UnitOfWork.
func (c *ApproveResetRequestCommand) partiallyApplied(ctx context.Context, request *types.ResetRequest, step string, err error) error {
	c.logger.Error("password reset approval partially applied", err, "request_id", request.ID, "user_id", request.UserID, "step", step)
	emitBookkeepingFailure(ctx, c.hooks, types.BookkeepingFailure{
		RequestID:  request.ID,
		UserID:     request.UserID,
		Step:       step,
		Err:        err,
		OccurredAt: now(c.clock),
	})
	return goerrors.Wrap(errors.Join(ErrReviewPartiallyApplied, err), goerrors.CategoryInternal, ErrReviewPartiallyApplied.Error()).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodePartialReview).
		WithMetadata(map[string]any{
			"request_id":   request.ID.String(),
			"failed_steps": []string{step},
		})
}

// reviewFailure keeps the sentinels a caller can act on and hides the rest.
func reviewFailure(err error) error {
	switch {
	case errors.Is(err, types.ErrRequestNotPending),
		errors.Is(err, types.ErrRequestNotFound),
		errors.Is(err, types.ErrCredentialNotFound),
		errors.Is(err, types.ErrAccountNotFound):
		return err
	}
	return internalError(err, "go-credentials: password reset approval failed")
}
