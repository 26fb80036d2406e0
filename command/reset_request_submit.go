package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
)

// ResetRequestAcknowledgement is returned for every accepted request whether
// or not the email matches an account.
const ResetRequestAcknowledgement = "Your request has been received. An administrator will review it and contact you."

// SubmitResetRequestInput captures an unauthenticated reset request.
type SubmitResetRequestInput struct {
	Email       string
	Message     string
	IPAddress   string
	UserAgent   string
	GeoLocation string
	Result      *SubmitResetRequestResult
}

// Type implements gocommand.Message.
func (SubmitResetRequestInput) Type() string {
	return "command.password_reset_request.submit"
}

// Validate implements gocommand.Message.
func (input SubmitResetRequestInput) Validate() error {
	if strings.TrimSpace(input.Email) == "" {
		return ErrEmailRequired
	}
	return nil
}

// SubmitResetRequestResult is safe to show to the requester.
type SubmitResetRequestResult struct {
	RequestID uuid.UUID
	Message   string
}

// SubmitResetRequestConfig holds dependencies for intake.
type SubmitResetRequestConfig struct {
	Requests    types.ResetRequestRepository
	Accounts    types.AccountRepository
	Limiter     types.RateLimiter
	Audit       types.AuditSink
	UnitOfWork  types.UnitOfWork
	FeatureGate featuregate.FeatureGate
	Clock       types.Clock
	Hooks       types.Hooks
	Logger      types.Logger
}

// SubmitResetRequestCommand enforces the per-email limits and stores a
// pending request.
type SubmitResetRequestCommand struct {
	requests types.ResetRequestRepository
	accounts types.AccountRepository
	limiter  types.RateLimiter
	audit    types.AuditSink
	unit     types.UnitOfWork
	gate     featuregate.FeatureGate
	clock    types.Clock
	hooks    types.Hooks
	logger   types.Logger
}

// NewSubmitResetRequestCommand constructs the intake handler.
func NewSubmitResetRequestCommand(cfg SubmitResetRequestConfig) *SubmitResetRequestCommand {
	return &SubmitResetRequestCommand{
		requests: cfg.Requests,
		accounts: cfg.Accounts,
		limiter:  cfg.Limiter,
		audit:    cfg.Audit,
		unit:     cfg.UnitOfWork,
		gate:     cfg.FeatureGate,
		clock:    safeClock(cfg.Clock),
		hooks:    cfg.Hooks,
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[SubmitResetRequestInput] = (*SubmitResetRequestCommand)(nil)

// historyScopedLimiter is implemented by limiters that read request history
// and can be pointed at a transaction-bound repository.
type historyScopedLimiter interface {
	WithHistory(history types.RequestHistory) types.RateLimiter
}

// Execute checks the limiter, resolves the account and persists the request,
// in that order. With a UnitOfWork the count, the lookup and the insert share
// one transaction. A refused email never reaches the account lookup.
func (c *SubmitResetRequestCommand) Execute(ctx context.Context, input SubmitResetRequestInput) error {
	if c.requests == nil {
		return types.ErrMissingResetRepository
	}
	if c.limiter == nil {
		return types.ErrMissingRateLimiter
	}
	if err := input.Validate(); err != nil {
		return presentError(err)
	}
	enabled, err := featureEnabled(ctx, c.gate, FeatureResetRequests)
	if err != nil {
		return internalError(err, "go-credentials: feature gate unavailable")
	}
	if !enabled {
		return presentError(ErrResetRequestsDisabled)
	}

	email := normalizeEmail(input.Email)
	unit, _ := unitOrDirect(c.unit, types.TxStores{Requests: c.requests, Accounts: c.accounts})
	var (
		created *types.ResetRequest
		userID  uuid.UUID
	)
	err = unit.RunInTx(ctx, func(ctx context.Context, stores types.TxStores) error {
		limiter := c.limiter
		if scoped, ok := limiter.(historyScopedLimiter); ok {
			limiter = scoped.WithHistory(stores.Requests)
		}
		status, err := limiter.Status(ctx, email)
		if err != nil {
			return internalError(err, "go-credentials: rate limiter unavailable")
		}
		if !status.CanSubmit {
			return rateLimitError(status)
		}
		userID = uuid.Nil
		if c.accounts != nil && stores.Accounts != nil {
			account, err := stores.Accounts.GetByEmail(ctx, email)
			if err != nil {
				return internalError(err, "go-credentials: account lookup failed")
			}
			if account != nil {
				userID = account.ID
			}
		}
		created, err = stores.Requests.CreateRequest(ctx, types.ResetRequest{
			Email:   email,
			Message: input.Message,
			UserID:  userID,
			Requester: types.RequesterMetadata{
				IPAddress:   strings.TrimSpace(input.IPAddress),
				UserAgent:   strings.TrimSpace(input.UserAgent),
				GeoLocation: strings.TrimSpace(input.GeoLocation),
			},
			RequestedAt: now(c.clock),
		})
		if err != nil {
			return internalError(err, "go-credentials: reset request not stored")
		}
		if err := limiter.Record(ctx, email, created.RequestedAt); err != nil {
			return internalError(err, "go-credentials: rate limiter unavailable")
		}
		return nil
	})
	if err != nil {
		c.logger.Debug("password reset request refused", "email", email, "error", err)
		return err
	}

	entry := types.AuditEntry{
		TargetUserID: userID,
		Action:       types.AuditActionResetRequested,
		ObjectType:   types.AuditObjectResetRequest,
		ObjectID:     created.ID.String(),
		After: map[string]any{
			"status":          string(created.Status),
			"email":           created.Email,
			"account_matched": userID != uuid.Nil,
		},
		IP:         created.Requester.IPAddress,
		OccurredAt: created.RequestedAt,
	}
	if err := logAudit(ctx, c.audit, c.hooks, entry); err != nil {
		c.logger.Error("password reset request audit failed", err, "request_id", created.ID)
	}
	if c.hooks.AfterResetRequested != nil {
		c.hooks.AfterResetRequested(ctx, *created)
	}
	c.logger.Info("password reset request stored", "request_id", created.ID, "email", created.Email)

	if input.Result != nil {
		*input.Result = SubmitResetRequestResult{
			RequestID: created.ID,
			Message:   ResetRequestAcknowledgement,
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
