package command

import (
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
	"github.com/google/uuid"
)

// CleanupResetRequestsInput purges reviewed requests older than the given age.
type CleanupResetRequestsInput struct {
	OlderThanDays int
	IPAddress     string
	Actor         types.ActorRef
	Result        *CleanupResetRequestsResult
}

// Type implements gocommand.Message.
func (CleanupResetRequestsInput) Type() string {
	return "command.password_reset_request.cleanup"
}

// Validate implements gocommand.Message.
func (input CleanupResetRequestsInput) Validate() error {
	switch {
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case input.OlderThanDays < 1:
		return ErrInvalidRetention
	default:
		return nil
	}
}

// CleanupResetRequestsResult reports how many requests were deleted.
type CleanupResetRequestsResult struct {
	DeletedCount      int
	DeletedAuditCount int
	Cutoff            time.Time
}

// CleanupResetRequestsConfig holds dependencies for retention cleanup.
type CleanupResetRequestsConfig struct {
	Requests   types.ResetRequestRepository
	Audit      types.AuditRepository
	UnitOfWork types.UnitOfWork
	Clock      types.Clock
	Hooks      types.Hooks
	Logger     types.Logger
	ScopeGuard scope.Guard
}

// CleanupResetRequestsCommand deletes approved and rejected requests, their
// stored hashes and the audit entries that reference them.
type CleanupResetRequestsCommand struct {
	requests types.ResetRequestRepository
	audit    types.AuditRepository
	unit     types.UnitOfWork
	clock    types.Clock
	hooks    types.Hooks
	logger   types.Logger
	guard    scope.Guard
}

// NewCleanupResetRequestsCommand constructs the retention handler.
func NewCleanupResetRequestsCommand(cfg CleanupResetRequestsConfig) *CleanupResetRequestsCommand {
	return &CleanupResetRequestsCommand{
		requests: cfg.Requests,
		audit:    cfg.Audit,
		unit:     cfg.UnitOfWork,
		clock:    safeClock(cfg.Clock),
		hooks:    cfg.Hooks,
		logger:   safeLogger(cfg.Logger),
		guard:    safeScopeGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[CleanupResetRequestsInput] = (*CleanupResetRequestsCommand)(nil)

// Execute requires the super administrator tier.
func (c *CleanupResetRequestsCommand) Execute(ctx context.Context, input CleanupResetRequestsInput) error {
	if c.requests == nil {
		return types.ErrMissingResetRepository
	}
	if err := input.Validate(); err != nil {
		return presentError(err)
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionResetPurge, uuid.Nil); err != nil {
		return presentError(err)
	}

	current := now(c.clock)
	cutoff := current.Add(-time.Duration(input.OlderThanDays) * 24 * time.Hour)
	unit, atomic := unitOrDirect(c.unit, types.TxStores{Requests: c.requests, Audit: c.audit})
	result := CleanupResetRequestsResult{Cutoff: cutoff}
	err := unit.RunInTx(ctx, func(ctx context.Context, stores types.TxStores) error {
		result.DeletedCount, result.DeletedAuditCount = 0, 0
		ids, err := stores.Requests.PurgeTerminalBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		result.DeletedCount = len(ids)
		if stores.Audit == nil || len(ids) == 0 {
			return nil
		}
		objectIDs := make([]string, 0, len(ids))
		for _, id := range ids {
			objectIDs = append(objectIDs, id.String())
		}
		deleted, err := stores.Audit.DeleteByObjectIDs(ctx, types.AuditObjectResetRequest, objectIDs)
		if err != nil {
			return err
		}
		result.DeletedAuditCount = deleted
		return nil
	})
	if err != nil {
		if atomic {
			result.DeletedCount = 0
		}
		c.logger.Error("reset request cleanup failed", err, "deleted_requests", result.DeletedCount, "rolled_back", atomic)
		if input.Result != nil {
			*input.Result = result
		}
		return internalError(err, "go-credentials: reset request cleanup failed")
	}

	var sink types.AuditSink
	if c.audit != nil {
		sink = c.audit
	}
	entry := types.AuditEntry{
		ActorID:    input.Actor.ID,
		Action:     types.AuditActionResetCleanup,
		ObjectType: types.AuditObjectResetRequest,
		After: map[string]any{
			"deleted_count":   result.DeletedCount,
			"older_than_days": input.OlderThanDays,
		},
		IP:         input.IPAddress,
		OccurredAt: current,
	}
	if err := logAudit(ctx, sink, c.hooks, entry); err != nil {
		c.logger.Error("reset request cleanup audit failed", err, "deleted_requests", result.DeletedCount)
	}
	c.logger.Info("reset requests purged", "deleted_count", result.DeletedCount, "older_than_days", input.OlderThanDays)

	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
