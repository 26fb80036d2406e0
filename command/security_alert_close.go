package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/scope"
	"github.com/google/uuid"
)

// CloseSecurityAlertInput acknowledges an open alert.
type CloseSecurityAlertInput struct {
	AlertID uuid.UUID
	Actor   types.ActorRef
	Result  *types.SecurityAlert
}

// Type implements gocommand.Message.
func (CloseSecurityAlertInput) Type() string {
	return "command.security_alert.close"
}

// Validate implements gocommand.Message.
func (input CloseSecurityAlertInput) Validate() error {
	switch {
	case input.AlertID == uuid.Nil:
		return ErrAlertIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	default:
		return nil
	}
}

// CloseSecurityAlertConfig holds dependencies for closing alerts.
type CloseSecurityAlertConfig struct {
	Alerts     types.AlertRepository
	Audit      types.AuditSink
	Clock      types.Clock
	Hooks      types.Hooks
	Logger     types.Logger
	ScopeGuard scope.Guard
}

// CloseSecurityAlertCommand moves an alert from open to closed.
type CloseSecurityAlertCommand struct {
	alerts types.AlertRepository
	audit  types.AuditSink
	clock  types.Clock
	hooks  types.Hooks
	logger types.Logger
	guard  scope.Guard
}

// NewCloseSecurityAlertCommand constructs the handler.
func NewCloseSecurityAlertCommand(cfg CloseSecurityAlertConfig) *CloseSecurityAlertCommand {
	return &CloseSecurityAlertCommand{
		alerts: cfg.Alerts,
		audit:  cfg.Audit,
		clock:  safeClock(cfg.Clock),
		hooks:  cfg.Hooks,
		logger: safeLogger(cfg.Logger),
		guard:  safeScopeGuard(cfg.ScopeGuard),
	}
}

var _ gocommand.Commander[CloseSecurityAlertInput] = (*CloseSecurityAlertCommand)(nil)

// Execute closes the alert and audits the change.
func (c *CloseSecurityAlertCommand) Execute(ctx context.Context, input CloseSecurityAlertInput) error {
	if c.alerts == nil {
		return types.ErrMissingAlertRepository
	}
	if err := input.Validate(); err != nil {
		return presentError(err)
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionAlertsWrite, input.AlertID); err != nil {
		return presentError(err)
	}
	closedAt := now(c.clock)
	closed, err := c.alerts.CloseAlert(ctx, input.AlertID, input.Actor.ID, closedAt)
	if err != nil {
		return presentError(err)
	}
	entry := types.AuditEntry{
		ActorID:      input.Actor.ID,
		TargetUserID: closed.UserID,
		Action:       types.AuditActionAlertClosed,
		ObjectType:   types.AuditObjectSecurityAlert,
		ObjectID:     closed.ID.String(),
		Before:       map[string]any{"status": string(types.AlertStatusOpen)},
		After:        map[string]any{"status": string(types.AlertStatusClosed)},
		OccurredAt:   closedAt,
	}
	if err := logAudit(ctx, c.audit, c.hooks, entry); err != nil {
		c.logger.Error("security alert audit failed", err, "alert_id", closed.ID)
	}
	if input.Result != nil {
		*input.Result = *closed
	}
	return nil
}
