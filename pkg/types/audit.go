package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the reset workflow.
const (
	AuditActionResetRequested = "password_reset.requested"
	AuditActionResetApproved  = "password_reset.approved"
	AuditActionResetRejected  = "password_reset.rejected"
	AuditActionResetCleanup   = "password_reset.cleanup"
	AuditActionAlertClosed    = "security_alert.closed"
)

// AuditObjectResetRequest is the object type of reset request audit entries.
const AuditObjectResetRequest = "password_reset_request"

// AuditObjectSecurityAlert is the object type of alert audit entries.
const AuditObjectSecurityAlert = "security_alert"

// AuditEntry is an append-only record of an administrative action. Before and
// After hold non-secret snapshots only.
type AuditEntry struct {
	ID           uuid.UUID
	ActorID      uuid.UUID
	TargetUserID uuid.UUID
	Action       string
	ObjectType   string
	ObjectID     string
	Before       map[string]any
	After        map[string]any
	Notes        string
	IP           string
	OccurredAt   time.Time
}

// AuditSink is the write side of the audit log.
type AuditSink interface {
	Log(ctx context.Context, entry AuditEntry) error
}

// AuditFilter narrows audit feeds.
type AuditFilter struct {
	Actor        ActorRef
	TargetUserID uuid.UUID
	ObjectID     string
	Actions      []string
	Since        *time.Time
	Until        *time.Time
	Pagination   Pagination
}

// Type implements gocommand.Message.
func (AuditFilter) Type() string {
	return "query.audit.feed"
}

// Validate implements gocommand.Message.
func (filter AuditFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// AuditPage is a page of audit entries.
type AuditPage struct {
	Entries    []AuditEntry
	Total      int
	NextOffset int
	HasMore    bool
}

// AuditRepository exposes the audit log read side plus retention purge.
type AuditRepository interface {
	AuditSink
	ListAudit(ctx context.Context, filter AuditFilter) (AuditPage, error)
	DeleteByObjectIDs(ctx context.Context, objectType string, ids []string) (int, error)
}
