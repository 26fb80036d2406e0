package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AlertSeverity ranks security alerts.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertStatus tracks whether an alert still needs attention.
type AlertStatus string

const (
	AlertStatusOpen   AlertStatus = "open"
	AlertStatusClosed AlertStatus = "closed"
)

// AlertTypePasswordReset marks alerts raised by an administrative reset.
const AlertTypePasswordReset = "password_reset"

// SecurityAlert notifies a user about a security relevant change.
type SecurityAlert struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        string
	Severity    AlertSeverity
	Title       string
	Description string
	Metadata    map[string]any
	Status      AlertStatus
	CreatedAt   time.Time
	ClosedAt    time.Time
	ClosedBy    uuid.UUID
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	UserID     uuid.UUID
	Status     AlertStatus
	Pagination Pagination
}

// AlertRepository persists security alerts.
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert SecurityAlert) (*SecurityAlert, error)
	CloseAlert(ctx context.Context, id, closedBy uuid.UUID, at time.Time) (*SecurityAlert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]SecurityAlert, int, error)
}

// ErrAlertNotOpen indicates the alert was already closed or does not exist.
var ErrAlertNotOpen = errors.New("go-credentials: security alert not open")
