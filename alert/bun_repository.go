// Package alert stores the security alerts raised for users whose credential
// was rotated by an administrator.
package alert

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed alert repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Repository implements types.AlertRepository.
type Repository struct {
	store repository.Repository[*Record]
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default alert repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("alert: bun DB required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Repository{store: repo, db: cfg.DB, clock: clock, idGen: idGen}, nil
}

var _ types.AlertRepository = (*Repository)(nil)

// CreateAlert stores a new open alert.
func (r *Repository) CreateAlert(ctx context.Context, alert types.SecurityAlert) (*types.SecurityAlert, error) {
	if alert.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec := fromDomain(alert)
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	if rec.Severity == "" {
		rec.Severity = string(types.AlertSeverityMedium)
	}
	rec.Status = string(types.AlertStatusOpen)
	rec.ClosedAt = nil
	rec.ClosedBy = uuid.Nil

	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(created), nil
}

// CloseAlert marks an open alert closed. Closing an alert twice, or closing an
// unknown alert, reports types.ErrAlertNotOpen.
func (r *Repository) CloseAlert(ctx context.Context, id, closedBy uuid.UUID, at time.Time) (*types.SecurityAlert, error) {
	if at.IsZero() {
		at = r.clock.Now()
	}
	var closer any
	if closedBy != uuid.Nil {
		closer = closedBy
	}
	res, err := r.db.NewUpdate().Model((*Record)(nil)).
		Set("status = ?", string(types.AlertStatusClosed)).
		Set("closed_at = ?", at).
		Set("closed_by = ?", closer).
		Where("id = ?", id).
		Where("status = ?", string(types.AlertStatusOpen)).
		Exec(ctx)
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		return nil, types.ErrAlertNotOpen
	}
	rec := &Record{}
	if err := r.db.NewSelect().Model(rec).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return toDomain(rec), nil
}

// ListAlerts returns alerts, newest first, with the unpaginated total.
func (r *Repository) ListAlerts(ctx context.Context, filter types.AlertFilter) ([]types.SecurityAlert, int, error) {
	limit := filter.Pagination.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := max(filter.Pagination.Offset, 0)
	rows, total, err := r.store.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.UserID != uuid.Nil {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if status := strings.TrimSpace(string(filter.Status)); status != "" {
			q = q.Where("status = ?", status)
		}
		return q.OrderExpr("created_at DESC").Limit(limit).Offset(offset)
	})
	if err != nil {
		return nil, 0, err
	}
	alerts := make([]types.SecurityAlert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, *toDomain(row))
	}
	return alerts, total, nil
}

func fromDomain(alert types.SecurityAlert) *Record {
	return &Record{
		ID:          alert.ID,
		UserID:      alert.UserID,
		Type:        strings.TrimSpace(alert.Type),
		Severity:    string(alert.Severity),
		Title:       strings.TrimSpace(alert.Title),
		Description: strings.TrimSpace(alert.Description),
		Metadata:    alert.Metadata,
		Status:      string(alert.Status),
		CreatedAt:   alert.CreatedAt,
	}
}

func toDomain(rec *Record) *types.SecurityAlert {
	if rec == nil {
		return nil
	}
	alert := &types.SecurityAlert{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Type:        rec.Type,
		Severity:    types.AlertSeverity(rec.Severity),
		Title:       rec.Title,
		Description: rec.Description,
		Metadata:    rec.Metadata,
		Status:      types.AlertStatus(rec.Status),
		CreatedAt:   rec.CreatedAt,
		ClosedBy:    rec.ClosedBy,
	}
	if rec.ClosedAt != nil {
		alert.ClosedAt = *rec.ClosedAt
	}
	return alert
}
