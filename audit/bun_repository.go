package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-masker"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed audit repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
	Masker     *masker.Masker
}

type auditStore interface {
	repository.Repository[*LogEntry]
}

// Repository persists audit entries and exposes the feed query.
type Repository struct {
	auditStore
	db     *bun.DB
	idb    bun.IDB
	clock  types.Clock
	idGen  types.IDGenerator
	masker *masker.Masker
}

// NewRepository constructs a repository that implements both AuditSink and
// AuditRepository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("audit: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
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
	mask := cfg.Masker
	if mask == nil {
		mask = DefaultMasker()
	}
	out := &Repository{
		auditStore: repo,
		db:         cfg.DB,
		clock:      clock,
		idGen:      idGen,
		masker:     mask,
	}
	if cfg.DB != nil {
		out.idb = cfg.DB
	}
	return out, nil
}

// WithTx returns a copy of the repository that writes through tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	scoped := *r
	scoped.idb = tx
	return &scoped
}

var (
	_ types.AuditSink       = (*Repository)(nil)
	_ types.AuditRepository = (*Repository)(nil)
)

// Log appends an audit entry.
func (r *Repository) Log(ctx context.Context, entry types.AuditEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit: action required")
	}
	row := toLogEntry(entry)
	row.BeforeState = SanitizeSnapshot(r.masker, row.BeforeState)
	row.AfterState = SanitizeSnapshot(r.masker, row.AfterState)
	if row.ID == uuid.Nil {
		row.ID = r.idGen.UUID()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.clock.Now()
	}
	if r.idb == nil {
		_, err := r.Create(ctx, row)
		return err
	}
	_, err := r.CreateTx(ctx, r.idb, row)
	return err
}

// ListAudit returns a feed of entries, newest first.
func (r *Repository) ListAudit(ctx context.Context, filter types.AuditFilter) (types.AuditPage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	rows, total, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.OrderExpr("created_at DESC").
			Limit(pagination.Limit).
			Offset(pagination.Offset)
		return applyAuditFilter(q, filter)
	})
	if err != nil {
		return types.AuditPage{}, err
	}
	entries := make([]types.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toAuditEntry(row))
	}
	return types.AuditPage{
		Entries:    entries,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

// DeleteByObjectIDs removes the entries attached to the given objects. It is
// only used by retention cleanup.
func (r *Repository) DeleteByObjectIDs(ctx context.Context, objectType string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if r.idb == nil {
		return 0, errors.New("audit: delete requires bun DB")
	}
	res, err := r.idb.NewDelete().Model((*LogEntry)(nil)).
		Where("object_type = ?", objectType).
		Where("object_id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func applyAuditFilter(q *bun.SelectQuery, filter types.AuditFilter) *bun.SelectQuery {
	if filter.TargetUserID != uuid.Nil {
		q = q.Where("target_user_id = ?", filter.TargetUserID)
	}
	if id := strings.TrimSpace(filter.ObjectID); id != "" {
		q = q.Where("object_id = ?", id)
	}
	if len(filter.Actions) > 0 {
		q = q.Where("action IN (?)", bun.In(filter.Actions))
	}
	if filter.Since != nil && !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if filter.Until != nil && !filter.Until.IsZero() {
		q = q.Where("created_at <= ?", filter.Until)
	}
	return q
}

func toLogEntry(entry types.AuditEntry) *LogEntry {
	return &LogEntry{
		ID:           entry.ID,
		ActorID:      entry.ActorID,
		TargetUserID: entry.TargetUserID,
		Action:       strings.TrimSpace(entry.Action),
		ObjectType:   strings.TrimSpace(entry.ObjectType),
		ObjectID:     strings.TrimSpace(entry.ObjectID),
		BeforeState:  entry.Before,
		AfterState:   entry.After,
		Notes:        entry.Notes,
		IP:           entry.IP,
		CreatedAt:    entry.OccurredAt,
	}
}

func toAuditEntry(row *LogEntry) types.AuditEntry {
	if row == nil {
		return types.AuditEntry{}
	}
	return types.AuditEntry{
		ID:           row.ID,
		ActorID:      row.ActorID,
		TargetUserID: row.TargetUserID,
		Action:       row.Action,
		ObjectType:   row.ObjectType,
		ObjectID:     row.ObjectID,
		Before:       row.BeforeState,
		After:        row.AfterState,
		Notes:        row.Notes,
		IP:           row.IP,
		OccurredAt:   row.CreatedAt,
	}
}

func normalizePagination(p types.Pagination, def, max int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
