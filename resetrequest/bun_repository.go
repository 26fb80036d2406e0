// Package resetrequest persists administrator-reviewed password reset
// requests. Status transitions are conditional updates so two reviewers racing
// on the same request cannot both succeed.
package resetrequest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-credentials/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed reset request repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Repository implements types.ResetRequestRepository using Bun.
type Repository struct {
	store repository.Repository[*Record]
	db    *bun.DB
	idb   bun.IDB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default reset request repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("resetrequest: db or repository required")
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
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	if db == nil {
		return nil, errors.New("resetrequest: bun DB required")
	}
	return &Repository{store: repo, db: db, idb: db, clock: clock, idGen: idGen}, nil
}

var _ types.ResetRequestRepository = (*Repository)(nil)

// WithTx returns a copy of the repository that reads and writes through tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	scoped := *r
	scoped.idb = tx
	return &scoped
}

// WithinTx runs fn with a repository bound to a single transaction. A
// repository already bound to a transaction reuses it.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo *Repository) error) error {
	if _, inTx := r.idb.(bun.Tx); inTx {
		return fn(ctx, r)
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, r.WithTx(tx))
	})
}

// CreateRequest inserts a pending request. The email is normalized.
func (r *Repository) CreateRequest(ctx context.Context, request types.ResetRequest) (*types.ResetRequest, error) {
	rec := fromDomain(request)
	rec.Email = NormalizeEmail(rec.Email)
	if rec.Email == "" {
		return nil, errors.New("resetrequest: email required")
	}
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	now := r.clock.Now()
	if rec.RequestedAt.IsZero() {
		rec.RequestedAt = now
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	rec.Status = string(types.ResetStatusPending)
	rec.NewPasswordHash = ""

	if _, err := r.idb.NewInsert().Model(rec).Exec(ctx); err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomain(rec), nil
}

// GetRequest returns the request or types.ErrRequestNotFound.
func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (*types.ResetRequest, error) {
	rec := &Record{}
	err := r.idb.NewSelect().Model(rec).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrRequestNotFound
		}
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return toDomain(rec), nil
}

// ListRequests returns request projections, newest first.
func (r *Repository) ListRequests(ctx context.Context, filter types.ResetRequestFilter) (types.ResetRequestPage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	rows, total, err := r.store.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, status := range filter.Statuses {
				statuses = append(statuses, string(status))
			}
			q = q.Where("status IN (?)", bun.In(statuses))
		}
		if email := NormalizeEmail(filter.Email); email != "" {
			q = q.Where("email = ?", email)
		}
		return q.OrderExpr("requested_at DESC").
			Limit(pagination.Limit).
			Offset(pagination.Offset)
	})
	if err != nil {
		return types.ResetRequestPage{}, err
	}
	details := make([]types.ResetRequestDetails, 0, len(rows))
	for _, row := range rows {
		details = append(details, toDomain(row).Details())
	}
	return types.ResetRequestPage{
		Requests:   details,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

// CountSince counts requests for email made at or after since.
func (r *Repository) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	return r.idb.NewSelect().Model((*Record)(nil)).
		Where("email = ?", NormalizeEmail(email)).
		Where("requested_at >= ?", since).
		Count(ctx)
}

// LatestRequestedAt returns the time of the most recent request for email.
func (r *Repository) LatestRequestedAt(ctx context.Context, email string) (time.Time, error) {
	rec := &Record{}
	err := r.idb.NewSelect().Model(rec).
		Column("requested_at").
		Where("email = ?", NormalizeEmail(email)).
		OrderExpr("requested_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return rec.RequestedAt, nil
}

// Transition moves a pending request to a terminal status. The status check
// and the write are a single conditional UPDATE.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, to types.ResetStatus, review types.ResetReview) (*types.ResetRequest, error) {
	if !to.IsTerminal() {
		return nil, errors.New("resetrequest: transition target must be approved or rejected")
	}
	reviewedAt := review.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = r.clock.Now()
	}
	q := r.idb.NewUpdate().Model((*Record)(nil)).
		Set("status = ?", string(to)).
		Set("reviewed_at = ?", reviewedAt).
		Set("reviewed_by = ?", nullUUID(review.ReviewerID)).
		Set("admin_notes = ?", nullString(review.Notes)).
		Set("updated_at = ?", r.clock.Now())
	if to == types.ResetStatusApproved {
		if strings.TrimSpace(review.NewPasswordHash) == "" {
			return nil, errors.New("resetrequest: approval requires the new password hash")
		}
		q = q.Set("new_password_hash = ?", review.NewPasswordHash).
			Set("password_changed_at = ?", reviewedAt).
			Set("password_changed_by = ?", nullUUID(review.ReviewerID))
	}
	res, err := q.Where("id = ?", id).
		Where("status = ?", string(types.ResetStatusPending)).
		Exec(ctx)
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if _, getErr := r.GetRequest(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, types.ErrRequestNotPending
	}
	return r.GetRequest(ctx, id)
}

// PurgeTerminalBefore deletes approved and rejected requests made before
// cutoff, together with their stored hashes.
func (r *Repository) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.WithinTx(ctx, func(ctx context.Context, scoped *Repository) error {
		terminal := []string{string(types.ResetStatusApproved), string(types.ResetStatusRejected)}
		var rows []Record
		if err := scoped.idb.NewSelect().Model(&rows).
			Column("id").
			Where("status IN (?)", bun.In(terminal)).
			Where("requested_at < ?", cutoff).
			Scan(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids = make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		_, err := scoped.idb.NewDelete().Model((*Record)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return ids, nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func fromDomain(request types.ResetRequest) *Record {
	return &Record{
		ID:                request.ID,
		Email:             request.Email,
		Message:           strings.TrimSpace(request.Message),
		UserID:            request.UserID,
		IPAddress:         request.Requester.IPAddress,
		UserAgent:         request.Requester.UserAgent,
		GeoLocation:       request.Requester.GeoLocation,
		Status:            string(request.Status),
		RequestedAt:       request.RequestedAt,
		ReviewedAt:        timePtr(request.ReviewedAt),
		ReviewedBy:        request.ReviewedBy,
		AdminNotes:        request.AdminNotes,
		NewPasswordHash:   request.NewPasswordHash,
		PasswordChangedAt: timePtr(request.PasswordChangedAt),
		PasswordChangedBy: request.PasswordChangedBy,
		CreatedAt:         request.CreatedAt,
		UpdatedAt:         request.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.ResetRequest {
	if rec == nil {
		return nil
	}
	return &types.ResetRequest{
		ID:      rec.ID,
		Email:   rec.Email,
		Message: rec.Message,
		UserID:  rec.UserID,
		Requester: types.RequesterMetadata{
			IPAddress:   rec.IPAddress,
			UserAgent:   rec.UserAgent,
			GeoLocation: rec.GeoLocation,
		},
		Status:            types.ResetStatus(rec.Status),
		RequestedAt:       rec.RequestedAt,
		ReviewedAt:        timeFromPtr(rec.ReviewedAt),
		ReviewedBy:        rec.ReviewedBy,
		AdminNotes:        rec.AdminNotes,
		NewPasswordHash:   rec.NewPasswordHash,
		PasswordChangedAt: timeFromPtr(rec.PasswordChangedAt),
		PasswordChangedBy: rec.PasswordChangedBy,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
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

func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func nullString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func timePtr(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	copy := value
	return &copy
}

func timeFromPtr(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
