// Package account provides a Bun-backed view of the host account table: lookup
// by email or id and clearing lock state after an administrative reset.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-credentials/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed account repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
}

// Repository implements types.AccountRepository using Bun.
type Repository struct {
	store repository.Repository[*Record]
	db    *bun.DB
	idb   bun.IDB
	clock types.Clock
}

// NewRepository constructs the default account repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("account: db or repository required")
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
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	out := &Repository{store: repo, db: db, clock: clock}
	if db != nil {
		out.idb = db
	}
	return out, nil
}

var _ types.AccountRepository = (*Repository)(nil)

// WithTx returns a copy of the repository that reads and writes through tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	scoped := *r
	scoped.idb = tx
	return &scoped
}

func (r *Repository) get(ctx context.Context, criteria ...repository.SelectCriteria) (*Record, error) {
	if r.idb == nil {
		return r.store.Get(ctx, criteria...)
	}
	return r.store.GetTx(ctx, r.idb, criteria...)
}

// Create inserts an account. Hosts normally own this table; Create exists for
// seeding and tests.
func (r *Repository) Create(ctx context.Context, account types.Account) (*types.Account, error) {
	rec := fromDomain(account)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := r.clock.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	var created *Record
	var err error
	if r.idb == nil {
		created, err = r.store.Create(ctx, rec)
	} else {
		created, err = r.store.CreateTx(ctx, r.idb, rec)
	}
	if err != nil {
		return nil, err
	}
	return toDomain(created), nil
}

// GetByEmail returns the account with the normalized email, or nil when none
// matches.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*types.Account, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, nil
	}
	rec, err := r.get(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("LOWER(email) = ?", normalized)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// GetByID returns the account or types.ErrAccountNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*types.Account, error) {
	if id == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec, err := r.get(ctx, repository.SelectBy("id", "=", id.String()))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// Unlock resets failed login attempts and clears the lock flag, reason and
// timestamp.
func (r *Repository) Unlock(ctx context.Context, id uuid.UUID) error {
	if r.idb == nil {
		return errors.New("account: db required for updates")
	}
	if id == uuid.Nil {
		return types.ErrUserIDRequired
	}
	res, err := r.idb.NewUpdate().Model((*Record)(nil)).
		Set("failed_login_attempts = 0").
		Set("is_locked = ?", false).
		Set("lock_reason = NULL").
		Set("locked_at = NULL").
		Set("updated_at = ?", r.clock.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		return types.ErrAccountNotFound
	}
	return nil
}

// RecordFailedLogin increments the failed login counter and locks the
// account once threshold is reached. A threshold below one never locks.
func (r *Repository) RecordFailedLogin(ctx context.Context, id uuid.UUID, threshold int, reason string) (*types.Account, error) {
	if r.idb == nil {
		return nil, errors.New("account: db required for updates")
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	attempts := current.FailedLoginAttempts + 1
	q := r.idb.NewUpdate().Model((*Record)(nil)).
		Set("failed_login_attempts = ?", attempts).
		Set("updated_at = ?", now).
		Where("id = ?", id)
	if threshold > 0 && attempts >= threshold && !current.IsLocked {
		q = q.Set("is_locked = ?", true).
			Set("lock_reason = ?", reason).
			Set("locked_at = ?", now)
	}
	if _, err := q.Exec(ctx); err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.db))
	}
	return r.GetByID(ctx, id)
}

func fromDomain(account types.Account) *Record {
	rec := &Record{
		ID:                  account.ID,
		Email:               strings.ToLower(strings.TrimSpace(account.Email)),
		Name:                account.Name,
		Role:                account.Role,
		FailedLoginAttempts: account.FailedLoginAttempts,
		IsLocked:            account.IsLocked,
	}
	if account.LockReason != "" {
		reason := account.LockReason
		rec.LockReason = &reason
	}
	if !account.LockedAt.IsZero() {
		lockedAt := account.LockedAt
		rec.LockedAt = &lockedAt
	}
	return rec
}

func toDomain(rec *Record) *types.Account {
	if rec == nil {
		return nil
	}
	account := &types.Account{
		ID:                  rec.ID,
		Email:               rec.Email,
		Name:                rec.Name,
		Role:                rec.Role,
		FailedLoginAttempts: rec.FailedLoginAttempts,
		IsLocked:            rec.IsLocked,
		UpdatedAt:           rec.UpdatedAt,
	}
	if rec.LockReason != nil {
		account.LockReason = *rec.LockReason
	}
	if rec.LockedAt != nil {
		account.LockedAt = *rec.LockedAt
	}
	return account
}
