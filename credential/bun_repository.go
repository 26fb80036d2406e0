// Package credential stores each account's password hash. The store never
// returns the hash to callers: the only read path hands it to a verifier.
package credential

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-credentials/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StoreConfig wires the Bun-backed credential store.
type StoreConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Store implements types.CredentialStore using Bun.
type Store struct {
	store repository.Repository[*Record]
	db    *bun.DB
	idb   bun.IDB
	clock types.Clock
	idGen types.IDGenerator
}

// NewStore constructs the default credential store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("credential: db or repository required")
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
	out := &Store{store: repo, db: db, clock: clock, idGen: idGen}
	if db != nil {
		out.idb = db
	}
	return out, nil
}

var _ types.CredentialStore = (*Store)(nil)

// WithTx returns a copy of the store that reads and writes through tx.
func (s *Store) WithTx(tx bun.IDB) *Store {
	scoped := *s
	scoped.idb = tx
	return &scoped
}

// Enroll creates the password credential for an account that has none.
func (s *Store) Enroll(ctx context.Context, userID uuid.UUID, storedHash string) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	if strings.TrimSpace(storedHash) == "" {
		return errors.New("credential: stored hash required")
	}
	now := s.clock.Now()
	rec := &Record{
		ID:         s.idGen.UUID(),
		UserID:     userID,
		ProviderID: ProviderPassword,
		Password:   storedHash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if s.idb == nil {
		_, err := s.store.Create(ctx, rec)
		return err
	}
	_, err := s.store.CreateTx(ctx, s.idb, rec)
	return err
}

// ReplaceSecret overwrites the account's password credential. The previous
// hash is not archived.
func (s *Store) ReplaceSecret(ctx context.Context, userID uuid.UUID, storedHash string) error {
	if s.idb == nil {
		return errors.New("credential: db required for updates")
	}
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	if strings.TrimSpace(storedHash) == "" {
		return errors.New("credential: stored hash required")
	}
	res, err := s.idb.NewUpdate().Model((*Record)(nil)).
		Set("password = ?", storedHash).
		Set("updated_at = ?", s.clock.Now()).
		Where("user_id = ?", userID).
		Where("provider_id = ?", ProviderPassword).
		Exec(ctx)
	if err != nil {
		return repository.MapDatabaseError(err, repository.DetectDriver(s.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		return types.ErrCredentialNotFound
	}
	return nil
}

// VerifySecret checks password against the stored credential without
// exposing the hash.
func (s *Store) VerifySecret(ctx context.Context, userID uuid.UUID, password string, verifier types.PasswordHasher) (bool, error) {
	if verifier == nil {
		return false, types.ErrMissingPasswordHasher
	}
	criteria := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ?", userID).Where("provider_id = ?", ProviderPassword)
	}
	var rec *Record
	var err error
	if s.idb == nil {
		rec, err = s.store.Get(ctx, criteria)
	} else {
		rec, err = s.store.GetTx(ctx, s.idb, criteria)
	}
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, types.ErrCredentialNotFound
		}
		return false, err
	}
	return verifier.Verify(rec.Password, password), nil
}
