package service

import (
	"context"
	"errors"

	"github.com/goliatone/go-credentials/account"
	"github.com/goliatone/go-credentials/audit"
	"github.com/goliatone/go-credentials/credential"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/resetrequest"
	"github.com/uptrace/bun"
)

// BunUnitOfWork binds the Bun stores to one bun.Tx per call.
type BunUnitOfWork struct {
	db          *bun.DB
	requests    *resetrequest.Repository
	accounts    *account.Repository
	credentials *credential.Store
	audit       *audit.Repository
}

// NewBunUnitOfWork requires every store to share db.
func NewBunUnitOfWork(db *bun.DB, requests *resetrequest.Repository, accounts *account.Repository, credentials *credential.Store, auditLog *audit.Repository) (*BunUnitOfWork, error) {
	switch {
	case db == nil:
		return nil, errors.New("service: unit of work requires bun DB")
	case requests == nil:
		return nil, types.ErrMissingResetRepository
	case accounts == nil:
		return nil, types.ErrMissingAccountRepository
	case credentials == nil:
		return nil, types.ErrMissingCredentialStore
	}
	return &BunUnitOfWork{
		db:          db,
		requests:    requests,
		accounts:    accounts,
		credentials: credentials,
		audit:       auditLog,
	}, nil
}

var _ types.UnitOfWork = (*BunUnitOfWork)(nil)

// RunInTx commits when fn returns nil and rolls back otherwise.
func (u *BunUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, stores types.TxStores) error) error {
	return u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		stores := types.TxStores{
			Requests:    u.requests.WithTx(tx),
			Accounts:    u.accounts.WithTx(tx),
			Credentials: u.credentials.WithTx(tx),
		}
		if u.audit != nil {
			stores.Audit = u.audit.WithTx(tx)
		}
		return fn(ctx, stores)
	})
}
