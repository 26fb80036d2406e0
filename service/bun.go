package service

import (
	"github.com/goliatone/go-credentials/account"
	"github.com/goliatone/go-credentials/alert"
	"github.com/goliatone/go-credentials/audit"
	"github.com/goliatone/go-credentials/credential"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/resetrequest"
	"github.com/uptrace/bun"
)

// BunRepositories fills the storage fields of cfg with the Bun-backed
// repositories over db. Fields already set are kept. When the request, account
// and credential stores are all Bun-backed and no UnitOfWork is set, the
// review and intake commands get one transaction spanning them.
func BunRepositories(db *bun.DB, cfg Config) (Config, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	if cfg.ResetRequests == nil {
		repo, err := resetrequest.NewRepository(resetrequest.RepositoryConfig{DB: db, Clock: clock, IDGen: cfg.IDGenerator})
		if err != nil {
			return cfg, err
		}
		cfg.ResetRequests = repo
	}
	if cfg.Accounts == nil {
		repo, err := account.NewRepository(account.RepositoryConfig{DB: db, Clock: clock})
		if err != nil {
			return cfg, err
		}
		cfg.Accounts = repo
	}
	if cfg.Credentials == nil {
		store, err := credential.NewStore(credential.StoreConfig{DB: db, Clock: clock, IDGen: cfg.IDGenerator})
		if err != nil {
			return cfg, err
		}
		cfg.Credentials = store
	}
	if cfg.AuditRepository == nil {
		repo, err := audit.NewRepository(audit.RepositoryConfig{DB: db, Clock: clock, IDGen: cfg.IDGenerator})
		if err != nil {
			return cfg, err
		}
		cfg.AuditRepository = repo
	}
	if cfg.Alerts == nil {
		repo, err := alert.NewRepository(alert.RepositoryConfig{DB: db, Clock: clock, IDGen: cfg.IDGenerator})
		if err != nil {
			return cfg, err
		}
		cfg.Alerts = repo
	}
	if cfg.UnitOfWork == nil {
		requests, okRequests := cfg.ResetRequests.(*resetrequest.Repository)
		accounts, okAccounts := cfg.Accounts.(*account.Repository)
		credentials, okCredentials := cfg.Credentials.(*credential.Store)
		if okRequests && okAccounts && okCredentials {
			auditLog, _ := cfg.AuditRepository.(*audit.Repository)
			uow, err := NewBunUnitOfWork(db, requests, accounts, credentials, auditLog)
			if err != nil {
				return cfg, err
			}
			cfg.UnitOfWork = uow
		}
	}
	return cfg, nil
}
