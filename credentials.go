package credentials

import (
	"github.com/goliatone/go-credentials/data"
	"github.com/goliatone/go-credentials/service"
	"github.com/uptrace/bun"
)

// Re-export the service package entry point so consumers can do
// `credentials.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// MigrationsFS contains the goose migrations for PostgreSQL (root files) and
// SQLite (sqlite/ overrides). Use the migrations package to apply them.
var MigrationsFS = data.MigrationsFS

// New constructs the go-credentials runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}

// NewWithBun fills any missing storage dependency in cfg with the Bun-backed
// repositories over db and constructs the runtime.
func NewWithBun(db *bun.DB, cfg Config) (*Service, error) {
	wired, err := service.BunRepositories(db, cfg)
	if err != nil {
		return nil, err
	}
	return service.New(wired), nil
}
