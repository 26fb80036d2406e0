// Package service is the composition root of go-credentials. It wires the
// repositories, hasher, limiter, guard and hooks supplied by the host into the
// command and query facades.
package service

import (
	"context"

	"github.com/goliatone/go-credentials/command"
	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/goliatone/go-credentials/query"
	"github.com/goliatone/go-credentials/ratelimit"
	"github.com/goliatone/go-credentials/scope"
	"github.com/goliatone/go-credentials/scrypt"
	featuregate "github.com/goliatone/go-featuregate/gate"
)

// Service is the entry point for go-credentials.
type Service struct {
	cfg        Config
	limiter    types.RateLimiter
	commands   Commands
	queries    Queries
	scopeGuard scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	SubmitResetRequest   *command.SubmitResetRequestCommand
	RejectResetRequest   *command.RejectResetRequestCommand
	ApproveResetRequest  *command.ApproveResetRequestCommand
	UpdateRequestStatus  *command.UpdateRequestStatusCommand
	CleanupResetRequests *command.CleanupResetRequestsCommand
	CloseSecurityAlert   *command.CloseSecurityAlertCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	ResetRequestStatus *query.ResetRequestStatusQuery
	ResetRequestDetail *query.ResetRequestDetailQuery
	ResetRequestList   *query.ResetRequestListQuery
	AuditFeed          *query.AuditFeedQuery
	SecurityAlerts     *query.SecurityAlertListQuery
}

// Config captures all dependencies so callers can provide their own instances
// (bun repositories, a Redis limiter, a custom policy, etc.).
type Config struct {
	ResetRequests       types.ResetRequestRepository
	Accounts            types.AccountRepository
	Credentials         types.CredentialStore
	AuditRepository     types.AuditRepository
	Alerts              types.AlertRepository
	UnitOfWork          types.UnitOfWork
	Hasher              types.PasswordHasher
	RateLimiter         types.RateLimiter
	RateLimit           ratelimit.Config
	FeatureGate         featuregate.FeatureGate
	AuthorizationPolicy types.AuthorizationPolicy
	Hooks               types.Hooks
	Clock               types.Clock
	IDGenerator         types.IDGenerator
	Logger              types.Logger
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	limiter := norm.RateLimiter
	if limiter == nil && norm.ResetRequests != nil {
		history, err := ratelimit.NewHistoryLimiter(norm.ResetRequests, norm.RateLimit, norm.Clock)
		if err != nil {
			norm.Logger.Error("go-credentials: rate limiter initialization failed", err)
		} else {
			limiter = history
		}
	}

	s := &Service{
		cfg:        norm,
		limiter:    limiter,
		scopeGuard: scope.Ensure(scope.NewGuard(norm.AuthorizationPolicy)),
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.AuthorizationPolicy == nil {
		cfg.AuthorizationPolicy = types.RolePolicy{}
	}
	if cfg.RateLimit == (ratelimit.Config{}) {
		cfg.RateLimit = ratelimit.DefaultConfig()
	}
	if cfg.Hasher == nil {
		hasher, err := scrypt.NewHasher()
		if err != nil {
			cfg.Logger.Error("go-credentials: default hasher initialization failed", err)
		} else {
			cfg.Hasher = hasher
		}
	}
	return cfg
}

func (s *Service) buildCommands() Commands {
	review := command.ReviewCommandConfig{
		Requests:    s.cfg.ResetRequests,
		Accounts:    s.cfg.Accounts,
		Credentials: s.cfg.Credentials,
		Hasher:      s.cfg.Hasher,
		Audit:       s.auditSink(),
		Alerts:      s.cfg.Alerts,
		UnitOfWork:  s.cfg.UnitOfWork,
		Clock:       s.cfg.Clock,
		Hooks:       s.cfg.Hooks,
		Logger:      s.cfg.Logger,
		ScopeGuard:  s.scopeGuard,
	}
	reject := command.NewRejectResetRequestCommand(review)
	approve := command.NewApproveResetRequestCommand(review)
	return Commands{
		SubmitResetRequest: command.NewSubmitResetRequestCommand(command.SubmitResetRequestConfig{
			Requests:    s.cfg.ResetRequests,
			Accounts:    s.cfg.Accounts,
			Limiter:     s.limiter,
			Audit:       s.auditSink(),
			UnitOfWork:  s.cfg.UnitOfWork,
			FeatureGate: s.cfg.FeatureGate,
			Clock:       s.cfg.Clock,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
		}),
		RejectResetRequest:  reject,
		ApproveResetRequest: approve,
		UpdateRequestStatus: command.NewUpdateRequestStatusCommand(reject, approve),
		CleanupResetRequests: command.NewCleanupResetRequestsCommand(command.CleanupResetRequestsConfig{
			Requests:   s.cfg.ResetRequests,
			Audit:      s.cfg.AuditRepository,
			UnitOfWork: s.cfg.UnitOfWork,
			Clock:      s.cfg.Clock,
			Hooks:      s.cfg.Hooks,
			Logger:     s.cfg.Logger,
			ScopeGuard: s.scopeGuard,
		}),
		CloseSecurityAlert: command.NewCloseSecurityAlertCommand(command.CloseSecurityAlertConfig{
			Alerts:     s.cfg.Alerts,
			Audit:      s.auditSink(),
			Clock:      s.cfg.Clock,
			Hooks:      s.cfg.Hooks,
			Logger:     s.cfg.Logger,
			ScopeGuard: s.scopeGuard,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		ResetRequestStatus: query.NewResetRequestStatusQuery(s.limiter),
		ResetRequestDetail: query.NewResetRequestDetailQuery(s.cfg.ResetRequests, s.scopeGuard),
		ResetRequestList:   query.NewResetRequestListQuery(s.cfg.ResetRequests, s.scopeGuard),
		AuditFeed:          query.NewAuditFeedQuery(s.cfg.AuditRepository, s.scopeGuard),
		SecurityAlerts:     query.NewSecurityAlertListQuery(s.cfg.Alerts, s.scopeGuard),
	}
}

// auditSink avoids handing commands a typed nil interface.
func (s *Service) auditSink() types.AuditSink {
	if s.cfg.AuditRepository == nil {
		return nil
	}
	return s.cfg.AuditRepository
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Hasher returns the password hasher used for approvals.
func (s *Service) Hasher() types.PasswordHasher {
	return s.cfg.Hasher
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil && s.HealthCheck(context.Background()) == nil
}

// HealthCheck surfaces the first missing dependency.
func (s *Service) HealthCheck(_ context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	switch {
	case s.cfg.ResetRequests == nil:
		return types.ErrMissingResetRepository
	case s.cfg.Accounts == nil:
		return types.ErrMissingAccountRepository
	case s.cfg.Credentials == nil:
		return types.ErrMissingCredentialStore
	case s.cfg.Hasher == nil:
		return types.ErrMissingPasswordHasher
	case s.cfg.AuditRepository == nil:
		return types.ErrMissingAuditRepository
	case s.cfg.Alerts == nil:
		return types.ErrMissingAlertRepository
	case s.limiter == nil:
		return types.ErrMissingRateLimiter
	}
	return nil
}
