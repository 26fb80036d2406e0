package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Pagination supports query pagination across admin panels.
type Pagination struct {
	Limit  int
	Offset int
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service. Implementations
// must never receive passwords, stored hashes or salts as fields.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// PasswordHasher derives and checks stored credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) bool
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-credentials: actor reference required")
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("go-credentials: user id required")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-credentials: service not ready")
	// ErrMissingResetRepository occurs when no reset request repository was supplied.
	ErrMissingResetRepository = errors.New("go-credentials: missing reset request repository")
	// ErrMissingAccountRepository occurs when no account repository was supplied.
	ErrMissingAccountRepository = errors.New("go-credentials: missing account repository")
	// ErrMissingCredentialStore occurs when no credential store was supplied.
	ErrMissingCredentialStore = errors.New("go-credentials: missing credential store")
	// ErrMissingPasswordHasher occurs when no password hasher was supplied.
	ErrMissingPasswordHasher = errors.New("go-credentials: missing password hasher")
	// ErrMissingAuditRepository occurs when no audit repository was supplied.
	ErrMissingAuditRepository = errors.New("go-credentials: missing audit repository")
	// ErrMissingAlertRepository occurs when no security alert repository was supplied.
	ErrMissingAlertRepository = errors.New("go-credentials: missing security alert repository")
	// ErrMissingRateLimiter occurs when intake runs without a limiter.
	ErrMissingRateLimiter = errors.New("go-credentials: missing rate limiter")
)
