package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Account is the subset of the host user record this module reads or resets.
type Account struct {
	ID                  uuid.UUID
	Email               string
	Name                string
	Role                string
	FailedLoginAttempts int
	IsLocked            bool
	LockReason          string
	LockedAt            time.Time
	UpdatedAt           time.Time
}

// AccountRepository resolves accounts and clears lock state.
type AccountRepository interface {
	// GetByEmail returns nil, nil when no account matches.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// Unlock zeroes the failed login counter and clears every lock field.
	Unlock(ctx context.Context, id uuid.UUID) error
}

// CredentialStore owns the stored password hash of each account. It exposes
// no read path other than verification.
type CredentialStore interface {
	ReplaceSecret(ctx context.Context, userID uuid.UUID, storedHash string) error
	VerifySecret(ctx context.Context, userID uuid.UUID, password string, verifier PasswordHasher) (bool, error)
}

var (
	// ErrAccountNotFound indicates no account matches the identifier.
	ErrAccountNotFound = errors.New("go-credentials: account not found")
	// ErrCredentialNotFound indicates the account has no password credential.
	ErrCredentialNotFound = errors.New("go-credentials: password credential not found")
)
