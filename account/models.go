package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted accounts row.
type Record struct {
	bun.BaseModel `bun:"table:accounts"`

	ID                  uuid.UUID  `bun:"id,pk,type:uuid"`
	Email               string     `bun:"email,notnull"`
	Name                string     `bun:"name"`
	Role                string     `bun:"role"`
	FailedLoginAttempts int        `bun:"failed_login_attempts,notnull"`
	IsLocked            bool       `bun:"is_locked,notnull"`
	LockReason          *string    `bun:"lock_reason"`
	LockedAt            *time.Time `bun:"locked_at"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
