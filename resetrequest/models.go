package resetrequest

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted password_reset_requests row.
type Record struct {
	bun.BaseModel `bun:"table:password_reset_requests"`

	ID                uuid.UUID  `bun:"id,pk,type:uuid"`
	Email             string     `bun:"email,notnull"`
	Message           string     `bun:"message,nullzero"`
	UserID            uuid.UUID  `bun:"user_id,type:uuid,nullzero"`
	IPAddress         string     `bun:"ip_address,nullzero"`
	UserAgent         string     `bun:"user_agent,nullzero"`
	GeoLocation       string     `bun:"geo_location,nullzero"`
	Status            string     `bun:"status,notnull"`
	RequestedAt       time.Time  `bun:"requested_at,notnull"`
	ReviewedAt        *time.Time `bun:"reviewed_at,nullzero"`
	ReviewedBy        uuid.UUID  `bun:"reviewed_by,type:uuid,nullzero"`
	AdminNotes        string     `bun:"admin_notes,nullzero"`
	NewPasswordHash   string     `bun:"new_password_hash,nullzero"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero"`
	PasswordChangedBy uuid.UUID  `bun:"password_changed_by,type:uuid,nullzero"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
