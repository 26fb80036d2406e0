package alert

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the persisted security_alerts row.
type Record struct {
	bun.BaseModel `bun:"table:security_alerts"`

	ID          uuid.UUID      `bun:"id,pk,type:uuid"`
	UserID      uuid.UUID      `bun:"user_id,type:uuid,notnull"`
	Type        string         `bun:"type,notnull"`
	Severity    string         `bun:"severity,notnull"`
	Title       string         `bun:"title,notnull"`
	Description string         `bun:"description,nullzero"`
	Metadata    map[string]any `bun:"metadata,type:jsonb"`
	Status      string         `bun:"status,notnull"`
	CreatedAt   time.Time      `bun:"created_at,notnull"`
	ClosedAt    *time.Time     `bun:"closed_at"`
	ClosedBy    uuid.UUID      `bun:"closed_by,type:uuid,nullzero"`
}
