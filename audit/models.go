package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LogEntry models the persisted row in audit_log.
type LogEntry struct {
	bun.BaseModel `bun:"table:audit_log"`

	ID           uuid.UUID      `bun:"id,pk,type:uuid"`
	ActorID      uuid.UUID      `bun:"actor_id,type:uuid,nullzero"`
	TargetUserID uuid.UUID      `bun:"target_user_id,type:uuid,nullzero"`
	Action       string         `bun:"action,notnull"`
	ObjectType   string         `bun:"object_type,notnull"`
	ObjectID     string         `bun:"object_id,notnull"`
	BeforeState  map[string]any `bun:"before_state,type:jsonb"`
	AfterState   map[string]any `bun:"after_state,type:jsonb"`
	Notes        string         `bun:"notes,nullzero"`
	IP           string         `bun:"ip,nullzero"`
	CreatedAt    time.Time      `bun:"created_at,notnull"`
}
