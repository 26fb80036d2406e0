package credential

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProviderPassword identifies the password credential row of an account.
const ProviderPassword = "credential"

// Record models the persisted credentials row.
type Record struct {
	bun.BaseModel `bun:"table:credentials"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	UserID     uuid.UUID `bun:"user_id,notnull,type:uuid"`
	ProviderID string    `bun:"provider_id,notnull"`
	Password   string    `bun:"password,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
