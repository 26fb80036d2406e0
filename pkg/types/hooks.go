package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReviewEvent is emitted after a reset request reaches a terminal state.
type ReviewEvent struct {
	RequestID  uuid.UUID
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Status     ResetStatus
	OccurredAt time.Time
}

// BookkeepingFailure describes a post-replacement step that did not complete.
// The new secret is already live when this is emitted.
type BookkeepingFailure struct {
	RequestID  uuid.UUID
	UserID     uuid.UUID
	Step       string
	Err        error
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterResetRequested     func(context.Context, ResetRequest)
	AfterReview             func(context.Context, ReviewEvent)
	AfterBookkeepingFailure func(context.Context, BookkeepingFailure)
	AfterAudit              func(context.Context, AuditEntry)
}
