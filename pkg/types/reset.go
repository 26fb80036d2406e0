package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ResetStatus enumerates the review states of a reset request.
type ResetStatus string

const (
	ResetStatusPending  ResetStatus = "pending"
	ResetStatusApproved ResetStatus = "approved"
	ResetStatusRejected ResetStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s ResetStatus) IsTerminal() bool {
	return s == ResetStatusApproved || s == ResetStatusRejected
}

// RequesterMetadata is opaque context captured at intake for audit purposes.
type RequesterMetadata struct {
	IPAddress   string
	UserAgent   string
	GeoLocation string
}

// ResetRequest is the persisted record of a user asking for an administrator
// to rotate their credential. NewPasswordHash is only set on approval and never
// holds plaintext.
type ResetRequest struct {
	ID                uuid.UUID
	Email             string
	Message           string
	UserID            uuid.UUID
	Requester         RequesterMetadata
	Status            ResetStatus
	RequestedAt       time.Time
	ReviewedAt        time.Time
	ReviewedBy        uuid.UUID
	AdminNotes        string
	NewPasswordHash   string
	PasswordChangedAt time.Time
	PasswordChangedBy uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Details projects the request for administrators. The returned type has no
// field able to carry the stored hash.
func (r ResetRequest) Details() ResetRequestDetails {
	return ResetRequestDetails{
		ID:                r.ID,
		Email:             r.Email,
		Message:           r.Message,
		UserID:            r.UserID,
		Requester:         r.Requester,
		Status:            r.Status,
		RequestedAt:       r.RequestedAt,
		ReviewedAt:        r.ReviewedAt,
		ReviewedBy:        r.ReviewedBy,
		AdminNotes:        r.AdminNotes,
		PasswordChangedAt: r.PasswordChangedAt,
		PasswordChangedBy: r.PasswordChangedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// ResetRequestDetails is the read projection served to administrators.
type ResetRequestDetails struct {
	ID                uuid.UUID         `json:"id"`
	Email             string            `json:"email"`
	Message           string            `json:"message,omitempty"`
	UserID            uuid.UUID         `json:"user_id"`
	Requester         RequesterMetadata `json:"requester"`
	Status            ResetStatus       `json:"status"`
	RequestedAt       time.Time         `json:"requested_at"`
	ReviewedAt        time.Time         `json:"reviewed_at"`
	ReviewedBy        uuid.UUID         `json:"reviewed_by"`
	AdminNotes        string            `json:"admin_notes,omitempty"`
	PasswordChangedAt time.Time         `json:"password_changed_at"`
	PasswordChangedBy uuid.UUID         `json:"password_changed_by"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ResetReview captures the reviewer side of a terminal transition.
type ResetReview struct {
	ReviewerID      uuid.UUID
	ReviewedAt      time.Time
	Notes           string
	NewPasswordHash string
}

// ResetRequestFilter narrows request listings.
type ResetRequestFilter struct {
	Actor      ActorRef
	Statuses   []ResetStatus
	Email      string
	Pagination Pagination
}

// Type implements gocommand.Message.
func (ResetRequestFilter) Type() string {
	return "query.reset_request.list"
}

// Validate implements gocommand.Message.
func (filter ResetRequestFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// ResetRequestPage is a page of request projections.
type ResetRequestPage struct {
	Requests   []ResetRequestDetails
	Total      int
	NextOffset int
	HasMore    bool
}

// RequestHistory is the read side used by history-derived rate limiting.
type RequestHistory interface {
	CountSince(ctx context.Context, email string, since time.Time) (int, error)
	// LatestRequestedAt returns the zero time when the email has no requests.
	LatestRequestedAt(ctx context.Context, email string) (time.Time, error)
}

// ResetRequestRepository persists reset requests. Transition must only update
// a row that is still pending and report ErrRequestNotPending otherwise.
type ResetRequestRepository interface {
	RequestHistory
	CreateRequest(ctx context.Context, request ResetRequest) (*ResetRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*ResetRequest, error)
	ListRequests(ctx context.Context, filter ResetRequestFilter) (ResetRequestPage, error)
	Transition(ctx context.Context, id uuid.UUID, to ResetStatus, review ResetReview) (*ResetRequest, error)
	// PurgeTerminalBefore deletes approved and rejected requests made before
	// cutoff and returns their identifiers.
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// TxStores are store handles bound to one storage transaction.
type TxStores struct {
	Requests    ResetRequestRepository
	Accounts    AccountRepository
	Credentials CredentialStore
	Audit       AuditRepository
}

// UnitOfWork runs fn with stores bound to a single transaction. Returning an
// error from fn rolls back every write made through stores. fn must not use
// any other store handle while it runs.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores TxStores) error) error
}

var (
	// ErrRequestNotFound indicates no reset request matches the identifier.
	ErrRequestNotFound = errors.New("go-credentials: reset request not found")
	// ErrRequestNotPending indicates the request already reached a terminal state.
	ErrRequestNotPending = errors.New("go-credentials: reset request is not pending")
)

// RateLimitReason explains why intake is blocked.
type RateLimitReason string

const (
	RateLimitReasonNone       RateLimitReason = ""
	RateLimitReasonDailyLimit RateLimitReason = "daily_limit"
	RateLimitReasonCooldown   RateLimitReason = "cooldown"
)

// RateLimitStatus is recomputed on every read; it is never stored.
type RateLimitStatus struct {
	CanSubmit         bool            `json:"can_submit"`
	AttemptsRemaining int             `json:"attempts_remaining"`
	RemainingSeconds  int             `json:"remaining_seconds"`
	Reason            RateLimitReason `json:"reason,omitempty"`
}

// RateLimiter decides whether an email may submit another reset request.
type RateLimiter interface {
	Status(ctx context.Context, email string) (RateLimitStatus, error)
	Record(ctx context.Context, email string, at time.Time) error
}
