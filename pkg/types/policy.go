package types

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// PolicyAction enumerates the authorization actions enforced by the guard.
// Host applications can remap these actions to their own ACL systems.
type PolicyAction string

const (
	PolicyActionResetReview PolicyAction = "reset:review"
	PolicyActionResetRead   PolicyAction = "reset:read"
	PolicyActionResetPurge  PolicyAction = "reset:purge"
	PolicyActionAuditRead   PolicyAction = "audit:read"
	PolicyActionAlertsWrite PolicyAction = "alerts:write"
)

// PolicyCheck captures the authorization context for a single command/query.
type PolicyCheck struct {
	Actor    ActorRef
	Action   PolicyAction
	TargetID uuid.UUID
}

// AuthorizationPolicy governs whether an actor can perform the action.
type AuthorizationPolicy interface {
	Authorize(ctx context.Context, check PolicyCheck) error
}

// AuthorizationPolicyFunc adapts bare functions to AuthorizationPolicy.
type AuthorizationPolicyFunc func(ctx context.Context, check PolicyCheck) error

// Authorize implements AuthorizationPolicy.
func (f AuthorizationPolicyFunc) Authorize(ctx context.Context, check PolicyCheck) error {
	return f(ctx, check)
}

// ErrUnauthorized indicates the actor lacks the privilege tier for the action.
var ErrUnauthorized = errors.New("go-credentials: actor not authorized")

// RolePolicy is the default two-tier policy: administrators review and read,
// only super administrators purge.
type RolePolicy struct{}

// Authorize implements AuthorizationPolicy.
func (RolePolicy) Authorize(_ context.Context, check PolicyCheck) error {
	if check.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	switch check.Action {
	case PolicyActionResetPurge:
		if check.Actor.IsSuperAdmin() {
			return nil
		}
	default:
		if check.Actor.IsAdmin() {
			return nil
		}
	}
	return ErrUnauthorized
}
