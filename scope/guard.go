// Package scope holds the authorization guard shared by commands and queries.
package scope

import (
	"context"

	"github.com/goliatone/go-credentials/pkg/types"
	"github.com/google/uuid"
)

// Guard enforces the authorization policy for commands and queries. It is
// small so callers can swap custom guards in tests.
type Guard interface {
	Enforce(ctx context.Context, actor types.ActorRef, action types.PolicyAction, target uuid.UUID) error
}

type guard struct {
	policy types.AuthorizationPolicy
}

// NewGuard builds a Guard from the supplied policy. A nil policy falls back to
// types.RolePolicy.
func NewGuard(policy types.AuthorizationPolicy) Guard {
	if policy == nil {
		policy = types.RolePolicy{}
	}
	return guard{policy: policy}
}

// Ensure returns a non-nil guard so command/query constructors can accept nil
// guards when tests instantiate them directly.
func Ensure(g Guard) Guard {
	if g == nil {
		return NewGuard(nil)
	}
	return g
}

// NopGuard returns a guard that never blocks.
func NopGuard() Guard {
	return nopGuard{}
}

// Enforce requires an actor and authorizes the action.
func (g guard) Enforce(ctx context.Context, actor types.ActorRef, action types.PolicyAction, target uuid.UUID) error {
	if actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}
	if action == "" {
		return nil
	}
	return g.policy.Authorize(ctx, types.PolicyCheck{
		Actor:    actor,
		Action:   action,
		TargetID: target,
	})
}

type nopGuard struct{}

func (nopGuard) Enforce(context.Context, types.ActorRef, types.PolicyAction, uuid.UUID) error {
	return nil
}
