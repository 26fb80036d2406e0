package types

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// ActorRoleAdmin represents ordinary administrators allowed to review requests.
	ActorRoleAdmin = "admin"
	// ActorRoleSuperAdmin represents administrators with retention privileges.
	ActorRoleSuperAdmin = "super_admin"
)

// ActorRef identifies who is invoking a command or query. Role is supplied by
// the host application.
type ActorRef struct {
	ID   uuid.UUID
	Role string
}

// RoleName normalizes the actor role for comparisons.
func (a ActorRef) RoleName() string {
	return normalizeRole(a.Role)
}

// IsRole reports whether the actor matches the provided role.
func (a ActorRef) IsRole(role string) bool {
	role = normalizeRole(role)
	if role == "" {
		return a.RoleName() == ""
	}
	return a.RoleName() == role
}

// IsSuperAdmin reports whether the actor holds the super administrator tier.
func (a ActorRef) IsSuperAdmin() bool {
	return a.IsRole(ActorRoleSuperAdmin)
}

// IsAdmin reports whether the actor holds either administrator tier.
func (a ActorRef) IsAdmin() bool {
	return a.IsRole(ActorRoleAdmin) || a.IsSuperAdmin()
}

func normalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	return strings.NewReplacer("-", "_", " ", "_").Replace(role)
}
