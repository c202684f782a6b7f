package domain

import dErrors "transparency/pkg/domain-errors"

// Role is the capability tier of an authenticated user.
// Invariant: the value must be one of the supported roles.
//
// Roles are ordered: each role holds every capability of the roles ranked
// below it. Only RoleSuperAdmin is exempt from tenant scoping.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleOperator   Role = "operator"
	RoleViewer     Role = "viewer"
)

// roleRank is the single source of truth for valid roles and their order.
var roleRank = map[Role]int{
	RoleViewer:     1,
	RoleOperator:   2,
	RoleManager:    3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// Roles lists every role from least to most privileged.
func Roles() []Role {
	return []Role{RoleViewer, RoleOperator, RoleManager, RoleAdmin, RoleSuperAdmin}
}

// ParseRole constructs a Role from external input (token claims, config).
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank orders roles; unknown roles rank zero.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r is ranked at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && r.Rank() >= min.Rank()
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller as supplied by the identity layer.
// Credentials are already verified by the time an Actor exists.
type Actor struct {
	ID       UserID   `json:"id"`
	Role     Role     `json:"role"`
	TenantID TenantID `json:"tenant_id"`
}

// IsSuperAdmin reports whether the actor bypasses tenant scoping.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}
