// Package access decides whether an authenticated actor may operate on a
// tenant. Every tenant-scoped read or mutation passes through Require before
// touching a store.
package access

import (
	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// Authorize allows a superadmin on any tenant and every other role only on
// its home tenant. It has no side effects.
func Authorize(actor domain.Actor, target domain.TenantID) Decision {
	if actor.IsSuperAdmin() {
		return Allowed
	}
	if actor.TenantID == target {
		return Allowed
	}
	return Denied
}

// Require is Authorize as an error: nil when allowed, CodeForbidden otherwise.
func Require(actor domain.Actor, target domain.TenantID) error {
	if Authorize(actor, target) == Allowed {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "access to tenant denied")
}
