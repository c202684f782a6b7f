package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

func TestAuthorizeManagerScenario(t *testing.T) {
	actor := domain.Actor{ID: 1, Role: domain.RoleManager, TenantID: 7}

	assert.Equal(t, Allowed, Authorize(actor, 7))
	assert.Equal(t, Denied, Authorize(actor, 8))
}

func TestAuthorizeEveryRole(t *testing.T) {
	for _, role := range domain.Roles() {
		for home := domain.TenantID(1); home <= 4; home++ {
			actor := domain.Actor{ID: 1, Role: role, TenantID: home}
			for target := domain.TenantID(1); target <= 4; target++ {
				got := Authorize(actor, target)
				switch {
				case role == domain.RoleSuperAdmin:
					assert.Equal(t, Allowed, got, "superadmin is always allowed")
				case target == home:
					assert.Equal(t, Allowed, got)
				default:
					assert.Equal(t, Denied, got, "%s of %d on %d", role, home, target)
				}
			}
		}
	}
}

func TestRequire(t *testing.T) {
	actor := domain.Actor{ID: 2, Role: domain.RoleAdmin, TenantID: 3}

	require.NoError(t, Require(actor, 3))

	err := Require(actor, 4)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}
