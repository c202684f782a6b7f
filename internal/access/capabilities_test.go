package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

func TestPolicyGrants(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	tests := []struct {
		perm    Permission
		minimum domain.Role
	}{
		{ReadRequests, domain.RoleViewer},
		{ReadFinance, domain.RoleViewer},
		{ReadReports, domain.RoleViewer},
		{SubmitRequest, domain.RoleOperator},
		{AssignRequest, domain.RoleOperator},
		{RespondRequest, domain.RoleOperator},
		{FileAppeal, domain.RoleOperator},
		{ResolveAppeal, domain.RoleOperator},
		{CloseRequest, domain.RoleManager},
		{PublishRequest, domain.RoleManager},
		{SweepExpired, domain.RoleManager},
		{WriteFinance, domain.RoleManager},
	}
	for _, tt := range tests {
		for _, role := range domain.Roles() {
			want := role.AtLeast(tt.minimum)
			assert.Equal(t, want, policy.Can(role, tt.perm), "%s %s", role, tt.perm)
		}
	}

	assert.False(t, policy.Can(domain.Role("auditor"), ReadRequests))
}

func TestPolicyCheck(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	operator := domain.Actor{ID: 5, Role: domain.RoleOperator, TenantID: 7}

	t.Run("home tenant with capability", func(t *testing.T) {
		assert.NoError(t, policy.Check(operator, 7, RespondRequest))
	})

	t.Run("home tenant without capability", func(t *testing.T) {
		err := policy.Check(operator, 7, CloseRequest)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("foreign tenant", func(t *testing.T) {
		err := policy.Check(operator, 8, ReadRequests)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("superadmin anywhere", func(t *testing.T) {
		root := domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}
		assert.NoError(t, policy.Check(root, 42, WriteFinance))
	})
}
