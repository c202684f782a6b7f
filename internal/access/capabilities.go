package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"transparency/pkg/domain"
	dErrors "transparency/pkg/domain-errors"
)

// Permission is an (object, action) pair checked against the role policy.
type Permission struct {
	Object string
	Action string
}

func (p Permission) String() string {
	return p.Object + ":" + p.Action
}

const (
	ObjectRequests  = "esic.requests"
	ObjectFinance   = "finance.records"
	ObjectReporting = "reporting"
)

var (
	ReadRequests   = Permission{ObjectRequests, "read"}
	SubmitRequest  = Permission{ObjectRequests, "submit"}
	AssignRequest  = Permission{ObjectRequests, "assign"}
	RespondRequest = Permission{ObjectRequests, "respond"}
	FileAppeal     = Permission{ObjectRequests, "appeal"}
	ResolveAppeal  = Permission{ObjectRequests, "resolve-appeal"}
	CloseRequest   = Permission{ObjectRequests, "close"}
	PublishRequest = Permission{ObjectRequests, "publish"}
	SweepExpired   = Permission{ObjectRequests, "sweep"}
	ReadFinance    = Permission{ObjectFinance, "read"}
	WriteFinance   = Permission{ObjectFinance, "write"}
	ReadReports    = Permission{ObjectReporting, "read"}
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// grants lists what each role adds on top of the role below it.
var grants = map[domain.Role][]Permission{
	domain.RoleViewer:   {ReadRequests, ReadFinance, ReadReports},
	domain.RoleOperator: {SubmitRequest, AssignRequest, RespondRequest, FileAppeal, ResolveAppeal},
	domain.RoleManager:  {CloseRequest, PublishRequest, SweepExpired, WriteFinance},
}

// Policy holds the role capability model. Roles inherit every grant of the
// roles ranked below them.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("load access model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	var rules [][]string
	for role, perms := range grants {
		for _, p := range perms {
			rules = append(rules, []string{subject(role), p.Object, p.Action})
		}
	}
	if _, err := enforcer.AddPolicies(rules); err != nil {
		return nil, fmt.Errorf("add policies: %w", err)
	}

	var inheritance [][]string
	roles := domain.Roles()
	for i := 1; i < len(roles); i++ {
		inheritance = append(inheritance, []string{subject(roles[i]), subject(roles[i-1])})
	}
	if _, err := enforcer.AddGroupingPolicies(inheritance); err != nil {
		return nil, fmt.Errorf("add role hierarchy: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

// Can reports whether role holds perm regardless of tenant.
func (p *Policy) Can(role domain.Role, perm Permission) bool {
	if !role.IsValid() {
		return false
	}
	ok, err := p.enforcer.Enforce(subject(role), perm.Object, perm.Action)
	return err == nil && ok
}

// Check applies the tenant guard and then the role capability.
func (p *Policy) Check(actor domain.Actor, target domain.TenantID, perm Permission) error {
	if err := Require(actor, target); err != nil {
		return err
	}
	if !p.Can(actor.Role, perm) {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s may not %s", actor.Role, perm)
	}
	return nil
}

func subject(role domain.Role) string {
	return "role:" + string(role)
}
