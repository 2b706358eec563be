package router

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer builds an in-memory enforcer from policy lines of the form
// "<client_id> <route> <method>". "*" matches any client or method.
func NewEnforcer(policies []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	rules := make([][]string, 0, len(policies))
	for _, line := range policies {
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("router: invalid policy %q, want \"client route method\"", line)
		}
		parts[2] = strings.ToUpper(parts[2])
		rules = append(rules, parts)
	}

	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, err
		}
	}

	return e, nil
}
