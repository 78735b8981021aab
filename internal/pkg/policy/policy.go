// Package policy holds the declarative path-to-role access table consulted
// by the authorization filter. Extending access control means adding a
// rule, not a handler.
package policy

import (
	"strings"

	"github.com/rayanh/salary-tracker/internal/domain"
)

// Rule requires the given role on every path containing Fragment.
type Rule struct {
	Fragment string
	Role     domain.Role
}

// Policy is a static, process-wide access table. It is read-only after
// construction and safe for concurrent use.
type Policy struct {
	open  []string
	rules []Rule
}

// New builds a policy. Paths with a prefix in open require no
// authentication at all; every other path requires an authenticated
// principal, plus the role of every rule whose fragment the path
// contains.
func New(open []string, rules []Rule) *Policy {
	return &Policy{open: open, rules: rules}
}

// Check evaluates the table for a request path. A nil principal means the
// request is unauthenticated. All matching rules are evaluated; any
// single unmet requirement is fatal.
func (p *Policy) Check(path string, principal *domain.Principal) error {
	for _, prefix := range p.open {
		if strings.HasPrefix(path, prefix) {
			return nil
		}
	}

	if principal == nil {
		return domain.ErrAuthFailed
	}

	for _, rule := range p.rules {
		if strings.Contains(path, rule.Fragment) && !principal.Role.Satisfies(rule.Role) {
			return domain.ErrForbidden
		}
	}
	return nil
}

// Open reports whether the path is on the unauthenticated allowlist.
func (p *Policy) Open(path string) bool {
	for _, prefix := range p.open {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
