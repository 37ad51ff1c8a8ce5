package authz

import (
	"strings"

	"github.com/acadia-sis/acadia-sis/internal/shared"
)

// Rule identifies which rule produced a decision.
type Rule string

const (
	RuleBypass   Rule = "bypass"
	RuleDirect   Rule = "direct"
	RuleImplied  Rule = "implied"
	RuleWildcard Rule = "wildcard"
	RuleNone     Rule = "none"
)

// Decision is the engine's verdict for a single check.
type Decision struct {
	Allowed bool
	Rule    Rule
}

// Engine evaluates allow/deny from a resolved permission set. It performs no
// I/O; both the hierarchy table and the elevated label set are fixed at
// construction.
type Engine struct {
	hierarchy Hierarchy
	elevated  map[string]struct{}
}

// NewEngine constructs an Engine with the given hierarchy table and the role
// labels that qualify for bypass.
func NewEngine(hierarchy Hierarchy, elevatedLabels []string) *Engine {
	elevated := make(map[string]struct{}, len(elevatedLabels))
	for _, label := range elevatedLabels {
		label = strings.TrimSpace(strings.ToLower(label))
		if label == "" {
			continue
		}
		elevated[label] = struct{}{}
	}
	return &Engine{hierarchy: hierarchy, elevated: elevated}
}

// Decide applies the rules in order, short-circuiting on the first match:
// bypass, direct match, hierarchy-implied match, wildcard match. The
// ownership fallback runs at the gate, after a deny from here, so the engine
// stays free of I/O.
func (e *Engine) Decide(principal shared.Principal, resource string, action Action, perms PermissionSet, opts Options) Decision {
	if opts.BypassEnabled {
		if _, ok := e.elevated[strings.ToLower(principal.RoleLabel)]; ok {
			return Decision{Allowed: true, Rule: RuleBypass}
		}
	}

	if perms.Has(resource, action) {
		return Decision{Allowed: true, Rule: RuleDirect}
	}

	for grant := range perms {
		if grant.Resource != resource {
			continue
		}
		if e.hierarchy.Implies(grant.Action, action) {
			return Decision{Allowed: true, Rule: RuleImplied}
		}
	}

	if perms.Has(Wildcard, Wildcard) || perms.Has(Wildcard, action) || perms.Has(resource, Action(Wildcard)) {
		return Decision{Allowed: true, Rule: RuleWildcard}
	}

	return Decision{Rule: RuleNone}
}
