package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acadia-sis/acadia-sis/internal/shared"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultHierarchy(), []string{"admin", "super_admin"})
}

func grants(perms ...Permission) PermissionSet {
	return NewPermissionSet(perms)
}

func TestDecideDeniesWithoutGrants(t *testing.T) {
	engine := newTestEngine()
	principal := shared.Principal{ID: 1, RoleLabel: "teacher"}

	for _, action := range []Action{ActionRead, ActionCreate, ActionDelete, ActionManage} {
		decision := engine.Decide(principal, "grade", action, grants(), Options{})
		require.False(t, decision.Allowed, "action %s", action)
		require.Equal(t, RuleNone, decision.Rule)
	}
}

func TestDecideDirectMatch(t *testing.T) {
	engine := newTestEngine()
	principal := shared.Principal{ID: 1}
	set := grants(Permission{Resource: "grade", Action: ActionRead})

	allowed := engine.Decide(principal, "grade", ActionRead, set, Options{})
	require.True(t, allowed.Allowed)
	require.Equal(t, RuleDirect, allowed.Rule)

	denied := engine.Decide(principal, "grade", ActionDelete, set, Options{})
	require.False(t, denied.Allowed)

	otherResource := engine.Decide(principal, "department", ActionRead, set, Options{})
	require.False(t, otherResource.Allowed)
}

func TestDecideHierarchyImpliedMatch(t *testing.T) {
	engine := newTestEngine()
	principal := shared.Principal{ID: 1}
	set := grants(Permission{Resource: "department", Action: ActionManage})

	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionExport, ActionTransfer} {
		decision := engine.Decide(principal, "department", action, set, Options{})
		require.True(t, decision.Allowed, "action %s", action)
		require.Equal(t, RuleImplied, decision.Rule)
	}

	// DELETE is deliberately absent from the MANAGE expansion.
	require.False(t, engine.Decide(principal, "department", ActionDelete, set, Options{}).Allowed)

	// The grant is scoped to its resource.
	require.False(t, engine.Decide(principal, "grade", ActionCreate, set, Options{}).Allowed)
}

func TestDecideHierarchyExpansionIsSingleHop(t *testing.T) {
	chained := NewHierarchy(map[Action][]Action{
		ActionManage:  {ActionPublish},
		ActionPublish: {ActionRead},
	})
	engine := NewEngine(chained, nil)
	principal := shared.Principal{ID: 1}
	set := grants(Permission{Resource: "module", Action: ActionManage})

	require.True(t, engine.Decide(principal, "module", ActionPublish, set, Options{}).Allowed)
	// MANAGE implies PUBLISH, but never PUBLISH's own implications.
	require.False(t, engine.Decide(principal, "module", ActionRead, set, Options{}).Allowed)
}

func TestDecideWildcardMatches(t *testing.T) {
	engine := newTestEngine()
	principal := shared.Principal{ID: 1}

	cases := []struct {
		name  string
		grant Permission
	}{
		{"any resource any action", Permission{Resource: Wildcard, Action: Wildcard}},
		{"any resource", Permission{Resource: Wildcard, Action: ActionUpdate}},
		{"any action", Permission{Resource: "teacher", Action: Wildcard}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := engine.Decide(principal, "teacher", ActionUpdate, grants(tc.grant), Options{})
			require.True(t, decision.Allowed)
			require.Equal(t, RuleWildcard, decision.Rule)
		})
	}

	// A wildcard on another action grants nothing here.
	decision := engine.Decide(principal, "teacher", ActionDelete, grants(Permission{Resource: Wildcard, Action: ActionUpdate}), Options{})
	require.False(t, decision.Allowed)
}

func TestDecideBypass(t *testing.T) {
	engine := newTestEngine()
	elevated := shared.Principal{ID: 9, RoleLabel: "super_admin"}

	decision := engine.Decide(elevated, "grade", ActionDelete, grants(), Options{BypassEnabled: true})
	require.True(t, decision.Allowed)
	require.Equal(t, RuleBypass, decision.Rule)

	// Bypass label comparison is case-insensitive.
	mixedCase := shared.Principal{ID: 9, RoleLabel: "Admin"}
	require.True(t, engine.Decide(mixedCase, "grade", ActionDelete, grants(), Options{BypassEnabled: true}).Allowed)

	// Disabled bypass falls through to the remaining rules.
	require.False(t, engine.Decide(elevated, "grade", ActionDelete, grants(), Options{BypassEnabled: false}).Allowed)

	// A non-elevated label never bypasses.
	plain := shared.Principal{ID: 1, RoleLabel: "teacher"}
	require.False(t, engine.Decide(plain, "grade", ActionDelete, grants(), Options{BypassEnabled: true}).Allowed)
}

func TestDecideRuleOrderShortCircuits(t *testing.T) {
	engine := newTestEngine()
	elevated := shared.Principal{ID: 9, RoleLabel: "admin"}
	set := grants(Permission{Resource: "grade", Action: ActionRead})

	// Bypass wins before the direct match is ever consulted.
	decision := engine.Decide(elevated, "grade", ActionRead, set, DefaultOptions())
	require.Equal(t, RuleBypass, decision.Rule)

	// Direct match wins over a wildcard that would also allow.
	both := grants(
		Permission{Resource: "grade", Action: ActionRead},
		Permission{Resource: Wildcard, Action: Wildcard},
	)
	plain := shared.Principal{ID: 1}
	require.Equal(t, RuleDirect, engine.Decide(plain, "grade", ActionRead, both, Options{}).Rule)
}

func TestHierarchyUnknownActionImpliesNothing(t *testing.T) {
	h := DefaultHierarchy()
	require.False(t, h.Implies(ActionRead, ActionCreate))
	require.False(t, h.Implies(Action("UNKNOWN"), ActionRead))
	require.True(t, h.Implies(ActionManage, ActionArchive))
	require.False(t, h.Implies(ActionManage, ActionDelete))
}
