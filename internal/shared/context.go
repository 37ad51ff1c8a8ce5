package shared

import "context"

// Principal describes the authenticated actor attached to a request.
// It is created by the dispatch layer at authentication time and is
// immutable for the life of a call.
type Principal struct {
	ID        int64
	RoleLabel string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
