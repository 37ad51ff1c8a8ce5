package authz

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acadia-sis/acadia-sis/internal/platform/httpx"
	"github.com/acadia-sis/acadia-sis/internal/shared"
)

// Middleware wires the enforcement gate into HTTP handlers.
type Middleware struct {
	Gate *Gate
}

// Require ensures the current principal may perform action on resource.
func (m Middleware) Require(resource string, action Action) func(http.Handler) http.Handler {
	return m.require(resource, action, "")
}

// RequireOwned behaves like Require but, when every role rule denies,
// consults the ownership fallback with the resource instance id taken from
// the named route parameter.
func (m Middleware) RequireOwned(resource string, action Action, idParam string) func(http.Handler) http.Handler {
	return m.require(resource, action, idParam)
}

func (m Middleware) require(resource string, action Action, idParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			opts := DefaultOptions()
			if idParam != "" {
				if id := chi.URLParam(r, idParam); id != "" {
					opts.OwnershipCheckEnabled = true
					opts.InstanceID = id
				}
			}
			principal := shared.PrincipalFromContext(r.Context())
			outcome := m.Gate.Authorize(r.Context(), principal, resource, action, opts)
			if !outcome.Allowed {
				httpx.JSON(w, http.StatusForbidden, outcome.Reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
