package middleware

import (
	"net/http"

	identitymodels "siteguard/internal/identity/models"
	"siteguard/pkg/requestcontext"
)

// ActorResolver turns an incoming request into the authenticated actor, or
// nil when the request carries no usable identity.
type ActorResolver func(r *http.Request) *identitymodels.Actor

// Actor resolves the request's actor and stores it in the context for the
// permission checks and capability filtering downstream. A nil resolver
// leaves every request anonymous.
func Actor(resolve ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolve != nil {
				if actor := resolve(r); actor != nil {
					r = r.WithContext(requestcontext.WithActor(r.Context(), actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
