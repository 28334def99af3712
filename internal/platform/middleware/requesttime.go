package middleware

import (
	"net/http"
	"time"

	"siteguard/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request so every
// read within one request observes the same instant. Expiry verdicts depend
// on "today" being stable across a single evaluation.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
