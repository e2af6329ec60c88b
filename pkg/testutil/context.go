package testutil

import (
	"net/http"

	"govdash/pkg/domain"
	"govdash/pkg/requestcontext"
)

// WithPrincipal attaches p to the request as the auth middleware would.
func WithPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
}

// AsPrincipal is middleware that authenticates every request as p. The
// function is called per request so tests can switch callers between calls.
func AsPrincipal(p func() domain.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, WithPrincipal(r, p()))
		})
	}
}
