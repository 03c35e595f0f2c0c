package middleware

import (
	"net/http"
	"strings"
)

// SecurityHeaders restricts which pages may frame the builder and sets the
// referrer policy on every response.
func SecurityHeaders(frameAncestors []string) func(http.Handler) http.Handler {
	ancestors := make([]string, 0, len(frameAncestors))
	for _, a := range frameAncestors {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			ancestors = append(ancestors, trimmed)
		}
	}
	if len(ancestors) == 0 {
		ancestors = []string{"'self'"}
	}
	csp := "frame-ancestors " + strings.Join(ancestors, " ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", csp)
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			next.ServeHTTP(w, r)
		})
	}
}
