package middleware

import (
	"net/http"

	"github.com/offgriddoc/cablebuilder/api/validators"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
)

const (
	builderSessionHeader = "X-Builder-Session"
	maxBuilderSessionLen = 128
)

// BuilderSession carries the X-Builder-Session header into the request context.
func BuilderSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := validators.SanitizeString(r.Header.Get(builderSessionHeader), maxBuilderSessionLen)
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithBuilderSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithBuilderSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
