package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
)

// ParseQueryChoice reads an optional query parameter that must be one of allowed.
func ParseQueryChoice(r *http.Request, key string, allowed []string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", nil
	}
	for _, candidate := range allowed {
		if raw == candidate {
			return raw, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter not recognised").WithDetails(map[string]any{"field": key, "allowed": allowed})
}
