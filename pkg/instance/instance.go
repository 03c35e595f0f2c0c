package instance

import (
	"os"

	"github.com/offgriddoc/cablebuilder/pkg/env"
)

// GetID identifies the running api process. Heroku-style DYNO wins, then the host name.
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
