package builder

import (
	"context"
	"net/http"

	"github.com/offgriddoc/cablebuilder/api/middleware"
	"github.com/offgriddoc/cablebuilder/api/responses"
	"github.com/offgriddoc/cablebuilder/api/validators"
	buildersvc "github.com/offgriddoc/cablebuilder/internal/builder"
	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
)

type quoter interface {
	Quote(ctx context.Context, sessionID string, cfg buildersvc.Configuration) (*buildersvc.Result, bool, error)
}

// Quote prices a configuration on the caller's builder session.
func Quote(svc quoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload QuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg := payload.toConfiguration()
		if err := buildersvc.Validate(cfg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, inFlight, err := svc.Quote(r.Context(), middleware.BuilderSessionFromContext(r.Context()), cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"generation":  result.Generation,
				"sku_count":   len(result.SKUs),
				"missing":     len(result.Quote.Missing),
				"total_cents": result.Quote.TotalCents,
			})
			logg.Info(ctx, "builder.quoted")
		}
		responses.WriteSuccess(w, newQuoteResponse(result, inFlight))
	}
}

// Catalog serves the option catalog, optionally narrowed to one family.
func Catalog() http.HandlerFunc {
	families := []string{
		string(buildersvc.FamilyBatterySingle),
		string(buildersvc.FamilyBatteryTwin),
		string(buildersvc.FamilyWelding),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		family, err := validators.ParseQueryChoice(r, "family", families)
		if err != nil {
			responses.WriteError(r.Context(), nil, w, err)
			return
		}

		view := buildersvc.Catalog()
		if family != "" {
			filtered := view.Families[:0]
			for _, f := range view.Families {
				if string(f.Family) == family {
					filtered = append(filtered, f)
				}
			}
			view.Families = filtered
		}
		responses.WriteSuccess(w, view)
	}
}
