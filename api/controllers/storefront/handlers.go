package storefront

import (
	"net/http"

	"github.com/offgriddoc/cablebuilder/api/responses"
	"github.com/offgriddoc/cablebuilder/api/validators"
	buildersvc "github.com/offgriddoc/cablebuilder/internal/builder"
	"github.com/offgriddoc/cablebuilder/internal/checkout"
	"github.com/offgriddoc/cablebuilder/internal/pricing"
	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
	"github.com/offgriddoc/cablebuilder/pkg/types"
)

const pricesLookupFailed = "prices_lookup_failed"

// Prices resolves live unit prices for the requested SKUs.
func Prices(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pricesLookupFailed, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload pricesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pricesLookupFailed, err)
			return
		}

		prices, err := svc.Resolve(r.Context(), payload.SKUs)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, pricesLookupFailed, err)
			return
		}

		out := pricesResponse{Prices: make(map[string]types.PriceEntry, len(prices))}
		for sku, price := range prices {
			out.Prices[sku] = types.NewPriceEntry(price)
		}
		responses.WriteJSON(w, http.StatusOK, out)
	}
}

// AddToCart creates a storefront cart and returns its checkout URL.
func AddToCart(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, "", pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload addToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, "", err)
			return
		}

		items := make([]buildersvc.LineItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, buildersvc.LineItem{
				SKU:        item.SKU,
				Quantity:   int64(item.Quantity),
				Properties: item.Properties,
			})
		}

		url, err := svc.CreateCheckout(r.Context(), items)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, "", err)
			return
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{"line_count": len(items)})
			logg.Info(ctx, "checkout.cart_created")
		}
		responses.WriteJSON(w, http.StatusOK, addToCartResponse{CheckoutURL: url})
	}
}

// ResolveSKUs maps SKUs to storefront variant ids.
func ResolveSKUs(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteStorefrontError(r.Context(), logg, w, "", pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload resolveSKUsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, "", err)
			return
		}

		results, err := svc.ResolveVariants(r.Context(), payload.SKUs)
		if err != nil {
			responses.WriteStorefrontError(r.Context(), logg, w, "", err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, resolveSKUsResponse{Results: results})
	}
}
