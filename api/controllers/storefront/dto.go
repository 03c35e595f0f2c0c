package storefront

import "github.com/offgriddoc/cablebuilder/pkg/types"

type pricesRequest struct {
	SKUs []string `json:"skus" validate:"max=250,dive,max=255"`
}

type pricesResponse struct {
	Prices map[string]types.PriceEntry `json:"prices"`
}

type cartItem struct {
	SKU        string            `json:"sku" validate:"required,max=255"`
	Quantity   int               `json:"quantity" validate:"gt=0"`
	Properties map[string]string `json:"properties,omitempty"`
}

type addToCartRequest struct {
	Items []cartItem `json:"items" validate:"required,min=1,max=100,dive"`
}

type addToCartResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

type resolveSKUsRequest struct {
	SKUs []string `json:"skus" validate:"required,min=1,max=250,dive,required"`
}

type resolveSKUsResponse struct {
	Results map[string]string `json:"results"`
}
