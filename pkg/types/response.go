package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// StorefrontError is the flat error body the storefront builder expects from the
// prices and add-to-cart endpoints.
type StorefrontError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PriceEntry is one SKU's unit price on the wire; a nil Price encodes as null.
type PriceEntry struct {
	Price *json.Number `json:"price"`
}

// NewPriceEntry converts a resolved price, keeping the exact decimal digits.
func NewPriceEntry(price decimal.NullDecimal) PriceEntry {
	if !price.Valid {
		return PriceEntry{}
	}
	n := json.Number(price.Decimal.String())
	return PriceEntry{Price: &n}
}
