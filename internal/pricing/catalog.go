package pricing

import (
	"context"

	"github.com/offgriddoc/cablebuilder/pkg/shopify"
	"github.com/shopspring/decimal"
)

// Match is one catalog record surfaced for a SKU. Price is nil when the record
// carries no usable price.
type Match struct {
	SKU       string
	VariantID string
	Price     *decimal.Decimal
}

// Catalog is the upstream capability the resolver needs. Implementations return
// a DEPENDENCY_ERROR when the catalog cannot be reached; an empty slice means the
// catalog answered and knows nothing about the SKU.
type Catalog interface {
	LookupExact(ctx context.Context, sku string) ([]Match, error)
	SearchFuzzy(ctx context.Context, sku string, limit int) ([]Match, error)
}

type variantLookup interface {
	VariantsBySKU(ctx context.Context, sku string) ([]shopify.Variant, error)
}

type variantSearch interface {
	SearchVariants(ctx context.Context, query string, first int) ([]shopify.Variant, error)
}

// ShopifyCatalog adapts the Admin REST exact lookup and the Admin GraphQL search
// into a Catalog.
type ShopifyCatalog struct {
	rest    variantLookup
	graphql variantSearch
}

// NewShopifyCatalog wires both Shopify dialects; the same client usually serves both.
func NewShopifyCatalog(rest variantLookup, graphql variantSearch) *ShopifyCatalog {
	return &ShopifyCatalog{rest: rest, graphql: graphql}
}

func (c *ShopifyCatalog) LookupExact(ctx context.Context, sku string) ([]Match, error) {
	variants, err := c.rest.VariantsBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return matchesFromVariants(variants), nil
}

func (c *ShopifyCatalog) SearchFuzzy(ctx context.Context, sku string, limit int) ([]Match, error) {
	variants, err := c.graphql.SearchVariants(ctx, shopify.SKUQuery(sku), limit)
	if err != nil {
		return nil, err
	}
	return matchesFromVariants(variants), nil
}

func matchesFromVariants(variants []shopify.Variant) []Match {
	matches := make([]Match, 0, len(variants))
	for _, v := range variants {
		matches = append(matches, Match{SKU: v.SKU, VariantID: v.ID, Price: v.Price})
	}
	return matches
}
