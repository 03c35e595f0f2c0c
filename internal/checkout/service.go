package checkout

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/offgriddoc/cablebuilder/internal/builder"
	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/offgriddoc/cablebuilder/pkg/shopify"
	"go.uber.org/multierr"
)

type variantResolver interface {
	VariantIDsBySKU(ctx context.Context, skus []string) (map[string][]string, error)
}

type cartCreator interface {
	CreateCart(ctx context.Context, lines []shopify.CartLine) (string, error)
}

// Service hands finished configurations to the storefront cart.
type Service interface {
	ResolveVariants(ctx context.Context, skus []string) (map[string]string, error)
	CreateCheckout(ctx context.Context, items []builder.LineItem) (string, error)
}

type service struct {
	variants variantResolver
	carts    cartCreator
}

// NewService builds a checkout service over the Shopify admin and storefront APIs.
func NewService(variants variantResolver, carts cartCreator) (Service, error) {
	if variants == nil {
		return nil, fmt.Errorf("variant resolver required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart creator required")
	}
	return &service{variants: variants, carts: carts}, nil
}

// ResolveVariants maps every SKU to a variant GID. Unknown SKUs fail the call
// with a VALIDATION_ERROR naming the first one; all of them are listed in details.
func (s *service) ResolveVariants(ctx context.Context, skus []string) (map[string]string, error) {
	ordered := uniqueSKUs(skus)
	if len(ordered) == 0 {
		return map[string]string{}, nil
	}

	found, err := s.variants.VariantIDsBySKU(ctx, ordered)
	if err != nil {
		return nil, err
	}

	results := make(map[string]string, len(ordered))
	var missing []string
	var errs error
	for _, sku := range ordered {
		ids := found[sku]
		if len(ids) == 0 {
			missing = append(missing, sku)
			errs = multierr.Append(errs, fmt.Errorf("SKU not found: %s", sku))
			continue
		}
		results[sku] = ids[0]
	}
	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "SKU not found: "+missing[0]).
			WithDetails(map[string]any{"skus": missing})
	}
	return results, nil
}

// CreateCheckout creates a cart for items and returns its checkout URL.
func (s *service) CreateCheckout(ctx context.Context, items []builder.LineItem) (string, error) {
	if len(items) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "items required")
	}
	var errs error
	for i, item := range items {
		if strings.TrimSpace(item.SKU) == "" {
			errs = multierr.Append(errs, fmt.Errorf("items[%d]: sku required", i))
		}
		if item.Quantity <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("items[%d]: quantity must be positive", i))
		}
	}
	if errs != nil {
		problems := make([]string, 0)
		for _, e := range multierr.Errors(errs) {
			problems = append(problems, e.Error())
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid cart items").
			WithDetails(map[string]any{"items": problems})
	}

	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}
	variantIDs, err := s.ResolveVariants(ctx, skus)
	if err != nil {
		return "", err
	}

	lines := make([]shopify.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, shopify.CartLine{
			MerchandiseID: variantIDs[strings.TrimSpace(item.SKU)],
			Quantity:      int(item.Quantity),
			Attributes:    attributes(item.Properties),
		})
	}
	return s.carts.CreateCart(ctx, lines)
}

func attributes(props map[string]string) []shopify.CartAttribute {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]shopify.CartAttribute, 0, len(keys))
	for _, k := range keys {
		out = append(out, shopify.CartAttribute{Key: k, Value: props[k]})
	}
	return out
}

func uniqueSKUs(skus []string) []string {
	seen := make(map[string]struct{}, len(skus))
	out := make([]string, 0, len(skus))
	for _, sku := range skus {
		trimmed := strings.TrimSpace(sku)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
