package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
)

const variantGIDPrefix = "gid://shopify/ProductVariant/"

// VariantsBySKU lists the variants whose SKU equals sku exactly. The REST filter
// is not trusted on its own, so records are re-checked against the literal value.
func (c *Client) VariantsBySKU(ctx context.Context, sku string) ([]Variant, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	trimmed := strings.TrimSpace(sku)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}

	query := url.Values{}
	query.Set("limit", "250")
	query.Set("fields", "id,sku,price")
	query.Set("sku", trimmed)
	endpoint := c.adminRESTURL("variants.json") + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build variant lookup request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminTokenHeader, c.adminToken)

	var apiResp struct {
		Variants []struct {
			ID    json.Number     `json:"id"`
			SKU   *string         `json:"sku"`
			Price json.RawMessage `json:"price"`
		} `json:"variants"`
	}
	if err := c.doJSON(req, "variant lookup", &apiResp); err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(apiResp.Variants))
	for _, v := range apiResp.Variants {
		if v.SKU == nil || strings.TrimSpace(*v.SKU) != trimmed {
			continue
		}
		variants = append(variants, Variant{
			ID:    restVariantGID(v.ID.String()),
			SKU:   trimmed,
			Price: parsePrice(v.Price),
		})
	}
	return variants, nil
}

func restVariantGID(id string) string {
	if id == "" || strings.HasPrefix(id, "gid://") {
		return id
	}
	return fmt.Sprintf("%s%s", variantGIDPrefix, id)
}
