package shopify

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
)

const searchVariantsQuery = `query SearchVariants($q: String!, $first: Int!) {
  productVariants(first: $first, query: $q) {
    nodes { id sku price }
  }
}`

// SKUQuery renders the Shopify search syntax for one literal SKU.
func SKUQuery(sku string) string {
	return "sku:" + strconv.Quote(strings.TrimSpace(sku))
}

// SKUsQuery ORs several literal SKU terms into one search string.
func SKUsQuery(skus []string) string {
	terms := make([]string, 0, len(skus))
	for _, sku := range skus {
		terms = append(terms, SKUQuery(sku))
	}
	return strings.Join(terms, " OR ")
}

// SearchVariants runs the Admin GraphQL product variant search and returns at most
// first nodes exactly as the search ranked them.
func (c *Client) SearchVariants(ctx context.Context, query string, first int) ([]Variant, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	if first <= 0 {
		first = 1
	}
	if first > 250 {
		first = 250
	}

	var apiResp struct {
		Data struct {
			ProductVariants struct {
				Nodes []struct {
					ID    string          `json:"id"`
					SKU   *string         `json:"sku"`
					Price json.RawMessage `json:"price"`
				} `json:"nodes"`
			} `json:"productVariants"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	body := graphQLRequest{
		Query:     searchVariantsQuery,
		Variables: map[string]any{"q": query, "first": first},
	}
	if err := c.postGraphQL(ctx, c.adminGraphQLURL(), adminTokenHeader, c.adminToken, "variant search", body, &apiResp); err != nil {
		return nil, err
	}
	if err := graphQLErrorsToErr("variant search", apiResp.Errors); err != nil {
		return nil, err
	}

	nodes := apiResp.Data.ProductVariants.Nodes
	variants := make([]Variant, 0, len(nodes))
	for _, n := range nodes {
		sku := ""
		if n.SKU != nil {
			sku = strings.TrimSpace(*n.SKU)
		}
		variants = append(variants, Variant{
			ID:    n.ID,
			SKU:   sku,
			Price: parsePrice(n.Price),
		})
	}
	return variants, nil
}

// VariantIDsBySKU maps each requested SKU to the variant ids whose SKU matches it
// exactly, querying in batches of the configured limit. SKUs with no match are
// absent from the result.
func (c *Client) VariantIDsBySKU(ctx context.Context, skus []string) (map[string][]string, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	wanted := map[string]struct{}{}
	ordered := make([]string, 0, len(skus))
	for _, sku := range skus {
		trimmed := strings.TrimSpace(sku)
		if trimmed == "" {
			continue
		}
		if _, ok := wanted[trimmed]; ok {
			continue
		}
		wanted[trimmed] = struct{}{}
		ordered = append(ordered, trimmed)
	}

	out := make(map[string][]string, len(ordered))
	for start := 0; start < len(ordered); start += c.variantBatchLimit {
		end := start + c.variantBatchLimit
		if end > len(ordered) {
			end = len(ordered)
		}
		chunk := ordered[start:end]
		variants, err := c.SearchVariants(ctx, SKUsQuery(chunk), c.variantBatchLimit)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			if _, ok := wanted[v.SKU]; !ok || v.ID == "" {
				continue
			}
			out[v.SKU] = append(out[v.SKU], v.ID)
		}
	}
	return out, nil
}
