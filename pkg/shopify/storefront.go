package shopify

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
)

const cartCreateMutation = `mutation CartCreate($lines: [CartLineInput!]!) {
  cartCreate(input: { lines: $lines }) {
    cart { checkoutUrl }
    userErrors { field message }
  }
}`

// CartLine is one Storefront cart line.
type CartLine struct {
	MerchandiseID string          `json:"merchandiseId"`
	Quantity      int             `json:"quantity"`
	Attributes    []CartAttribute `json:"attributes"`
}

// CartAttribute is a key/value pair shown on the order for fulfilment.
type CartAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CreateCart creates a Storefront cart and returns its checkout URL. Cart errors
// reported by Shopify are VALIDATION_ERRORs carrying the user error messages.
func (c *Client) CreateCart(ctx context.Context, lines []CartLine) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "shopify client not configured")
	}
	if len(lines) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart requires at least one line")
	}
	for i := range lines {
		if lines[i].Attributes == nil {
			lines[i].Attributes = []CartAttribute{}
		}
	}

	var apiResp struct {
		Data struct {
			CartCreate *struct {
				Cart *struct {
					CheckoutURL string `json:"checkoutUrl"`
				} `json:"cart"`
				UserErrors []struct {
					Field   []string `json:"field"`
					Message string   `json:"message"`
				} `json:"userErrors"`
			} `json:"cartCreate"`
		} `json:"data"`
		Errors []graphQLError `json:"errors"`
	}
	body := graphQLRequest{
		Query:     cartCreateMutation,
		Variables: map[string]any{"lines": lines},
	}
	if err := c.postGraphQL(ctx, c.storefrontGraphQLURL(), storefrontTokenHeader, c.storefrontToken, "cart create", body, &apiResp); err != nil {
		return "", err
	}
	if err := graphQLErrorsToErr("cart create", apiResp.Errors); err != nil {
		return "", err
	}

	created := apiResp.Data.CartCreate
	if created == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "cart create returned no payload")
	}
	if len(created.UserErrors) > 0 {
		messages := make([]string, 0, len(created.UserErrors))
		for _, ue := range created.UserErrors {
			messages = append(messages, ue.Message)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, errors.New(strings.Join(messages, "; ")), "Cart create failed").
			WithDetails(map[string]any{"user_errors": messages})
	}
	if created.Cart == nil || strings.TrimSpace(created.Cart.CheckoutURL) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Cart create failed")
	}
	return created.Cart.CheckoutURL, nil
}
