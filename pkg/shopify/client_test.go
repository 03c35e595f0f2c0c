package shopify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/offgriddoc/cablebuilder/pkg/config"
	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(config.ShopifyConfig{
		ShopDomain:        "example.myshopify.com",
		AdminAccessToken:  "admin-token",
		StorefrontToken:   "storefront-token",
		RequestTimeout:    time.Second,
		VariantBatchLimit: 2,
	}, WithBaseURL(srv.URL))
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.ShopifyConfig{AdminAccessToken: "a", StorefrontToken: "b"})
	assert.ErrorIs(t, err, errShopDomainRequired)

	_, err = NewClient(config.ShopifyConfig{ShopDomain: "x", StorefrontToken: "b"})
	assert.ErrorIs(t, err, errAdminTokenRequired)

	_, err = NewClient(config.ShopifyConfig{ShopDomain: "x", AdminAccessToken: "a"})
	assert.ErrorIs(t, err, errStorefrontTokenRequired)
}

func TestVariantsBySKUFiltersToExactMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-10/variants.json", r.URL.Path)
		assert.Equal(t, "END-SB50", r.URL.Query().Get("sku"))
		assert.Equal(t, "admin-token", r.Header.Get(adminTokenHeader))
		_, _ = io.WriteString(w, `{"variants":[
			{"id": 11, "sku": "END-SB50", "price": "12.50"},
			{"id": 12, "sku": "END-SB50-RED", "price": "13.00"},
			{"id": 13, "sku": " END-SB50 ", "price": null}
		]}`)
	})

	variants, err := client.VariantsBySKU(context.Background(), " END-SB50 ")
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, "gid://shopify/ProductVariant/11", variants[0].ID)
	require.NotNil(t, variants[0].Price)
	assert.Equal(t, "12.5", variants[0].Price.String())
	assert.Nil(t, variants[1].Price)
}

func TestVariantsBySKUMapsAuthFailureToDependency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"errors":"Invalid API key"}`)
	})

	_, err := client.VariantsBySKU(context.Background(), "CABLE-Welding-50mm2-CM")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestSearchVariantsDecodesNodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2025-04/graphql.json", r.URL.Path)
		var body graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, `sku:"SLEEVE-4-CM"`, body.Variables["q"])
		assert.EqualValues(t, 10, body.Variables["first"])
		_, _ = io.WriteString(w, `{"data":{"productVariants":{"nodes":[{"id":"gid://shopify/ProductVariant/5","sku":"SLEEVE-4-CM","price":"0.08"}]}}}`)
	})

	variants, err := client.SearchVariants(context.Background(), SKUQuery("SLEEVE-4-CM"), 10)
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "0.08", variants[0].Price.String())
}

func TestSearchVariantsSurfacesGraphQLErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"errors":[{"message":"Throttled"}]}`)
	})

	_, err := client.SearchVariants(context.Background(), SKUQuery("X"), 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestVariantIDsBySKUBatchesQueries(t *testing.T) {
	var queries []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		q := body.Variables["q"].(string)
		queries = append(queries, q)
		if q == `sku:"C"` {
			_, _ = io.WriteString(w, `{"data":{"productVariants":{"nodes":[]}}}`)
			return
		}
		_, _ = io.WriteString(w, `{"data":{"productVariants":{"nodes":[
			{"id":"gid://shopify/ProductVariant/1","sku":"A","price":"1.00"},
			{"id":"gid://shopify/ProductVariant/2","sku":"B","price":"1.00"},
			{"id":"gid://shopify/ProductVariant/9","sku":"UNASKED","price":"1.00"}
		]}}}`)
	})

	ids, err := client.VariantIDsBySKU(context.Background(), []string{"A", "B", "A", "C"})
	require.NoError(t, err)
	assert.Equal(t, []string{`sku:"A" OR sku:"B"`, `sku:"C"`}, queries)
	assert.Equal(t, []string{"gid://shopify/ProductVariant/1"}, ids["A"])
	assert.Equal(t, []string{"gid://shopify/ProductVariant/2"}, ids["B"])
	assert.NotContains(t, ids, "UNASKED")
	assert.NotContains(t, ids, "C")
}

func TestCreateCartReturnsCheckoutURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/2025-04/graphql.json", r.URL.Path)
		assert.Equal(t, "storefront-token", r.Header.Get(storefrontTokenHeader))
		var body struct {
			Variables struct {
				Lines []CartLine `json:"lines"`
			} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Variables.Lines, 1)
		assert.Equal(t, 150, body.Variables.Lines[0].Quantity)
		assert.NotNil(t, body.Variables.Lines[0].Attributes)
		_, _ = io.WriteString(w, `{"data":{"cartCreate":{"cart":{"checkoutUrl":"https://shop/checkout/abc"},"userErrors":[]}}}`)
	})

	url, err := client.CreateCart(context.Background(), []CartLine{{MerchandiseID: "gid://shopify/ProductVariant/1", Quantity: 150}})
	require.NoError(t, err)
	assert.Equal(t, "https://shop/checkout/abc", url)
}

func TestCreateCartUserErrorsAreValidation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"cartCreate":{"cart":null,"userErrors":[{"field":["lines"],"message":"Quantity too large"}]}}}`)
	})

	_, err := client.CreateCart(context.Background(), []CartLine{{MerchandiseID: "gid://x", Quantity: 1}})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "Cart create failed", typed.Message())
}

func TestParsePriceVariants(t *testing.T) {
	assert.Nil(t, parsePrice(json.RawMessage(`null`)))
	assert.Nil(t, parsePrice(json.RawMessage(`"abc"`)))
	assert.Nil(t, parsePrice(nil))
	assert.Equal(t, "20", parsePrice(json.RawMessage(`"20.00"`)).String())
	assert.Equal(t, "0.2", parsePrice(json.RawMessage(`0.20`)).String())
}
