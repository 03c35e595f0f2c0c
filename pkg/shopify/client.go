package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/offgriddoc/cablebuilder/pkg/config"
	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultRESTVersion          = "2024-10"
	defaultGraphQLVersion       = "2025-04"
	defaultVariantBatchLimit    = 100
	responseBodyReadLimit int64 = 1024

	adminTokenHeader      = "X-Shopify-Access-Token"
	storefrontTokenHeader = "X-Shopify-Storefront-Access-Token"
)

var (
	errShopDomainRequired      = errors.New("shopify shop domain is required")
	errAdminTokenRequired      = errors.New("shopify admin access token is required")
	errStorefrontTokenRequired = errors.New("shopify storefront token is required")
)

// Client talks to the Shopify Admin REST, Admin GraphQL and Storefront GraphQL APIs.
type Client struct {
	httpClient        *http.Client
	baseURL           string
	adminToken        string
	storefrontToken   string
	restVersion       string
	graphQLVersion    string
	variantBatchLimit int
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the shop origin (scheme and host), mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Shopify client from configuration.
func NewClient(cfg config.ShopifyConfig, opts ...Option) (*Client, error) {
	domain := strings.TrimSpace(cfg.ShopDomain)
	if domain == "" {
		return nil, errShopDomainRequired
	}
	adminToken := strings.TrimSpace(cfg.AdminAccessToken)
	if adminToken == "" {
		return nil, errAdminTokenRequired
	}
	storefrontToken := strings.TrimSpace(cfg.StorefrontToken)
	if storefrontToken == "" {
		return nil, errStorefrontTokenRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:        &http.Client{Timeout: timeout},
		baseURL:           "https://" + domain,
		adminToken:        adminToken,
		storefrontToken:   storefrontToken,
		restVersion:       firstNonEmpty(cfg.AdminRESTVersion, defaultRESTVersion),
		graphQLVersion:    firstNonEmpty(cfg.GraphQLVersion, defaultGraphQLVersion),
		variantBatchLimit: cfg.VariantBatchLimit,
	}
	if client.variantBatchLimit <= 0 {
		client.variantBatchLimit = defaultVariantBatchLimit
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Variant is the normalized shape of a product variant from any Shopify dialect.
// Price is nil when the upstream record carries no parseable price.
type Variant struct {
	ID    string
	SKU   string
	Price *decimal.Decimal
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *Client) adminRESTURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.restVersion, strings.TrimLeft(path, "/"))
}

func (c *Client) adminGraphQLURL() string {
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.graphQLVersion)
}

func (c *Client) storefrontGraphQLURL() string {
	return fmt.Sprintf("%s/api/%s/graphql.json", c.baseURL, c.graphQLVersion)
}

// doJSON executes the request and decodes a 2xx JSON body into dest. Every
// transport, status or decode failure is a DEPENDENCY_ERROR.
func (c *Client) doJSON(req *http.Request, op string, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, statusErr, op+" request rejected credentials")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, statusErr, op+" request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}

func (c *Client) postGraphQL(ctx context.Context, url, tokenHeader, token, op string, body graphQLRequest, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal "+op+" request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, token)

	return c.doJSON(req, op, dest)
}

func graphQLErrorsToErr(op string, errs []graphQLError) error {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New(strings.Join(messages, "; ")), op+" returned errors")
}

// parsePrice accepts the string or number representations Shopify uses for money.
func parsePrice(raw json.RawMessage) *decimal.Decimal {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		trimmed = strings.TrimSpace(asString)
	}
	if trimmed == "" {
		return nil
	}
	price, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil
	}
	return &price
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
