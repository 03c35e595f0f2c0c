package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	buildersvc "github.com/offgriddoc/cablebuilder/internal/builder"
	"github.com/offgriddoc/cablebuilder/internal/pricing"
	"github.com/offgriddoc/cablebuilder/pkg/config"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

type stubPricing struct{}

func (stubPricing) Resolve(_ context.Context, skus []string) (pricing.Prices, error) {
	out := pricing.Prices{}
	for _, sku := range skus {
		out[sku] = decimal.NewNullDecimal(decimal.RequireFromString("0.20"))
	}
	return out, nil
}

type stubCheckout struct{}

func (stubCheckout) ResolveVariants(_ context.Context, skus []string) (map[string]string, error) {
	out := map[string]string{}
	for _, sku := range skus {
		out[sku] = "gid://shopify/ProductVariant/1"
	}
	return out, nil
}

func (stubCheckout) CreateCheckout(context.Context, []buildersvc.LineItem) (string, error) {
	return "https://shop.example/cart/c/1", nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		HTTP: config.HTTPConfig{
			AllowedOrigins: []string{"*"},
			FrameAncestors: []string{"'self'", "https://*.myshopify.com"},
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	sessions, err := buildersvc.NewSessions(stubPricing{}, buildersvc.DefaultTaxRate, time.Minute)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(testConfig(), logg, nil, stubPricing{}, stubCheckout{}, sessions, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"live", http.MethodGet, "/health/live", "", http.StatusOK},
		{"ready", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"catalog", http.MethodGet, "/api/v1/catalog", "", http.StatusOK},
		{"prices", http.MethodPost, "/api/prices", `{"skus":["A"]}`, http.StatusOK},
		{"resolve skus", http.MethodPost, "/api/resolve-skus", `{"skus":["A"]}`, http.StatusOK},
		{"add to cart", http.MethodPost, "/api/add-to-cart", `{"items":[{"sku":"A","quantity":1}]}`, http.StatusOK},
		{"quote", http.MethodPost, "/api/v1/quote", `{"family":"BatterySingle","gauge":"4"}`, http.StatusOK},
		{"unknown", http.MethodGet, "/api/v1/orders", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.want {
				t.Fatalf("expected %d got %d: %s", tt.want, resp.Code, resp.Body.String())
			}
			if resp.Header().Get("Content-Security-Policy") != "frame-ancestors 'self' https://*.myshopify.com" {
				t.Fatalf("missing csp header")
			}
			if resp.Header().Get("X-Request-Id") == "" {
				t.Fatalf("missing request id")
			}
		})
	}
}

func TestRouterPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/add-to-cart", nil)
	req.Header.Set("Origin", "https://offgriddoc.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS headers on preflight")
	}
}
