package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Shopify.ShopDomain != "example.myshopify.com" {
		t.Fatalf("expected normalized shop domain, got %q", cfg.Shopify.ShopDomain)
	}
	if got := cfg.Pricing.CacheTTL; got != 5*time.Minute {
		t.Fatalf("expected cache ttl 5m, got %v", got)
	}
	if !cfg.Pricing.Tax().Equal(decimal.RequireFromString("0.10")) {
		t.Fatalf("expected tax rate 0.10, got %s", cfg.Pricing.Tax())
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("expected redis disabled without url")
	}
	if len(cfg.HTTP.FrameAncestors) != 7 {
		t.Fatalf("expected default frame ancestors, got %v", cfg.HTTP.FrameAncestors)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsBadTaxRate(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPricingTaxRate, "ten percent")

	if _, err := Load(); err == nil {
		t.Fatal("expected non-decimal tax rate to fail")
	}

	t.Setenv(EnvPricingTaxRate, "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected out of range tax rate to fail")
	}
}

func TestLoad_RedisEnabledWithURL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Redis.Enabled() {
		t.Fatalf("expected redis enabled")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvShopDomain, "https://example.myshopify.com/")
	t.Setenv(EnvShopifyAdminToken, "shpat_test")
	t.Setenv(EnvShopifyStorefrontTok, "storefront_test")
	t.Setenv(EnvRedisURL, "")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
