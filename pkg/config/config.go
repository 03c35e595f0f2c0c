package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "CABLEBUILDER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                = "CABLEBUILDER_APP_ENV"
	EnvPort                  = "CABLEBUILDER_APP_PORT"
	EnvRedisURL              = "CABLEBUILDER_REDIS_URL"
	EnvShopDomain            = "CABLEBUILDER_SHOP_DOMAIN"
	EnvShopifyAdminToken     = "CABLEBUILDER_SHOPIFY_ADMIN_ACCESS_TOKEN"
	EnvShopifyStorefrontTok  = "CABLEBUILDER_SHOPIFY_STOREFRONT_TOKEN"
	EnvPricingCacheTTL       = "CABLEBUILDER_PRICING_CACHE_TTL"
	EnvPricingTaxRate        = "CABLEBUILDER_PRICING_TAX_RATE"
	EnvHTTPAllowedOrigins    = "CABLEBUILDER_HTTP_ALLOWED_ORIGINS"
	EnvHTTPFrameAncestors    = "CABLEBUILDER_HTTP_FRAME_ANCESTORS"
	EnvPricingFuzzyLimit     = "CABLEBUILDER_PRICING_FUZZY_LIMIT"
	EnvPricingSessionIdleTTL = "CABLEBUILDER_PRICING_SESSION_IDLE_TTL"
)

type Config struct {
	App     AppConfig
	Redis   RedisConfig
	Shopify ShopifyConfig
	Pricing PricingConfig
	HTTP    HTTPConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	cfg.Shopify.ShopDomain = normalizeDomain(cfg.Shopify.ShopDomain)
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("%s is required", EnvShopDomain)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CABLEBUILDER_APP_ENV" required:"true"`
	Port         string `envconfig:"CABLEBUILDER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CABLEBUILDER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CABLEBUILDER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RedisConfig is optional; an empty URL and address disables idempotent checkout replay.
type RedisConfig struct {
	URL          string        `envconfig:"CABLEBUILDER_REDIS_URL"`
	Address      string        `envconfig:"CABLEBUILDER_REDIS_ADDR"`
	Password     string        `envconfig:"CABLEBUILDER_REDIS_PASSWORD"`
	DB           int           `envconfig:"CABLEBUILDER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CABLEBUILDER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CABLEBUILDER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CABLEBUILDER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CABLEBUILDER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CABLEBUILDER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type ShopifyConfig struct {
	ShopDomain        string        `envconfig:"CABLEBUILDER_SHOP_DOMAIN" required:"true"`
	AdminAccessToken  string        `envconfig:"CABLEBUILDER_SHOPIFY_ADMIN_ACCESS_TOKEN" required:"true"`
	StorefrontToken   string        `envconfig:"CABLEBUILDER_SHOPIFY_STOREFRONT_TOKEN" required:"true"`
	AdminRESTVersion  string        `envconfig:"CABLEBUILDER_SHOPIFY_ADMIN_REST_VERSION" default:"2024-10"`
	GraphQLVersion    string        `envconfig:"CABLEBUILDER_SHOPIFY_GRAPHQL_VERSION" default:"2025-04"`
	RequestTimeout    time.Duration `envconfig:"CABLEBUILDER_SHOPIFY_REQUEST_TIMEOUT" default:"8s"`
	VariantBatchLimit int           `envconfig:"CABLEBUILDER_SHOPIFY_VARIANT_BATCH_LIMIT" default:"100"`
}

type PricingConfig struct {
	CacheTTL       time.Duration `envconfig:"CABLEBUILDER_PRICING_CACHE_TTL" default:"5m"`
	TaxRate        string        `envconfig:"CABLEBUILDER_PRICING_TAX_RATE" default:"0.10"`
	FuzzyLimit     int           `envconfig:"CABLEBUILDER_PRICING_FUZZY_LIMIT" default:"10"`
	Concurrency    int           `envconfig:"CABLEBUILDER_PRICING_CONCURRENCY" default:"8"`
	BatchTimeout   time.Duration `envconfig:"CABLEBUILDER_PRICING_BATCH_TIMEOUT" default:"10s"`
	SessionIdleTTL time.Duration `envconfig:"CABLEBUILDER_PRICING_SESSION_IDLE_TTL" default:"30m"`
}

// Tax returns the configured GST rate as a decimal.
func (p PricingConfig) Tax() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

func (p PricingConfig) validate() error {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.TaxRate))
	if err != nil {
		return fmt.Errorf("%s must be a decimal: %w", EnvPricingTaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be within [0, 1)", EnvPricingTaxRate)
	}
	if p.CacheTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingCacheTTL)
	}
	if p.FuzzyLimit <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingFuzzyLimit)
	}
	if p.SessionIdleTTL <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingSessionIdleTTL)
	}
	return nil
}

type HTTPConfig struct {
	AllowedOrigins []string `envconfig:"CABLEBUILDER_HTTP_ALLOWED_ORIGINS" default:"*"`
	FrameAncestors []string `envconfig:"CABLEBUILDER_HTTP_FRAME_ANCESTORS" default:"'self',https://*.myshopify.com,https://*.shopify.com,https://admin.shopify.com,https://*.shop.app,https://offgriddoc.com.au,https://www.offgriddoc.com.au"`
}

func normalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}
