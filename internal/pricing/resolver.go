package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/offgriddoc/cablebuilder/pkg/logger"
	"github.com/offgriddoc/cablebuilder/pkg/metrics"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultFuzzyLimit    = 10
	defaultConcurrency   = 8
	defaultLookupTimeout = 30 * time.Second
)

// Prices maps a SKU to its resolved unit price; an invalid NullDecimal is an
// unresolved price, which is distinct from a zero price.
type Prices map[string]decimal.NullDecimal

// Service resolves SKU prices.
type Service interface {
	Resolve(ctx context.Context, skus []string) (Prices, error)
}

// ResolverParams wires a Resolver.
type ResolverParams struct {
	Catalog      Catalog
	Cache        *Cache
	Metrics      *metrics.PricingMetrics
	Logger       *logger.Logger
	FuzzyLimit   int
	Concurrency  int
	BatchTimeout time.Duration
}

// Resolver turns SKUs into prices using the cache first, then an exact catalog
// lookup, then a fuzzy search.
type Resolver struct {
	catalog      Catalog
	cache        *Cache
	metrics      *metrics.PricingMetrics
	logg         *logger.Logger
	fuzzyLimit   int
	concurrency  int
	batchTimeout time.Duration

	// lookupTimeout bounds a shared lookup, which outlives its callers' contexts.
	lookupTimeout time.Duration
	flight        singleflight.Group
}

func NewResolver(params ResolverParams) (*Resolver, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("price catalog required")
	}
	if params.Cache == nil {
		params.Cache = NewCache(DefaultCacheTTL)
	}
	if params.FuzzyLimit <= 0 {
		params.FuzzyLimit = defaultFuzzyLimit
	}
	if params.Concurrency <= 0 {
		params.Concurrency = defaultConcurrency
	}
	lookupTimeout := params.BatchTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	return &Resolver{
		catalog:       params.Catalog,
		cache:         params.Cache,
		metrics:       params.Metrics,
		logg:          params.Logger,
		fuzzyLimit:    params.FuzzyLimit,
		concurrency:   params.Concurrency,
		batchTimeout:  params.BatchTimeout,
		lookupTimeout: lookupTimeout,
	}, nil
}

// Resolve prices every requested SKU. A catalog that cannot be reached fails the
// whole batch with a DEPENDENCY_ERROR; SKUs the catalog does not know are returned
// unresolved. Every completed lookup is written back to the cache, including
// one that finishes after ctx was canceled.
func (r *Resolver) Resolve(ctx context.Context, skus []string) (Prices, error) {
	wanted := NormalizeSKUs(skus)
	result := make(Prices, len(wanted))
	if len(wanted) == 0 {
		return result, nil
	}

	start := time.Now()
	var misses []string
	for _, sku := range wanted {
		if price, ok := r.cache.Get(sku); ok {
			r.metrics.CacheHit()
			result[sku] = price
			continue
		}
		r.metrics.CacheMiss()
		misses = append(misses, sku)
	}

	if len(misses) == 0 {
		r.metrics.ObserveBatch(time.Since(start), nil)
		return result, nil
	}

	batchCtx := ctx
	if r.batchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, r.batchTimeout)
		defer cancel()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(r.concurrency)
	for _, sku := range misses {
		sku := sku
		g.Go(func() error {
			price, err := r.resolveOne(gctx, sku)
			if err != nil {
				return err
			}
			mu.Lock()
			result[sku] = price
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	r.metrics.ObserveBatch(time.Since(start), err)
	if err != nil {
		err = batchError(ctx, err)
		if r.logg != nil {
			logCtx := r.logg.WithFields(ctx, map[string]any{"skus": misses, "cache_hits": len(wanted) - len(misses)})
			r.logg.Error(logCtx, "pricing.resolve_failed", err)
		}
		return nil, err
	}

	if r.logg != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"requested":   len(wanted),
			"cache_hits":  len(wanted) - len(misses),
			"resolved":    countResolved(result),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		r.logg.Info(logCtx, "pricing.resolved")
	}
	return result, nil
}

// resolveOne collapses concurrent requests for the same SKU into one upstream
// lookup. The shared lookup runs detached from any single caller so a caller
// that gives up cannot fail the others; each caller only waits on its own ctx.
func (r *Resolver) resolveOne(ctx context.Context, sku string) (decimal.NullDecimal, error) {
	ch := r.flight.DoChan(sku, func() (any, error) {
		if price, ok := r.cache.Get(sku); ok {
			return price, nil
		}
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.lookupTimeout)
		defer cancel()
		price, err := r.lookup(lookupCtx, sku)
		if err != nil {
			return nil, err
		}
		r.cache.Put(sku, price)
		return price, nil
	})

	select {
	case <-ctx.Done():
		return decimal.NullDecimal{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return decimal.NullDecimal{}, res.Err
		}
		return res.Val.(decimal.NullDecimal), nil
	}
}

func (r *Resolver) lookup(ctx context.Context, sku string) (decimal.NullDecimal, error) {
	exact, err := r.catalog.LookupExact(ctx, sku)
	if err != nil {
		r.metrics.Lookup(metrics.PassExact, metrics.OutcomeUpstream)
		return decimal.NullDecimal{}, err
	}
	switch {
	case len(exact) > 1:
		r.metrics.Lookup(metrics.PassExact, metrics.OutcomeAmbiguous)
	case len(exact) == 1:
		if price, ok := acceptExact(exact[0]); ok {
			r.metrics.Lookup(metrics.PassExact, metrics.OutcomeResolved)
			return price, nil
		}
		r.metrics.Lookup(metrics.PassExact, metrics.OutcomeRejected)
	default:
		r.metrics.Lookup(metrics.PassExact, metrics.OutcomeNotFound)
	}

	fuzzy, err := r.catalog.SearchFuzzy(ctx, sku, r.fuzzyLimit)
	if err != nil {
		r.metrics.Lookup(metrics.PassFuzzy, metrics.OutcomeUpstream)
		return decimal.NullDecimal{}, err
	}
	switch {
	case len(fuzzy) > 1:
		r.metrics.Lookup(metrics.PassFuzzy, metrics.OutcomeAmbiguous)
	case len(fuzzy) == 1:
		if price, ok := acceptFuzzy(fuzzy[0]); ok {
			r.metrics.Lookup(metrics.PassFuzzy, metrics.OutcomeResolved)
			return price, nil
		}
		r.metrics.Lookup(metrics.PassFuzzy, metrics.OutcomeRejected)
	default:
		r.metrics.Lookup(metrics.PassFuzzy, metrics.OutcomeNotFound)
	}
	return decimal.NullDecimal{}, nil
}

// acceptExact takes any non-negative price; zero is a free part.
func acceptExact(m Match) (decimal.NullDecimal, bool) {
	if m.Price == nil || m.Price.IsNegative() {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(*m.Price), true
}

// acceptFuzzy requires a strictly positive price.
func acceptFuzzy(m Match) (decimal.NullDecimal, bool) {
	if m.Price == nil || !m.Price.IsPositive() {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(*m.Price), true
}

func batchError(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "price lookup canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price lookup timed out")
	case pkgerrors.As(err) != nil:
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price lookup failed")
}

// NormalizeSKUs trims, drops empties and de-duplicates while keeping first-seen order.
func NormalizeSKUs(skus []string) []string {
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

// Missing lists the requested SKUs that have no resolved price, sorted.
func (p Prices) Missing(skus []string) []string {
	var missing []string
	for _, sku := range NormalizeSKUs(skus) {
		if price, ok := p[sku]; !ok || !price.Valid {
			missing = append(missing, sku)
		}
	}
	sort.Strings(missing)
	return missing
}

func countResolved(p Prices) int {
	n := 0
	for _, price := range p {
		if price.Valid {
			n++
		}
	}
	return n
}
