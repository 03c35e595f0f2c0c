package builder

import (
	"context"
	"fmt"
	"sync"

	"github.com/offgriddoc/cablebuilder/internal/pricing"
	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrSuperseded is returned by a cycle that finished after a newer cycle started.
var ErrSuperseded = pkgerrors.New(pkgerrors.CodeStateConflict, "configuration changed while pricing")

// PriceResolver resolves SKU prices for one cycle.
type PriceResolver interface {
	Resolve(ctx context.Context, skus []string) (pricing.Prices, error)
}

// Result is the outcome of one pricing cycle.
type Result struct {
	Generation    uint64         `json:"generation"`
	Configuration Configuration  `json:"configuration"`
	Adjustments   []Adjustment   `json:"adjustments,omitempty"`
	SKUs          []string       `json:"skus"`
	Prices        pricing.Prices `json:"-"`
	Quote         Quote          `json:"quote"`
	LineItems     []LineItem     `json:"line_items"`
}

// Pipeline runs derive, resolve and quote for successive configurations of one
// builder. Starting a cycle cancels the one in flight; a cycle that completes
// after a newer one started reports ErrSuperseded and is never published.
type Pipeline struct {
	resolver PriceResolver
	taxRate  decimal.Decimal

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	latest     *Result
}

func NewPipeline(resolver PriceResolver, taxRate decimal.Decimal) (*Pipeline, error) {
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate must not be negative")
	}
	return &Pipeline{resolver: resolver, taxRate: taxRate}, nil
}

// Run prices cfg. It blocks until the whole batch resolves.
func (p *Pipeline) Run(ctx context.Context, cfg Configuration) (*Result, error) {
	normalized, adjustments := Normalize(cfg)

	cycleCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.mu.Unlock()

	skus := NeededSKUs(normalized)
	prices, err := p.resolver.Resolve(cycleCtx, skus)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return nil, ErrSuperseded
	}
	p.cancel = nil
	if err != nil {
		return nil, err
	}

	result := &Result{
		Generation:    gen,
		Configuration: normalized,
		Adjustments:   adjustments,
		SKUs:          skus,
		Prices:        prices,
		Quote:         ComputeQuote(normalized, prices, p.taxRate),
		LineItems:     BuildLineItems(normalized),
	}
	p.latest = result
	return result, nil
}

// Latest returns the most recent published result.
func (p *Pipeline) Latest() (*Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.latest != nil
}

// InFlight reports whether a cycle is currently resolving.
func (p *Pipeline) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
