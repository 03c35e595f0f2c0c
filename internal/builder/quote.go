package builder

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the GST rate applied when none is configured.
var DefaultTaxRate = decimal.New(10, -2)

var hundred = decimal.NewFromInt(100)

// Quote is a priced configuration in integer cents.
type Quote struct {
	BaseCableCents  int64    `json:"base_cable_cents"`
	EndsCents       int64    `json:"ends_cents"`
	SleeveCents     int64    `json:"sleeve_cents"`
	InsulatorsCents int64    `json:"insulators_cents"`
	SubtotalCents   int64    `json:"subtotal_cents"`
	TaxCents        int64    `json:"tax_cents"`
	TotalCents      int64    `json:"total_cents"`
	Missing         []string `json:"missing"`
}

// CheckoutBlocked reports whether any needed SKU is unpriced.
func (q Quote) CheckoutBlocked() bool {
	return len(q.Missing) > 0
}

// ComputeQuote prices cfg from prices. Each component is rounded to cents on its
// own before summing; tax is the rounded product of the subtotal and taxRate.
// A needed SKU without a usable price is listed in Missing and contributes zero.
func ComputeQuote(cfg Configuration, prices map[string]decimal.NullDecimal, taxRate decimal.Decimal) Quote {
	q := Quote{Missing: []string{}}
	missing := map[string]struct{}{}
	lookup := func(sku string) decimal.Decimal {
		p, ok := prices[sku]
		if !ok || !p.Valid || p.Decimal.IsNegative() {
			if _, seen := missing[sku]; !seen {
				missing[sku] = struct{}{}
				q.Missing = append(q.Missing, sku)
			}
			return decimal.Zero
		}
		return p.Decimal
	}

	lengthCm := decimal.NewFromInt(cfg.LengthCm())
	mult := decimal.NewFromInt(cfg.multiplier())

	perCm := lookup(CableSKU(cfg.Family, cfg.Gauge))
	q.BaseCableCents = toCents(perCm.Mul(lengthCm).Mul(mult))

	ends := decimal.Zero
	if !cfg.EndA.Empty() {
		ends = ends.Add(lookup(EndSKU(cfg.EndA.VariantID)))
	}
	if !cfg.EndB.Empty() {
		ends = ends.Add(lookup(EndSKU(cfg.EndB.VariantID)))
	}
	q.EndsCents = toCents(ends.Mul(mult))

	if cfg.Sleeve {
		q.SleeveCents = toCents(lookup(SleeveSKU(cfg.Gauge)).Mul(lengthCm).Mul(mult))
	}
	if cfg.Insulators {
		q.InsulatorsCents = toCents(lookup(InsulatorSKU).Mul(decimal.NewFromInt(insulatorCount(cfg))))
	}

	q.SubtotalCents = q.BaseCableCents + q.EndsCents + q.SleeveCents + q.InsulatorsCents
	q.TaxCents = decimal.NewFromInt(q.SubtotalCents).Mul(taxRate).Round(0).IntPart()
	q.TotalCents = q.SubtotalCents + q.TaxCents
	return q
}

// toCents rounds a dollar amount half-up to whole cents. Operands are never negative.
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func insulatorCount(cfg Configuration) int64 {
	if cfg.Paired() {
		return 4
	}
	return 2
}
