package builder

import (
	"github.com/offgriddoc/cablebuilder/api/validators"
	buildersvc "github.com/offgriddoc/cablebuilder/internal/builder"
	"github.com/offgriddoc/cablebuilder/pkg/types"
)

const maxLabelLen = 64

type endChoice struct {
	Type      string `json:"type" validate:"omitempty,oneof=Lug Anderson BatteryClamp Bare"`
	VariantID string `json:"variant_id" validate:"max=64"`
}

// QuoteRequest is the configuration posted by the builder page.
type QuoteRequest struct {
	Family     string    `json:"family" validate:"required,oneof=BatterySingle BatteryTwin Welding"`
	Gauge      string    `json:"gauge" validate:"required,max=16"`
	LengthM    float64   `json:"length_m"`
	PairMode   *bool     `json:"pair_mode"`
	EndA       endChoice `json:"end_a"`
	EndB       endChoice `json:"end_b"`
	Sleeve     bool      `json:"sleeve"`
	Insulators bool      `json:"insulators"`
	LabelA     string    `json:"label_a"`
	LabelB     string    `json:"label_b"`
}

func (q QuoteRequest) toConfiguration() buildersvc.Configuration {
	return buildersvc.Configuration{
		Family:     buildersvc.Family(q.Family),
		Gauge:      q.Gauge,
		LengthM:    q.LengthM,
		PairMode:   q.PairMode,
		EndA:       buildersvc.EndChoice{Type: buildersvc.EndType(q.EndA.Type), VariantID: q.EndA.VariantID},
		EndB:       buildersvc.EndChoice{Type: buildersvc.EndType(q.EndB.Type), VariantID: q.EndB.VariantID},
		Sleeve:     q.Sleeve,
		Insulators: q.Insulators,
		LabelA:     validators.SanitizeString(q.LabelA, maxLabelLen),
		LabelB:     validators.SanitizeString(q.LabelB, maxLabelLen),
	}
}

// QuoteResponse is a priced configuration ready for checkout.
type QuoteResponse struct {
	Generation      uint64                      `json:"generation"`
	Configuration   buildersvc.Configuration    `json:"configuration"`
	Adjustments     []buildersvc.Adjustment     `json:"adjustments"`
	SKUs            []string                    `json:"skus"`
	Prices          map[string]types.PriceEntry `json:"prices"`
	Quote           buildersvc.Quote            `json:"quote"`
	Missing         []string                    `json:"missing"`
	CheckoutBlocked bool                        `json:"checkout_blocked"`
	LineItems       []buildersvc.LineItem       `json:"line_items"`
}

func newQuoteResponse(result *buildersvc.Result, inFlight bool) QuoteResponse {
	prices := make(map[string]types.PriceEntry, len(result.SKUs))
	for _, sku := range result.SKUs {
		prices[sku] = types.NewPriceEntry(result.Prices[sku])
	}
	adjustments := result.Adjustments
	if adjustments == nil {
		adjustments = []buildersvc.Adjustment{}
	}
	return QuoteResponse{
		Generation:      result.Generation,
		Configuration:   result.Configuration,
		Adjustments:     adjustments,
		SKUs:            result.SKUs,
		Prices:          prices,
		Quote:           result.Quote,
		Missing:         result.Quote.Missing,
		CheckoutBlocked: result.Quote.CheckoutBlocked() || inFlight,
		LineItems:       result.LineItems,
	}
}
