package builder

import "strconv"

// LineItem is one cart entry handed to checkout.
type LineItem struct {
	SKU        string            `json:"sku"`
	Quantity   int64             `json:"quantity"`
	Properties map[string]string `json:"properties,omitempty"`
}

// BuildLineItems turns cfg into ordered cart lines. Twin cable becomes two
// full-length lines told apart by the _core attribute.
func BuildLineItems(cfg Configuration) []LineItem {
	lengthCm := cfg.LengthCm()
	paired := cfg.Paired()
	cableSKU := CableSKU(cfg.Family, cfg.Gauge)

	cableProps := func() map[string]string {
		return map[string]string{
			"_family":    string(cfg.Family),
			"_gauge":     cfg.Gauge,
			"_length_m":  strconv.FormatFloat(cfg.SafeLengthM(), 'f', 2, 64),
			"_pair_mode": yesNo(paired),
			"_label_a":   cfg.LabelA,
			"_label_b":   cfg.LabelB,
		}
	}

	items := make([]LineItem, 0, 6)
	if paired {
		for _, core := range []string{"red", "black"} {
			props := cableProps()
			props["_core"] = core
			items = append(items, LineItem{SKU: cableSKU, Quantity: lengthCm, Properties: props})
		}
	} else {
		items = append(items, LineItem{SKU: cableSKU, Quantity: lengthCm, Properties: cableProps()})
	}

	endUnits := cfg.multiplier()
	if !cfg.EndA.Empty() {
		items = append(items, LineItem{SKU: EndSKU(cfg.EndA.VariantID), Quantity: endUnits, Properties: map[string]string{"position": "A"}})
	}
	if !cfg.EndB.Empty() {
		items = append(items, LineItem{SKU: EndSKU(cfg.EndB.VariantID), Quantity: endUnits, Properties: map[string]string{"position": "B"}})
	}
	if cfg.Sleeve {
		items = append(items, LineItem{SKU: SleeveSKU(cfg.Gauge), Quantity: lengthCm * cfg.multiplier()})
	}
	if cfg.Insulators {
		items = append(items, LineItem{SKU: InsulatorSKU, Quantity: insulatorCount(cfg)})
	}
	return items
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
