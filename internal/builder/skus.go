package builder

import "strings"

// InsulatorSKU is the single insulator boot product.
const InsulatorSKU = "INSULATOR-LUG-BOOT"

func CableSKU(family Family, gauge string) string {
	return "CABLE-" + string(family) + "-" + gauge + "-CM"
}

func EndSKU(variantID string) string {
	return "END-" + strings.ToUpper(variantID)
}

func SleeveSKU(gauge string) string {
	return "SLEEVE-" + gauge + "-CM"
}

// NeededSKUs lists the SKUs required to price cfg: the cable, each selected
// end, the sleeve and the insulators. Duplicates are dropped and the order is
// fixed by first appearance.
func NeededSKUs(cfg Configuration) []string {
	skus := make([]string, 0, 5)
	seen := make(map[string]struct{}, 5)
	add := func(sku string) {
		if _, ok := seen[sku]; ok {
			return
		}
		seen[sku] = struct{}{}
		skus = append(skus, sku)
	}

	add(CableSKU(cfg.Family, cfg.Gauge))
	if !cfg.EndA.Empty() {
		add(EndSKU(cfg.EndA.VariantID))
	}
	if !cfg.EndB.Empty() {
		add(EndSKU(cfg.EndB.VariantID))
	}
	if cfg.Sleeve {
		add(SleeveSKU(cfg.Gauge))
	}
	if cfg.Insulators {
		add(InsulatorSKU)
	}
	return skus
}
