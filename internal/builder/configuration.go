package builder

import (
	"math"
	"strings"

	pkgerrors "github.com/offgriddoc/cablebuilder/pkg/errors"
)

// DefaultLengthM replaces a length that is not a finite positive number.
const DefaultLengthM = 1.5

// EndChoice is the termination picked for one end. Both fields are optional.
type EndChoice struct {
	Type      EndType `json:"type"`
	VariantID string  `json:"variant_id"`
}

// Empty reports whether no variant is selected.
func (e EndChoice) Empty() bool {
	return e.VariantID == ""
}

// Configuration is a customer's in-progress cable selection.
type Configuration struct {
	Family     Family    `json:"family"`
	Gauge      string    `json:"gauge"`
	LengthM    float64   `json:"length_m"`
	PairMode   *bool     `json:"pair_mode,omitempty"`
	EndA       EndChoice `json:"end_a"`
	EndB       EndChoice `json:"end_b"`
	Sleeve     bool      `json:"sleeve"`
	Insulators bool      `json:"insulators"`
	LabelA     string    `json:"label_a"`
	LabelB     string    `json:"label_b"`
}

// Paired reports whether the cable is built as two conductors. Pair mode follows
// the family default and can only be overridden for twin battery cable.
func (c Configuration) Paired() bool {
	if c.Family != FamilyBatteryTwin {
		return false
	}
	if c.PairMode != nil {
		return *c.PairMode
	}
	return true
}

// SafeLengthM returns the length in metres with the default applied.
func (c Configuration) SafeLengthM() float64 {
	if math.IsNaN(c.LengthM) || math.IsInf(c.LengthM, 0) || c.LengthM <= 0 {
		return DefaultLengthM
	}
	return c.LengthM
}

// LengthCm is the safe length rounded to whole centimetres.
func (c Configuration) LengthCm() int64 {
	return int64(math.Round(c.SafeLengthM() * 100))
}

func (c Configuration) multiplier() int64 {
	if c.Paired() {
		return 2
	}
	return 1
}

// Adjustment records a field Normalize changed.
type Adjustment struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Normalize applies local recovery to cfg: the length default, a pair-mode
// override on a family that does not allow one, and end variants that are
// unknown for their type or do not fit the gauge. It never fails.
func Normalize(cfg Configuration) (Configuration, []Adjustment) {
	out := cfg
	out.Gauge = strings.TrimSpace(out.Gauge)
	var adjustments []Adjustment

	if out.SafeLengthM() != out.LengthM {
		out.LengthM = DefaultLengthM
		adjustments = append(adjustments, Adjustment{Field: "length_m", Reason: "length must be a positive number"})
	}
	if out.PairMode != nil {
		paired := *out.PairMode
		out.PairMode = &paired
		if out.Family != FamilyBatteryTwin {
			out.PairMode = nil
			if paired {
				adjustments = append(adjustments, Adjustment{Field: "pair_mode", Reason: "pair mode is only available for twin cable"})
			}
		}
	}

	var adj *Adjustment
	out.EndA, adj = normalizeEnd("end_a", out.EndA, out.Gauge)
	if adj != nil {
		adjustments = append(adjustments, *adj)
	}
	out.EndB, adj = normalizeEnd("end_b", out.EndB, out.Gauge)
	if adj != nil {
		adjustments = append(adjustments, *adj)
	}
	return out, adjustments
}

func normalizeEnd(field string, end EndChoice, gauge string) (EndChoice, *Adjustment) {
	end.VariantID = strings.TrimSpace(end.VariantID)
	if end.VariantID == "" {
		return end, nil
	}
	variant, ok := LookupVariant(end.Type, end.VariantID)
	if !ok {
		return EndChoice{Type: end.Type}, &Adjustment{Field: field, Reason: "variant does not belong to the end type"}
	}
	if !variant.Fits(gauge) {
		return EndChoice{Type: end.Type}, &Adjustment{Field: field, Reason: "variant is incompatible with gauge " + gauge}
	}
	return end, nil
}

// Validate rejects configurations the builder cannot price at all.
func Validate(cfg Configuration) error {
	if !knownFamily(cfg.Family) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown cable family").
			WithDetails(map[string]any{"family": cfg.Family})
	}
	if !knownGauge(cfg.Family, strings.TrimSpace(cfg.Gauge)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "gauge not offered for family").
			WithDetails(map[string]any{"family": cfg.Family, "gauge": cfg.Gauge, "allowed": GaugesFor(cfg.Family)})
	}
	ends := []struct {
		field string
		end   EndChoice
	}{{"end_a", cfg.EndA}, {"end_b", cfg.EndB}}
	for _, e := range ends {
		if e.end.Type == "" {
			continue
		}
		if _, ok := endOption(e.end.Type); !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown end type").
				WithDetails(map[string]any{"field": e.field, "type": e.end.Type})
		}
	}
	return nil
}
