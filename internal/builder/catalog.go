package builder

// Family is a cable family offered by the builder.
type Family string

const (
	FamilyBatterySingle Family = "BatterySingle"
	FamilyBatteryTwin   Family = "BatteryTwin"
	FamilyWelding       Family = "Welding"
)

// EndType is a termination style for one cable end.
type EndType string

const (
	EndTypeLug          EndType = "Lug"
	EndTypeAnderson     EndType = "Anderson"
	EndTypeBatteryClamp EndType = "BatteryClamp"
	EndTypeBare         EndType = "Bare"
)

// EndVariant is one orderable termination and the gauges it fits.
type EndVariant struct {
	ID     string   `json:"id"`
	Label  string   `json:"label"`
	Compat []string `json:"compat"`
}

// Fits reports whether the variant lists gauge in its compatibility set.
func (v EndVariant) Fits(gauge string) bool {
	for _, g := range v.Compat {
		if g == gauge {
			return true
		}
	}
	return false
}

// EndOption groups the variants of one end type.
type EndOption struct {
	Type     EndType      `json:"type"`
	Label    string       `json:"label"`
	Variants []EndVariant `json:"variants"`
}

// FamilyOption describes a family and its gauge list.
type FamilyOption struct {
	Family          Family   `json:"family"`
	Label           string   `json:"label"`
	Gauges          []string `json:"gauges"`
	PairModeDefault bool     `json:"pair_mode_default"`
	PairModeLocked  bool     `json:"pair_mode_locked"`
}

// CatalogView is the complete option catalog as served to clients.
type CatalogView struct {
	Families []FamilyOption `json:"families"`
	EndTypes []EndOption    `json:"end_types"`
}

var batteryGauges = []string{"0000", "000", "00", "0", "1", "2", "3", "4", "6", "8", "6mm"}

var familyOptions = []FamilyOption{
	{Family: FamilyBatterySingle, Label: "Battery - Single Core", Gauges: batteryGauges, PairModeLocked: true},
	{Family: FamilyWelding, Label: "Welding Cable", Gauges: []string{"95mm2", "70mm2", "50mm2", "35mm2"}, PairModeLocked: true},
	{Family: FamilyBatteryTwin, Label: "Battery - Twin", Gauges: batteryGauges, PairModeDefault: true},
}

var endOptions = []EndOption{
	{
		Type:  EndTypeLug,
		Label: "Tinned Lug",
		Variants: []EndVariant{
			{ID: "lug-6mm-6hole", Label: "6mm² • 6mm hole", Compat: []string{"8", "6mm", "6"}},
			{ID: "lug-10mm-8hole", Label: "10mm² • 8mm hole", Compat: []string{"6", "4", "3"}},
			{ID: "lug-25mm-8hole", Label: "25mm² • 8mm hole", Compat: []string{"3", "2", "1"}},
			{ID: "lug-35mm-10hole", Label: "35mm² • 10mm hole", Compat: []string{"1", "0"}},
			{ID: "lug-50mm-10hole", Label: "50mm² • 10mm hole", Compat: []string{"0", "00"}},
			{ID: "lug-70mm-10hole", Label: "70mm² • 10mm hole", Compat: []string{"00", "000"}},
			{ID: "lug-95mm-12hole", Label: "95mm² • 12mm hole", Compat: []string{"000", "0000"}},
		},
	},
	{
		Type:  EndTypeAnderson,
		Label: "Anderson SB",
		Variants: []EndVariant{
			{ID: "sb50", Label: "SB50", Compat: []string{"8", "6", "4", "3"}},
			{ID: "sb120", Label: "SB120", Compat: []string{"2", "1", "0"}},
			{ID: "sb175", Label: "SB175", Compat: []string{"0", "00", "000"}},
			{ID: "sb350", Label: "SB350", Compat: []string{"000", "0000"}},
		},
	},
	{
		Type:  EndTypeBatteryClamp,
		Label: "Battery Clamp",
		Variants: []EndVariant{
			{ID: "post-pos", Label: "Top Post (+)", Compat: []string{"4", "3", "2", "1", "0"}},
			{ID: "post-neg", Label: "Top Post (-)", Compat: []string{"4", "3", "2", "1", "0"}},
		},
	},
	{
		Type:  EndTypeBare,
		Label: "Bare End",
		Variants: []EndVariant{
			{ID: "bare", Label: "Bare (with heat-shrink)", Compat: []string{"6mm", "8", "6", "4", "3", "2", "1", "0", "00", "000", "0000"}},
		},
	},
}

// Catalog returns a copy of the option catalog.
func Catalog() CatalogView {
	view := CatalogView{
		Families: make([]FamilyOption, 0, len(familyOptions)),
		EndTypes: make([]EndOption, 0, len(endOptions)),
	}
	for _, f := range familyOptions {
		f.Gauges = append([]string(nil), f.Gauges...)
		view.Families = append(view.Families, f)
	}
	for _, o := range endOptions {
		variants := make([]EndVariant, 0, len(o.Variants))
		for _, v := range o.Variants {
			v.Compat = append([]string(nil), v.Compat...)
			variants = append(variants, v)
		}
		o.Variants = variants
		view.EndTypes = append(view.EndTypes, o)
	}
	return view
}

// GaugesFor returns the gauges offered for family, or nil for an unknown family.
func GaugesFor(family Family) []string {
	for _, f := range familyOptions {
		if f.Family == family {
			return f.Gauges
		}
	}
	return nil
}

func knownFamily(family Family) bool {
	return GaugesFor(family) != nil
}

func knownGauge(family Family, gauge string) bool {
	for _, g := range GaugesFor(family) {
		if g == gauge {
			return true
		}
	}
	return false
}

func endOption(t EndType) (EndOption, bool) {
	for _, o := range endOptions {
		if o.Type == t {
			return o, true
		}
	}
	return EndOption{}, false
}

// LookupVariant finds variantID within the variants of end type t.
func LookupVariant(t EndType, variantID string) (EndVariant, bool) {
	opt, ok := endOption(t)
	if !ok {
		return EndVariant{}, false
	}
	for _, v := range opt.Variants {
		if v.ID == variantID {
			return v, true
		}
	}
	return EndVariant{}, false
}
