package reconcile

import "strings"

// UnitTable holds the fixed per-feature conversion factors into each feature's
// canonical unit. Conversion factors depend on the analyte (mmol/L of glucose
// and mmol/L of cholesterol scale differently), so the table is keyed by
// feature and source unit rather than by unit pair alone.
type UnitTable struct {
	factors map[unitKey]float64
}

type unitKey struct {
	feature string
	from    string
}

// NormalizeUnit reduces a unit string for comparison: lowercase with all
// whitespace removed, so "mmHg", "mm Hg" and "mmhg" compare equal.
func NormalizeUnit(unit string) string {
	return strings.ToLower(strings.Join(strings.Fields(unit), ""))
}

func (t *UnitTable) Factor(feature, from string) (float64, bool) {
	if t == nil || t.factors == nil {
		return 0, false
	}
	f, ok := t.factors[unitKey{feature: feature, from: NormalizeUnit(from)}]
	return f, ok
}

// DefaultUnits returns the compiled-in conversion table for the lab units seen
// in ingested reports.
func DefaultUnits() *UnitTable {
	return &UnitTable{factors: map[unitKey]float64{
		{feature: "chol", from: "mmol/l"}:           38.67,   // to mg/dl
		{feature: "chol", from: "g/l"}:              100,     // to mg/dl
		{feature: "glucose", from: "mmol/l"}:        18.0182, // to mg/dl
		{feature: "glucose", from: "g/l"}:           100,     // to mg/dl
		{feature: "insulin", from: "pmol/l"}:        0.144,   // to mu/ml
		{feature: "trestbps", from: "kpa"}:          7.50062, // to mmhg
		{feature: "blood_pressure", from: "kpa"}:    7.50062, // to mmhg
		{feature: "skin_thickness", from: "cm"}:     10,      // to mm
		{feature: "oldpeak", from: "cm"}:            10,      // to mm
	}}
}
