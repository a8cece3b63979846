package reconcile

import (
	"math"
	"strings"
	"testing"

	"github.com/atul23g/multiDiseasePred/pkg/alias"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

func newTestMapper() *Mapper {
	return NewMapper(schema.Default(), alias.Default(), DefaultUnits())
}

func heartTarget(t *testing.T) []string {
	t.Helper()
	names, err := schema.Default().FeatureNames(schema.TaskHeart)
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestMapFeaturesCanonicalAndAlias(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"chol":           {Value: 210.0, Unit: "mg/dL"},
		"max heart rate": {Value: 150.0, Unit: "bpm"},
		"blood pressure": {Value: 118.0, Unit: "mmHg"},
	}

	feats, missing, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))

	if got := feats["chol"]; got != 210.0 {
		t.Errorf("chol = %v, want 210", got)
	}
	if got := feats["thalach"]; got != 150.0 {
		t.Errorf("thalach = %v, want 150", got)
	}
	if got := feats["trestbps"]; got != 118.0 {
		t.Errorf("trestbps = %v, want 118", got)
	}
	// Canonical unit matches, so no conversion warnings.
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	// Everything else in the schema is missing, in schema order.
	want := []string{"age", "sex", "cp", "fbs", "restecg", "exang", "oldpeak", "slope", "ca", "thal"}
	if len(missing) != len(want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, missing[i], want[i])
		}
	}
}

func TestMapFeaturesUnitConversion(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"cholesterol": {Value: 5.2, Unit: "mmol/L"},
	}

	feats, _, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))

	got, err := models.ToFloat(feats["chol"])
	if err != nil {
		t.Fatalf("chol not numeric: %v", err)
	}
	if math.Abs(got-5.2*38.67) > 1e-9 {
		t.Errorf("chol = %v, want %v", got, 5.2*38.67)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "converted chol") {
		t.Errorf("expected a conversion warning, got %v", warnings)
	}
}

func TestMapFeaturesUnknownUnitKeepsRaw(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"chol": {Value: 210.0, Unit: "furlongs"},
	}

	feats, _, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))
	if feats["chol"] != 210.0 {
		t.Errorf("chol = %v, want raw 210", feats["chol"])
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "kept raw value") {
		t.Errorf("expected unit warning, got %v", warnings)
	}
}

func TestMapFeaturesUnparsableNumeric(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"chol": {Value: "see attached report"},
	}

	feats, missing, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))
	if _, ok := feats["chol"]; ok {
		t.Error("unparsable chol should not resolve")
	}
	found := false
	for _, m := range missing {
		if m == "chol" {
			found = true
		}
	}
	if !found {
		t.Errorf("chol should be missing: %v", missing)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "unparsable") {
		t.Errorf("expected an unparsable warning, got %v", warnings)
	}
}

func TestMapFeaturesCategoricalPassThrough(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"thal": {Value: "reversible defect"},
		"cp":   {Value: 2.0},
	}

	feats, _, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))
	if feats["thal"] != "reversible defect" {
		t.Errorf("thal = %v", feats["thal"])
	}
	if feats["cp"] != 2.0 {
		t.Errorf("cp = %v", feats["cp"])
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestMapFeaturesAmbiguousMatch(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"chol":              {Value: 210.0},
		"total cholesterol": {Value: 195.0},
	}

	feats, _, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))
	// Exact name beats the alias.
	if feats["chol"] != 210.0 {
		t.Errorf("chol = %v, want the exact-key value 210", feats["chol"])
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "ambiguous match for chol") {
		t.Errorf("expected an ambiguity warning, got %v", warnings)
	}
}

func TestMapFeaturesUnrecognizedLab(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"vitamin d": {Value: 32.0, Unit: "ng/ml"},
	}

	feats, _, warnings := mapper.MapFeatures(schema.TaskHeart, raw, heartTarget(t))
	if len(feats) != 0 {
		t.Errorf("expected no resolved features, got %v", feats)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], `unrecognized lab "vitamin d"`) {
		t.Errorf("expected unrecognized-lab warning, got %v", warnings)
	}
}

func TestMapFeaturesGeneralPassThrough(t *testing.T) {
	mapper := newTestMapper()
	raw := map[string]models.RawPair{
		"vitamin d": {Value: "32", Unit: "ng/ml"},
		"notes":     {Value: "fasting sample"},
	}

	feats, missing, warnings := mapper.MapFeatures(schema.TaskGeneral, raw, nil)
	if len(missing) != 0 || len(warnings) != 0 {
		t.Errorf("general task should not warn or report missing: %v %v", missing, warnings)
	}
	if feats["vitamin d"] != 32.0 {
		t.Errorf("numeric strings should coerce: %v", feats["vitamin d"])
	}
	if feats["notes"] != "fasting sample" {
		t.Errorf("non-numeric values pass through: %v", feats["notes"])
	}
}
