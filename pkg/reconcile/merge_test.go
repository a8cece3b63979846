package reconcile

import (
	"reflect"
	"testing"

	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

func TestMergePrecedence(t *testing.T) {
	extracted := map[string]interface{}{"chol": 210.0, "age": 52.0}
	userInputs := map[string]interface{}{"chol": 190.0, "trestbps": 118.0}

	got := Merge(extracted, userInputs, true)
	if got["chol"] != 190.0 {
		t.Errorf("preferUser: chol = %v, want user 190", got["chol"])
	}
	if got["age"] != 52.0 || got["trestbps"] != 118.0 {
		t.Errorf("one-sided keys should pass through: %v", got)
	}

	got = Merge(extracted, userInputs, false)
	if got["chol"] != 210.0 {
		t.Errorf("preferExtracted: chol = %v, want extracted 210", got["chol"])
	}
	if got["trestbps"] != 118.0 {
		t.Errorf("user-only keys still pass through: %v", got)
	}
}

func TestMergeNullFallsBackToOtherSource(t *testing.T) {
	extracted := map[string]interface{}{"chol": 210.0, "age": nil}
	userInputs := map[string]interface{}{"chol": nil, "age": 52.0, "thalach": ""}

	got := Merge(extracted, userInputs, true)
	if got["chol"] != 210.0 {
		t.Errorf("null user value must not shadow extracted: %v", got["chol"])
	}
	if got["age"] != 52.0 {
		t.Errorf("preferred null should fall back: %v", got["age"])
	}

	got = Merge(extracted, userInputs, false)
	if got["age"] != 52.0 {
		t.Errorf("null extracted should fall back to user: %v", got["age"])
	}
}

func TestMergeIdempotent(t *testing.T) {
	extracted := map[string]interface{}{"chol": 210.0, "age": 52.0}
	userInputs := map[string]interface{}{"chol": 190.0}

	once := Merge(extracted, userInputs, true)
	twice := Merge(once, map[string]interface{}{}, true)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("re-merging with no overrides changed the result: %v vs %v", once, twice)
	}
}

func TestCompleteSchemaOrderAndMissing(t *testing.T) {
	resolver := NewResolver(schema.Default())
	extracted := map[string]interface{}{"glucose": 130.0, "bmi": 31.4}
	userInputs := map[string]interface{}{"age": 45.0}

	ready, stillMissing, err := resolver.Complete(schema.TaskDiabetes, extracted, userInputs, true)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	wantKeys := []string{"pregnancies", "glucose", "blood_pressure", "skin_thickness", "insulin", "bmi", "diabetes_pedigree", "age"}
	if !reflect.DeepEqual(ready.Keys(), wantKeys) {
		t.Errorf("keys = %v, want schema order %v", ready.Keys(), wantKeys)
	}

	if v, _ := ready.Get("glucose"); v != 130.0 {
		t.Errorf("glucose = %v", v)
	}
	if v, _ := ready.Get("pregnancies"); v != nil {
		t.Errorf("unresolved features must be nil, got %v", v)
	}

	wantMissing := []string{"pregnancies", "blood_pressure", "skin_thickness", "insulin", "diabetes_pedigree"}
	if !reflect.DeepEqual(stillMissing, wantMissing) {
		t.Errorf("stillMissing = %v, want %v", stillMissing, wantMissing)
	}
}

func TestCompleteIgnoresOutOfSchemaKeys(t *testing.T) {
	resolver := NewResolver(schema.Default())
	userInputs := map[string]interface{}{"glucose": 100.0, "favorite_color": "blue"}

	ready, _, err := resolver.Complete(schema.TaskDiabetes, nil, userInputs, true)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if ready.Has("favorite_color") {
		t.Error("out-of-schema keys must be dropped")
	}
}

func TestCompleteGeneralUnionSorted(t *testing.T) {
	resolver := NewResolver(schema.Default())
	extracted := map[string]interface{}{"vitamin d": 32.0}
	userInputs := map[string]interface{}{"ferritin": 80.0}

	ready, stillMissing, err := resolver.Complete(schema.TaskGeneral, extracted, userInputs, true)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(stillMissing) != 0 {
		t.Errorf("general task never reports missing: %v", stillMissing)
	}
	if !reflect.DeepEqual(ready.Keys(), []string{"ferritin", "vitamin d"}) {
		t.Errorf("general keys should be the sorted union: %v", ready.Keys())
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	resolver := NewResolver(schema.Default())
	if _, _, err := resolver.Complete(schema.Task("cardio"), nil, nil, true); err == nil {
		t.Fatal("expected error for unknown task")
	}
}
