package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFeatureMapMarshalPreservesOrder(t *testing.T) {
	m := NewFeatureMap()
	m.Set("pregnancies", nil)
	m.Set("glucose", 130.0)
	m.Set("blood_pressure", 70.0)
	m.Set("age", 45.0)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"pregnancies":null,"glucose":130,"blood_pressure":70,"age":45}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}
}

func TestFeatureMapSetKeepsFirstPosition(t *testing.T) {
	m := NewFeatureMap()
	m.Set("a", 1.0)
	m.Set("b", 2.0)
	m.Set("a", 3.0)

	if !reflect.DeepEqual(m.Keys(), []string{"a", "b"}) {
		t.Errorf("keys = %v", m.Keys())
	}
	if v, _ := m.Get("a"); v != 3.0 {
		t.Errorf("a = %v, want the overwritten value", v)
	}
}

func TestFeatureMapUnmarshalRoundTrip(t *testing.T) {
	input := `{"glucose":130,"thal":"normal","oldpeak":null,"bmi":27.5}`

	var m FeatureMap
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(m.Keys(), []string{"glucose", "thal", "oldpeak", "bmi"}) {
		t.Errorf("keys = %v", m.Keys())
	}
	if v, _ := m.Get("glucose"); v != 130.0 {
		t.Errorf("glucose = %v (%T)", v, v)
	}
	if v, _ := m.Get("thal"); v != "normal" {
		t.Errorf("thal = %v", v)
	}

	out, err := json.Marshal(&m)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != input {
		t.Errorf("round trip changed encoding: %s vs %s", out, input)
	}
}

func TestFeatureMapUnmarshalRejectsNonObject(t *testing.T) {
	var m FeatureMap
	if err := json.Unmarshal([]byte(`[1,2]`), &m); err == nil {
		t.Fatal("expected error for non-object input")
	}
}

func TestNilFeatureMapMarshalsNull(t *testing.T) {
	var m *FeatureMap
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "null" {
		t.Errorf("nil map = %s", data)
	}
}
