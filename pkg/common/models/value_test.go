package models

import (
	"encoding/json"
	"testing"
)

func TestToFloat(t *testing.T) {
	cases := []struct {
		name    string
		input   interface{}
		want    float64
		wantErr bool
	}{
		{"float64", 1.5, 1.5, false},
		{"int", 42, 42, false},
		{"int64", int64(7), 7, false},
		{"json number", json.Number("130"), 130, false},
		{"numeric string", "98.6", 98.6, false},
		{"padded string", "  98.6 ", 98.6, false},
		{"bool true", true, 1, false},
		{"bool false", false, 0, false},
		{"text", "see report", 0, true},
		{"nil", nil, 0, true},
		{"slice", []interface{}{1.0}, 0, true},
	}

	for _, tc := range cases {
		got, err := ToFloat(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsNull(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"whitespace", "   ", true},
		{"zero", 0.0, false},
		{"text", "normal", false},
		{"false", false, false},
	}

	for _, tc := range cases {
		if got := IsNull(tc.input); got != tc.want {
			t.Errorf("IsNull(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
