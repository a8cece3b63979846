package alias

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Table is the versioned mapping from normalized lab-name synonym to canonical
// feature key. Per-task entries take precedence over global ones so a name like
// "blood pressure" can resolve differently for heart and diabetes. Loaded once
// at process start and immutable afterwards.
type Table struct {
	Version string                       `yaml:"version"`
	Global  map[string]string            `yaml:"global"`
	Tasks   map[string]map[string]string `yaml:"tasks"`
}

// Load reads an alias table from YAML, falling back to the compiled-in default
// when no path is configured.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var table Table
	if err := yaml.Unmarshal(content, &table); err != nil {
		return nil, err
	}
	if len(table.Global) == 0 && len(table.Tasks) == 0 {
		return nil, fmt.Errorf("alias table empty")
	}
	return &table, nil
}

// Normalize reduces a free-text lab name to the form alias keys use: lowercase,
// trimmed, interior punctuation and whitespace runs collapsed to single spaces.
func Normalize(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastSpace := false
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '/' || r == '%':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Resolve maps a free-text lab name to a canonical feature key. It returns the
// canonical key and true on a hit; the normalized input and false otherwise.
func (t *Table) Resolve(task, name string) (string, bool) {
	normalized := Normalize(name)
	if normalized == "" {
		return "", false
	}
	if perTask, ok := t.Tasks[task]; ok {
		if canonical, ok := perTask[normalized]; ok {
			return canonical, true
		}
	}
	if canonical, ok := t.Global[normalized]; ok {
		return canonical, true
	}
	return normalized, false
}

// Default returns the compiled-in alias table covering the lab-report synonyms
// seen in ingested documents.
func Default() *Table {
	return &Table{
		Version: "1",
		Global: map[string]string{
			"cholesterol":            "chol",
			"total cholesterol":      "chol",
			"serum cholesterol":      "chol",
			"chol total":             "chol",
			"resting blood pressure": "trestbps",
			"resting bp":             "trestbps",
			"systolic bp":            "trestbps",
			"max heart rate":         "thalach",
			"maximum heart rate":     "thalach",
			"max hr":                 "thalach",
			"heart rate max":         "thalach",
			"fasting blood sugar":    "fbs",
			"st depression":          "oldpeak",
			"chest pain":             "cp",
			"chest pain type":        "cp",
			"exercise angina":        "exang",
			"glucose fasting":        "glucose",
			"plasma glucose":         "glucose",
			"blood glucose":          "glucose",
			"serum insulin":          "insulin",
			"insulin 2hr":            "insulin",
			"body mass index":        "bmi",
			"skin fold thickness":    "skin_thickness",
			"triceps skin fold":      "skin_thickness",
			"diabetes pedigree":      "diabetes_pedigree",
			"pedigree function":      "diabetes_pedigree",
		},
		Tasks: map[string]map[string]string{
			"heart": {
				"blood pressure": "trestbps",
				"bp":             "trestbps",
				"blood sugar":    "fbs",
			},
			"diabetes": {
				"blood pressure": "blood_pressure",
				"bp":             "blood_pressure",
				"diastolic bp":   "blood_pressure",
				"blood sugar":    "glucose",
			},
		},
	}
}
