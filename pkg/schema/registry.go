package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"gopkg.in/yaml.v3"
)

// Task is the domain context a request runs under. It selects the feature
// schema, alias rules, normal-range table and model artifact.
type Task string

const (
	TaskHeart    Task = "heart"
	TaskDiabetes Task = "diabetes"
	TaskGeneral  Task = "general"
)

func Tasks() []Task {
	return []Task{TaskHeart, TaskDiabetes, TaskGeneral}
}

// UnknownTaskError names the invalid input and the allowed set, per the
// boundary contract. It is fatal to the request and never retried.
type UnknownTaskError struct {
	Input string
}

func (e UnknownTaskError) Error() string {
	allowed := make([]string, 0, len(Tasks()))
	for _, t := range Tasks() {
		allowed = append(allowed, string(t))
	}
	return fmt.Sprintf("unknown task %q, expected one of: %s", e.Input, strings.Join(allowed, ", "))
}

// ParseTask normalizes and validates a task identifier. Trailing whitespace and
// case differences from clients are tolerated.
func ParseTask(raw string) (Task, error) {
	normalized := Task(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range Tasks() {
		if normalized == t {
			return t, nil
		}
	}
	return "", UnknownTaskError{Input: raw}
}

// FieldSpec describes one canonical model feature: its display label, value
// type, canonical unit and, where clinically established, its normal range.
type FieldSpec struct {
	Name   string        `yaml:"name" json:"name"`
	Label  string        `yaml:"label" json:"label"`
	Type   string        `yaml:"type" json:"type"` // numeric or categorical
	Unit   string        `yaml:"unit,omitempty" json:"unit,omitempty"`
	Normal *models.Range `yaml:"normal,omitempty" json:"normal_range,omitempty"`
}

// Registry is the per-task canonical feature schema. It is built once at
// process start and treated as immutable; every schema-bound output draws its
// keys and their order from here.
type Registry struct {
	Version string               `yaml:"version"`
	Tasks   map[Task][]FieldSpec `yaml:"tasks"`
}

// Load reads a registry from YAML, falling back to the compiled-in default when
// no path is configured.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var reg Registry
	if err := yaml.Unmarshal(content, &reg); err != nil {
		return nil, err
	}
	if len(reg.Tasks) == 0 {
		return nil, fmt.Errorf("feature schema registry empty")
	}
	for task := range reg.Tasks {
		if _, err := ParseTask(string(task)); err != nil {
			return nil, fmt.Errorf("schema registry: %w", err)
		}
	}
	return &reg, nil
}

// SchemaFor returns the ordered field list for a task. The general task is
// schema-free: it returns an empty list without error and callers pass parsed
// pairs through untouched.
func (r *Registry) SchemaFor(task Task) ([]FieldSpec, error) {
	if _, err := ParseTask(string(task)); err != nil {
		return nil, err
	}
	if task == TaskGeneral {
		return nil, nil
	}
	fields, ok := r.Tasks[task]
	if !ok {
		return nil, UnknownTaskError{Input: string(task)}
	}
	out := make([]FieldSpec, len(fields))
	copy(out, fields)
	return out, nil
}

// FeatureNames returns the schema keys for a task in schema order.
func (r *Registry) FeatureNames(task Task) ([]string, error) {
	fields, err := r.SchemaFor(task)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names, nil
}

// Field looks up a single feature's spec.
func (r *Registry) Field(task Task, name string) (FieldSpec, bool) {
	fields, ok := r.Tasks[task]
	if !ok {
		return FieldSpec{}, false
	}
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// NormalRange returns the normal range for a feature when the schema defines one.
func (r *Registry) NormalRange(task Task, name string) (models.Range, bool) {
	field, ok := r.Field(task, name)
	if !ok || field.Normal == nil {
		return models.Range{}, false
	}
	return *field.Normal, true
}

// FeatureIndex maps feature name to its schema position. Used as the
// deterministic tie-breaker when ranking contributors.
func (r *Registry) FeatureIndex(task Task) map[string]int {
	index := make(map[string]int)
	for i, f := range r.Tasks[task] {
		index[f.Name] = i
	}
	return index
}

func rng(min, max float64) *models.Range {
	return &models.Range{Min: min, Max: max}
}

// Default returns the compiled-in registry. Heart follows the UCI heart-disease
// feature ordering, diabetes follows the Pima ordering.
func Default() *Registry {
	return &Registry{
		Version: "1",
		Tasks: map[Task][]FieldSpec{
			TaskHeart: {
				{Name: "age", Label: "Age", Type: "numeric", Unit: "years"},
				{Name: "sex", Label: "Sex", Type: "categorical"},
				{Name: "cp", Label: "Chest pain type", Type: "categorical"},
				{Name: "trestbps", Label: "Resting blood pressure", Type: "numeric", Unit: "mmhg", Normal: rng(90, 120)},
				{Name: "chol", Label: "Serum cholesterol", Type: "numeric", Unit: "mg/dl", Normal: rng(125, 200)},
				{Name: "fbs", Label: "Fasting blood sugar > 120 mg/dl", Type: "categorical"},
				{Name: "restecg", Label: "Resting ECG result", Type: "categorical"},
				{Name: "thalach", Label: "Maximum heart rate", Type: "numeric", Unit: "bpm", Normal: rng(100, 190)},
				{Name: "exang", Label: "Exercise induced angina", Type: "categorical"},
				{Name: "oldpeak", Label: "ST depression", Type: "numeric", Unit: "mm", Normal: rng(0, 2)},
				{Name: "slope", Label: "ST segment slope", Type: "categorical"},
				{Name: "ca", Label: "Major vessels colored", Type: "categorical"},
				{Name: "thal", Label: "Thalassemia", Type: "categorical"},
			},
			TaskDiabetes: {
				{Name: "pregnancies", Label: "Pregnancies", Type: "numeric"},
				{Name: "glucose", Label: "Plasma glucose", Type: "numeric", Unit: "mg/dl", Normal: rng(70, 110)},
				{Name: "blood_pressure", Label: "Diastolic blood pressure", Type: "numeric", Unit: "mmhg", Normal: rng(60, 80)},
				{Name: "skin_thickness", Label: "Triceps skin fold", Type: "numeric", Unit: "mm", Normal: rng(10, 40)},
				{Name: "insulin", Label: "Serum insulin", Type: "numeric", Unit: "mu/ml", Normal: rng(16, 166)},
				{Name: "bmi", Label: "Body mass index", Type: "numeric", Unit: "kg/m2", Normal: rng(18.5, 24.9)},
				{Name: "diabetes_pedigree", Label: "Diabetes pedigree function", Type: "numeric"},
				{Name: "age", Label: "Age", Type: "numeric", Unit: "years"},
			},
		},
	}
}
