package model

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

func writeArtifact(t *testing.T, dir, task, content string) {
	t.Helper()
	path := filepath.Join(dir, task+"_latest.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

const diabetesArtifact = `{
  "model": {
    "type": "tabular",
    "algorithm": "logistic_regression",
    "feature_names": ["glucose", "bmi"],
    "weights": {
      "bias": -1.0,
      "coefficients": [0.01, 0.02]
    }
  }
}`

func TestPredict(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "diabetes", diabetesArtifact)
	p := NewPredictor(dir, schema.Default())

	out, err := p.Predict(schema.TaskDiabetes, map[string]interface{}{
		"glucose": 150.0,
		"bmi":     30.0,
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	// -1 + 0.01*150 + 0.02*30 = 1.1
	want := 1 / (1 + math.Exp(-1.1))
	if math.Abs(out.Probability-want) > 1e-9 {
		t.Errorf("probability = %v, want %v", out.Probability, want)
	}
	if out.Label != 1 {
		t.Errorf("label = %d, want 1", out.Label)
	}
	if len(out.Warnings) != 0 {
		t.Errorf("warnings = %v", out.Warnings)
	}
}

func TestPredictImputesMissing(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "diabetes", diabetesArtifact)
	p := NewPredictor(dir, schema.Default())

	out, err := p.Predict(schema.TaskDiabetes, map[string]interface{}{
		"glucose": 150.0,
		"bmi":     nil,
	})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	// bmi imputed to the normal-range midpoint (18.5+24.9)/2 = 21.7.
	want := 1 / (1 + math.Exp(-(-1 + 0.01*150 + 0.02*21.7)))
	if math.Abs(out.Probability-want) > 1e-9 {
		t.Errorf("probability = %v, want %v", out.Probability, want)
	}
	if len(out.Warnings) != 1 || !strings.Contains(out.Warnings[0], "bmi") {
		t.Errorf("expected an imputation warning for bmi, got %v", out.Warnings)
	}
}

func TestPredictCoefficientMismatch(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "diabetes", `{
  "model": {
    "feature_names": ["glucose", "bmi"],
    "weights": {"bias": 0, "coefficients": [0.1]}
  }
}`)
	p := NewPredictor(dir, schema.Default())

	if _, err := p.Predict(schema.TaskDiabetes, nil); err == nil {
		t.Fatal("expected error for coefficient count mismatch")
	}
}

func TestPredictMissingArtifact(t *testing.T) {
	p := NewPredictor(t.TempDir(), schema.Default())
	if _, err := p.Predict(schema.TaskHeart, nil); err == nil {
		t.Fatal("expected error when no artifact exists")
	}
}

func TestPredictReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "diabetes", diabetesArtifact)
	p := NewPredictor(dir, schema.Default())

	first, err := p.Predict(schema.TaskDiabetes, map[string]interface{}{"glucose": 150.0, "bmi": 30.0})
	if err != nil {
		t.Fatal(err)
	}

	updated := strings.Replace(diabetesArtifact, `"bias": -1.0`, `"bias": 2.0`, 1)
	writeArtifact(t, dir, "diabetes", updated)
	// Force a distinct mtime on coarse-grained filesystems.
	path := filepath.Join(dir, "diabetes_latest.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, info.ModTime(), info.ModTime().Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}

	second, err := p.Predict(schema.TaskDiabetes, map[string]interface{}{"glucose": 150.0, "bmi": 30.0})
	if err != nil {
		t.Fatal(err)
	}
	if second.Probability <= first.Probability {
		t.Errorf("promoted artifact not picked up: %v vs %v", first.Probability, second.Probability)
	}
}
