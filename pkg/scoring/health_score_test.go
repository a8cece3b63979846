package scoring

import (
	"math"
	"testing"

	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(schema.Default(), DefaultConfig())
}

func TestComputeScoreNoDeviations(t *testing.T) {
	s := newTestSynthesizer()
	features := map[string]interface{}{
		"glucose":        90.0,
		"blood_pressure": 70.0,
		"bmi":            22.0,
	}

	score, contributions, err := s.ComputeScore(schema.TaskDiabetes, features, 0.2)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if math.Abs(score-80.0) > 1e-9 {
		t.Errorf("score = %v, want 80 with all features in range", score)
	}
	if len(contributions) != 0 {
		t.Errorf("in-range features must not contribute: %v", contributions)
	}
}

func TestComputeScorePenalty(t *testing.T) {
	s := newTestSynthesizer()
	// glucose 200 against [70,110]: mid 90, half-width 20, deviation 5.5,
	// excess capped at 3 -> impact 1.5*3 = 4.5 over total weight 4.7.
	features := map[string]interface{}{"glucose": 200.0}

	score, contributions, err := s.ComputeScore(schema.TaskDiabetes, features, 0.0)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	want := 100.0 - 40.0*4.5/4.7
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", score, want)
	}
	if len(contributions) != 1 || contributions[0].Feature != "glucose" {
		t.Fatalf("contributions = %v", contributions)
	}
	if math.Abs(contributions[0].Impact-4.5) > 1e-9 {
		t.Errorf("impact = %v, want 4.5", contributions[0].Impact)
	}
	if math.Abs(contributions[0].Deviation-5.5) > 1e-9 {
		t.Errorf("deviation = %v, want 5.5", contributions[0].Deviation)
	}
}

func TestComputeScoreBounds(t *testing.T) {
	s := newTestSynthesizer()
	extreme := map[string]interface{}{
		"glucose":        1000.0,
		"blood_pressure": 400.0,
		"skin_thickness": 300.0,
		"insulin":        5000.0,
		"bmi":            80.0,
	}

	for _, p := range []float64{0, 0.25, 0.5, 0.75, 1, -3, 7, math.NaN()} {
		score, _, err := s.ComputeScore(schema.TaskDiabetes, extreme, p)
		if err != nil {
			t.Fatalf("ComputeScore(p=%v): %v", p, err)
		}
		if score < ScoreMin || score > ScoreMax {
			t.Errorf("score %v out of bounds for p=%v", score, p)
		}
	}
}

func TestComputeScoreMonotonicInProbability(t *testing.T) {
	s := newTestSynthesizer()
	features := map[string]interface{}{"glucose": 130.0, "bmi": 28.0}

	low, _, err := s.ComputeScore(schema.TaskDiabetes, features, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	high, _, err := s.ComputeScore(schema.TaskDiabetes, features, 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if high >= low {
		t.Errorf("higher probability must not raise the score: p=0.2 -> %v, p=0.8 -> %v", low, high)
	}
}

func TestComputeScoreDeterministicTieBreak(t *testing.T) {
	s := newTestSynthesizer()
	// blood_pressure 100 and insulin 316 both land on excess 2 with weight 0.8,
	// so their impacts tie and schema order decides.
	features := map[string]interface{}{
		"blood_pressure": 100.0,
		"insulin":        316.0,
	}

	for i := 0; i < 10; i++ {
		_, contributions, err := s.ComputeScore(schema.TaskDiabetes, features, 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if len(contributions) != 2 {
			t.Fatalf("contributions = %v", contributions)
		}
		if contributions[0].Feature != "blood_pressure" || contributions[1].Feature != "insulin" {
			t.Fatalf("tie-break not deterministic: %v", contributions)
		}
	}
}

func TestComputeScoreSkipsMissingAndNonNumeric(t *testing.T) {
	s := newTestSynthesizer()
	features := map[string]interface{}{
		"glucose": nil,
		"bmi":     "not recorded",
	}

	score, contributions, err := s.ComputeScore(schema.TaskDiabetes, features, 0.3)
	if err != nil {
		t.Fatalf("ComputeScore: %v", err)
	}
	if math.Abs(score-70.0) > 1e-9 {
		t.Errorf("score = %v, want 70 with no usable features", score)
	}
	if len(contributions) != 0 {
		t.Errorf("contributions = %v", contributions)
	}
}

func TestComputeScoreUnknownTask(t *testing.T) {
	s := newTestSynthesizer()
	if _, _, err := s.ComputeScore(schema.Task("cardio"), nil, 0.5); err == nil {
		t.Fatal("expected error for unknown task")
	}
}
