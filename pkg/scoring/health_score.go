package scoring

import (
	"math"
	"sort"

	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

// Score bounds and ranking limits.
const (
	ScoreMin        = 0.0
	ScoreMax        = 100.0
	maxContributors = 5
	deviationCap    = 3.0
	penaltyScale    = 40.0
)

// Weights maps canonical feature names to their contribution weight.
type Weights map[string]float64

// Config is the per-task weighting table, an explicit configuration object
// constructed once at process start.
type Config struct {
	Tasks map[schema.Task]Weights
}

// DefaultConfig returns the compiled-in weighting policy. The bounded-score
// and ranking behavior is the contract; the weights themselves are tunable.
func DefaultConfig() *Config {
	return &Config{Tasks: map[schema.Task]Weights{
		schema.TaskHeart: {
			"trestbps": 1.0,
			"chol":     1.2,
			"thalach":  0.8,
			"oldpeak":  1.5,
		},
		schema.TaskDiabetes: {
			"glucose":        1.5,
			"blood_pressure": 0.8,
			"skin_thickness": 0.4,
			"insulin":        0.8,
			"bmi":            1.2,
		},
	}}
}

// Contribution is one feature's share of the score delta from the neutral
// baseline.
type Contribution struct {
	Feature   string  `json:"feature"`
	Impact    float64 `json:"impact"`
	Deviation float64 `json:"deviation"`
}

// Synthesizer converts model probability plus reconciled features into a
// bounded, explainable health score.
type Synthesizer struct {
	registry *schema.Registry
	cfg      *Config
}

func NewSynthesizer(registry *schema.Registry, cfg *Config) *Synthesizer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Synthesizer{registry: registry, cfg: cfg}
}

// ComputeScore returns the health score in [ScoreMin, ScoreMax] and the ranked
// top contributors. The score is 100·(1−p) minus a weighted penalty for feature
// deviations beyond their normal ranges, clipped to the bounds: higher adverse
// probability never raises it. A probability outside [0,1] (or NaN) is
// clamped; callers treat that as a data-quality signal and log it.
//
// Features expects scalar-or-null values; list normalization happens at the
// system boundary. Missing, null and non-numeric values contribute zero and are
// excluded from the ranking.
func (s *Synthesizer) ComputeScore(task schema.Task, features map[string]interface{}, probability float64) (float64, []Contribution, error) {
	if _, err := schema.ParseTask(string(task)); err != nil {
		return 0, nil, err
	}

	p := clampProbability(probability)

	weights := s.cfg.Tasks[task]
	index := s.registry.FeatureIndex(task)

	var contributions []Contribution
	var totalWeight float64
	var penaltySum float64
	for _, weight := range weights {
		totalWeight += weight
	}
	for feature, weight := range weights {
		if weight <= 0 {
			continue
		}
		value, present := features[feature]
		if !present || models.IsNull(value) {
			continue
		}
		numeric, err := models.ToFloat(value)
		if err != nil {
			continue
		}
		rng, ok := s.registry.NormalRange(task, feature)
		if !ok {
			continue
		}
		half := (rng.Max - rng.Min) / 2
		if half <= 0 {
			continue
		}
		mid := (rng.Max + rng.Min) / 2
		deviation := math.Abs(numeric-mid) / half
		excess := deviation - 1
		if excess <= 0 {
			continue
		}
		if excess > deviationCap {
			excess = deviationCap
		}
		impact := weight * excess
		penaltySum += impact
		contributions = append(contributions, Contribution{Feature: feature, Impact: impact, Deviation: deviation})
	}

	score := ScoreMax * (1 - p)
	if totalWeight > 0 {
		score -= penaltyScale * penaltySum / totalWeight
	}
	if score < ScoreMin {
		score = ScoreMin
	}
	if score > ScoreMax {
		score = ScoreMax
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		left, right := math.Abs(contributions[i].Impact), math.Abs(contributions[j].Impact)
		if left != right {
			return left > right
		}
		return index[contributions[i].Feature] < index[contributions[j].Feature]
	})
	if len(contributions) > maxContributors {
		contributions = contributions[:maxContributors]
	}

	return score, contributions, nil
}

func clampProbability(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 0.5
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
