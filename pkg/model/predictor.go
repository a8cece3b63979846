package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

// Artifact is the on-disk weight file produced by the offline training
// pipeline. One file per task, named <task>_latest.json.
type Artifact struct {
	Model struct {
		Type         string   `json:"type"`
		Algorithm    string   `json:"algorithm"`
		FeatureNames []string `json:"feature_names"`
		Weights      struct {
			Bias         float64   `json:"bias"`
			Coefficients []float64 `json:"coefficients"`
		} `json:"weights"`
	} `json:"model"`
}

// Predictor is the tabular model black box: canonical feature mapping in,
// label plus probability out. Artifacts are cached and reloaded on mtime
// changes so promoted models pick up without a restart.
type Predictor struct {
	dir      string
	registry *schema.Registry
	cache    map[schema.Task]cachedArtifact
	mu       sync.RWMutex
}

type cachedArtifact struct {
	artifact Artifact
	modTime  int64
}

func NewPredictor(dir string, registry *schema.Registry) *Predictor {
	return &Predictor{
		dir:      dir,
		registry: registry,
		cache:    make(map[schema.Task]cachedArtifact),
	}
}

// Predict scores a feature vector. Missing, null or non-numeric features are
// imputed with the schema normal-range midpoint (zero without range data) and
// reported in the output warnings rather than failing the request.
func (p *Predictor) Predict(task schema.Task, features map[string]interface{}) (*models.ModelOutput, error) {
	artifact, err := p.loadArtifact(task)
	if err != nil {
		return nil, fmt.Errorf("loading model artifact for %s: %w", task, err)
	}
	names := artifact.Model.FeatureNames
	if len(names) == 0 {
		return nil, fmt.Errorf("artifact for %s missing feature names", task)
	}
	if len(artifact.Model.Weights.Coefficients) != len(names) {
		return nil, fmt.Errorf("artifact for %s has %d coefficients for %d features",
			task, len(artifact.Model.Weights.Coefficients), len(names))
	}

	var warnings []string
	sample := make([]float64, len(names))
	for i, name := range names {
		value, present := features[name]
		if present && !models.IsNull(value) {
			if numeric, err := models.ToFloat(value); err == nil {
				sample[i] = numeric
				continue
			}
		}
		imputed := p.midpoint(task, name)
		sample[i] = imputed
		warnings = append(warnings, fmt.Sprintf("feature %s missing or non-numeric, imputed %v", name, imputed))
	}

	sum := artifact.Model.Weights.Bias
	for i, coeff := range artifact.Model.Weights.Coefficients {
		sum += coeff * sample[i]
	}
	probability := sigmoid(sum)

	label := 0
	if probability >= 0.5 {
		label = 1
	}
	return &models.ModelOutput{Label: label, Probability: probability, Warnings: warnings}, nil
}

func (p *Predictor) midpoint(task schema.Task, feature string) float64 {
	if p.registry == nil {
		return 0
	}
	rng, ok := p.registry.NormalRange(task, feature)
	if !ok {
		return 0
	}
	return (rng.Min + rng.Max) / 2
}

func (p *Predictor) loadArtifact(task schema.Task) (Artifact, error) {
	latest := filepath.Join(p.dir, fmt.Sprintf("%s_latest.json", task))
	info, err := os.Stat(latest)
	if err != nil {
		return Artifact{}, err
	}
	mod := info.ModTime().UnixNano()

	p.mu.RLock()
	cached, ok := p.cache[task]
	p.mu.RUnlock()
	if ok && cached.modTime == mod {
		return cached.artifact, nil
	}

	content, err := os.ReadFile(latest)
	if err != nil {
		return Artifact{}, err
	}
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return Artifact{}, err
	}
	p.mu.Lock()
	p.cache[task] = cachedArtifact{artifact: artifact, modTime: mod}
	p.mu.Unlock()
	return artifact, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
