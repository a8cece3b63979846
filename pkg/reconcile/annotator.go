package reconcile

import (
	"fmt"
	"strings"

	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

// Extraction provenance sources.
const (
	SourceParsed  = "parsed"
	SourceLLM     = "llm"
	SourceImputed = "imputed"
	SourceUnknown = "unknown"
)

// Confidence tiers. The contract is the ordering, not the literal values:
// observed sources must sit strictly above imputed and unknown.
const (
	confidenceParsed  = 0.92
	confidenceLLM     = 0.93
	confidenceImputed = 0.50
	confidenceUnknown = 0.50
)

// Annotator attaches provenance, confidence and normal-range annotations to
// each target feature. It describes how values were extracted, independent of
// how the merge step later resolves them.
type Annotator struct {
	registry *schema.Registry
}

func NewAnnotator(registry *schema.Registry) *Annotator {
	return &Annotator{registry: registry}
}

// Annotate produces one FeatureMeta per target feature. A failure annotating a
// single feature downgrades that feature to a low-confidence unknown record
// with the reason attached; it never aborts the batch.
func (a *Annotator) Annotate(task schema.Task, target []string, resolved map[string]interface{}, raw map[string]models.RawPair) map[string]models.FeatureMeta {
	out := make(map[string]models.FeatureMeta, len(target))
	for _, feature := range target {
		meta, err := a.annotateOne(task, feature, resolved, raw)
		if err != nil {
			meta = models.FeatureMeta{
				Value:      resolved[feature],
				Confidence: confidenceUnknown,
				Source:     SourceUnknown,
				Reason:     err.Error(),
			}
		}
		out[feature] = meta
	}
	return out
}

func (a *Annotator) annotateOne(task schema.Task, feature string, resolved map[string]interface{}, raw map[string]models.RawPair) (models.FeatureMeta, error) {
	if a.registry == nil {
		return models.FeatureMeta{}, fmt.Errorf("no schema registry configured")
	}

	meta := models.FeatureMeta{Value: resolved[feature]}

	pair, observed := raw[strings.ToLower(feature)]
	switch {
	case observed && pair.Source == SourceLLM:
		meta.Source = SourceLLM
		meta.Confidence = confidenceLLM
		meta.Unit = pair.Unit
	case observed:
		meta.Source = SourceParsed
		meta.Confidence = confidenceParsed
		meta.Unit = pair.Unit
	case !models.IsNull(resolved[feature]):
		meta.Source = SourceImputed
		meta.Confidence = confidenceImputed
	default:
		meta.Source = SourceUnknown
		meta.Confidence = confidenceUnknown
	}

	if rng, ok := a.registry.NormalRange(task, feature); ok {
		r := rng
		meta.NormalRange = &r
		if value, err := models.ToFloat(meta.Value); err == nil {
			meta.OutOfRange = value < rng.Min || value > rng.Max
		}
	}

	return meta, nil
}

// OverallConfidence is the mean per-feature confidence, the single number the
// UI shows for an extraction run. Zero when nothing was annotated.
func OverallConfidence(meta map[string]models.FeatureMeta) float64 {
	if len(meta) == 0 {
		return 0
	}
	var sum float64
	for _, m := range meta {
		sum += m.Confidence
	}
	return sum / float64(len(meta))
}
