package reconcile

import (
	"sort"

	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

// Merge combines two partial feature mappings under the precedence policy. For
// a key present in both, the preferred source wins unless its value is null or
// empty, in which case the other source's value is kept. Keys present in only
// one source pass through. Pure and deterministic.
func Merge(extracted, userInputs map[string]interface{}, preferUser bool) map[string]interface{} {
	merged := make(map[string]interface{}, len(extracted)+len(userInputs))
	for k, v := range extracted {
		merged[k] = v
	}
	for k, userVal := range userInputs {
		extractedVal, present := merged[k]
		if !present {
			merged[k] = userVal
			continue
		}
		if preferUser {
			if !models.IsNull(userVal) {
				merged[k] = userVal
			}
			continue
		}
		if models.IsNull(extractedVal) && !models.IsNull(userVal) {
			merged[k] = userVal
		}
	}
	return merged
}

// Resolver applies the merge precedence rule against a task's schema, producing
// the schema-ordered resolved set and the residual missing list.
type Resolver struct {
	registry *schema.Registry
}

func NewResolver(registry *schema.Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Complete merges extracted and user-supplied values and orders the result
// against the task schema. Every schema key appears in the returned map, with
// nil for unresolved values, and the same keys appear in stillMissing in schema
// order. Out-of-schema user keys are ignored for schema-bound tasks. Merging an
// already-merged set with empty overrides returns the same result.
func (r *Resolver) Complete(task schema.Task, extracted, userInputs map[string]interface{}, preferUser bool) (*models.FeatureMap, []string, error) {
	if _, err := schema.ParseTask(string(task)); err != nil {
		return nil, nil, err
	}

	merged := Merge(extracted, userInputs, preferUser)

	ordered := models.NewFeatureMap()
	stillMissing := []string{}

	if task == schema.TaskGeneral {
		// Schema-free: pass the union through, sorted for determinism.
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ordered.Set(k, merged[k])
		}
		return ordered, stillMissing, nil
	}

	names, err := r.registry.FeatureNames(task)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range names {
		value, present := merged[name]
		if !present || models.IsNull(value) {
			ordered.Set(name, nil)
			stillMissing = append(stillMissing, name)
			continue
		}
		ordered.Set(name, value)
	}
	return ordered, stillMissing, nil
}
