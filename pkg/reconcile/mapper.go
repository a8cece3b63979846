package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/atul23g/multiDiseasePred/pkg/alias"
	"github.com/atul23g/multiDiseasePred/pkg/common/models"
	"github.com/atul23g/multiDiseasePred/pkg/schema"
)

// Mapper canonicalizes raw extracted lab pairs against a task's target feature
// list. It is a pure function over its inputs: every raw pair either
// contributes to a canonical feature or generates a warning, and every target
// feature lands in either the resolved set or the missing list.
type Mapper struct {
	registry *schema.Registry
	aliases  *alias.Table
	units    *UnitTable
}

func NewMapper(registry *schema.Registry, aliases *alias.Table, units *UnitTable) *Mapper {
	if units == nil {
		units = DefaultUnits()
	}
	return &Mapper{registry: registry, aliases: aliases, units: units}
}

// MapFeatures resolves raw pairs keyed by lowercase free-text lab name into the
// canonical features named by target. The general task is schema-free: every
// parsed pair passes through with numeric coercion attempted, nothing is
// missing and nothing warns.
func (m *Mapper) MapFeatures(task schema.Task, raw map[string]models.RawPair, target []string) (map[string]interface{}, []string, []string) {
	feats := make(map[string]interface{})
	missing := []string{}
	warnings := []string{}

	if task == schema.TaskGeneral {
		for name, pair := range raw {
			if f, err := models.ToFloat(pair.Value); err == nil {
				feats[name] = f
			} else {
				feats[name] = pair.Value
			}
		}
		return feats, missing, warnings
	}

	targetSet := make(map[string]struct{}, len(target))
	for _, name := range target {
		targetSet[name] = struct{}{}
	}

	// canonical feature -> raw keys claiming it
	candidates := make(map[string][]string)
	var unmatched []string
	for rawKey := range raw {
		key := strings.ToLower(strings.TrimSpace(rawKey))
		if _, ok := targetSet[key]; ok {
			candidates[key] = append(candidates[key], rawKey)
			continue
		}
		if canonical, ok := m.aliases.Resolve(string(task), rawKey); ok {
			if _, wanted := targetSet[canonical]; wanted {
				candidates[canonical] = append(candidates[canonical], rawKey)
				continue
			}
		}
		unmatched = append(unmatched, rawKey)
	}

	for _, feature := range target {
		keys := candidates[feature]
		if len(keys) == 0 {
			missing = append(missing, feature)
			continue
		}

		chosen := pickCandidate(feature, keys)
		if len(keys) > 1 {
			sorted := append([]string(nil), keys...)
			sort.Strings(sorted)
			warnings = append(warnings, fmt.Sprintf(
				"ambiguous match for %s: %s all map to it, using %q", feature, strings.Join(sorted, ", "), chosen))
		}

		value, resolved, featWarnings := m.coerce(task, feature, chosen, raw[chosen])
		warnings = append(warnings, featWarnings...)
		if !resolved {
			missing = append(missing, feature)
			continue
		}
		feats[feature] = value
	}

	sort.Strings(unmatched)
	for _, rawKey := range unmatched {
		warnings = append(warnings, fmt.Sprintf("unrecognized lab %q does not map to any %s feature", rawKey, task))
	}

	return feats, missing, warnings
}

// pickCandidate resolves duplicate raw keys deterministically: an exact name
// match beats aliases, otherwise the lexicographically smallest raw key wins.
func pickCandidate(feature string, keys []string) string {
	chosen := ""
	for _, k := range keys {
		if strings.ToLower(strings.TrimSpace(k)) == feature {
			if chosen == "" || strings.ToLower(k) < strings.ToLower(chosen) {
				chosen = k
			}
		}
	}
	if chosen != "" {
		return chosen
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return sorted[0]
}

// coerce turns a raw pair into a canonical feature value, converting units
// where a fixed factor is known. A numeric feature whose value cannot be parsed
// resolves to missing with a warning rather than an error.
func (m *Mapper) coerce(task schema.Task, feature, rawKey string, pair models.RawPair) (interface{}, bool, []string) {
	field, hasField := m.registry.Field(task, feature)

	numeric, numErr := models.ToFloat(pair.Value)
	if hasField && field.Type != "numeric" {
		// Categorical features take numbers when parseable, raw values otherwise.
		if numErr == nil {
			return numeric, true, nil
		}
		if models.IsNull(pair.Value) {
			return nil, false, []string{fmt.Sprintf("empty value for %s (from %q)", feature, rawKey)}
		}
		return pair.Value, true, nil
	}

	if numErr != nil {
		return nil, false, []string{fmt.Sprintf("unparsable value %v for %s (from %q)", pair.Value, feature, rawKey)}
	}

	from := NormalizeUnit(pair.Unit)
	canonical := NormalizeUnit(field.Unit)
	if from == "" || canonical == "" || from == canonical {
		return numeric, true, nil
	}
	if factor, ok := m.units.Factor(feature, from); ok {
		converted := numeric * factor
		return converted, true, []string{fmt.Sprintf("converted %s from %s to %s (%v -> %v)", feature, from, canonical, numeric, converted)}
	}
	return numeric, true, []string{fmt.Sprintf("unit %q for %s differs from canonical %q, kept raw value", pair.Unit, feature, field.Unit)}
}
