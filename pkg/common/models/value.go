package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToFloat coerces the loosely-typed values that arrive from JSON payloads and
// extractor output into a float64.
func ToFloat(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", value)
	}
}

// IsNull reports whether a feature value counts as "known absent": an explicit
// nil or an empty string. Distinct from the key not being present at all.
func IsNull(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
