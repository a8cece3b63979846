package report

import "strings"

// StripNulls removes NUL bytes from strings anywhere inside a nested structure.
// Postgres rejects \x00 in text and JSON columns, and OCR output can carry it.
func StripNulls(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return strings.ReplaceAll(v, "\x00", "")
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = StripNulls(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[strings.ReplaceAll(k, "\x00", "")] = StripNulls(item)
		}
		return out
	default:
		return value
	}
}
