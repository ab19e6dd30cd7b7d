package advisory

import (
	"math"
	"strconv"
	"strings"
)

// Field accessors over loosely parsed model output. Every helper is total:
// wrong types and absent keys yield the zero value or the given fallback,
// never an error.

func asString(m map[string]any, key, fallback string) string {
	switch v := m[key].(type) {
	case string:
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fallback
}

func asStringSlice(m map[string]any, key string) []string {
	out := []string{}
	switch v := m[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

// asScore reads an integer score clamped to [0,100]. Accepts numbers and
// numeric strings, which the model emits interchangeably.
func asScore(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return clampScore(int(math.Round(v)))
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return clampScore(int(math.Round(n)))
		}
	}
	return 0
}

func asBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

func asMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func asMapSlice(m map[string]any, key string) []map[string]any {
	v, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(v))
	for _, item := range v {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func equalsFoldAny(value string, candidates ...string) bool {
	value = strings.TrimSpace(value)
	for _, c := range candidates {
		if strings.EqualFold(value, c) {
			return true
		}
	}
	return false
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
