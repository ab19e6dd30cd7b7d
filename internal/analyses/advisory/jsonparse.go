package advisory

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFencePattern     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseLooseJSON recovers an object from raw model output. It tries, in
// order: a direct parse; stripping code fences and surrounding prose down to
// the outermost {...} span with trailing commas removed; and a last-resort
// reparse after substituting Python-style literal tokens. Returns nil when
// nothing parses.
func ParseLooseJSON(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if m := tryParse(raw); m != nil {
		return m
	}

	cleaned := stripToObject(raw)
	if cleaned != "" {
		if m := tryParse(cleaned); m != nil {
			return m
		}
		if m := tryParse(fixLiteralTokens(cleaned)); m != nil {
			return m
		}
	}
	return nil
}

func tryParse(s string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

// stripToObject removes code fences and prose around the payload and
// returns the outermost {...} span with trailing commas stripped.
func stripToObject(raw string) string {
	if fence := codeFencePattern.FindStringSubmatch(raw); fence != nil {
		raw = fence[1]
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	span := raw[start : end+1]
	return trailingCommaPattern.ReplaceAllString(span, "$1")
}

// fixLiteralTokens rewrites Python literal syntax the model sometimes emits
// (True/False/None, single-quoted strings) into JSON.
func fixLiteralTokens(s string) string {
	replacer := strings.NewReplacer(
		": True", ": true",
		": False", ": false",
		": None", ": null",
		":True", ":true",
		":False", ":false",
		":None", ":null",
	)
	s = replacer.Replace(s)
	if !strings.Contains(s, `"`) && strings.Contains(s, "'") {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	return s
}
