package advisory

import (
	"context"
	"strings"
)

// SkillMark is one concrete skill and whether the CV shows it.
type SkillMark struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// SkillGroup buckets the JD's concrete skills under one key category.
type SkillGroup struct {
	Category   string      `json:"category"`
	Skills     []SkillMark `json:"skills"`
	Importance string      `json:"importance"`
}

// ExtractSkillGroups asks the model to bucket the JD's skills under the
// given key categories. Groups naming an unknown category or carrying no
// skills are dropped; found flags are decided locally against the CV so
// they stay consistent with the rest of the report.
func (s *Service) ExtractSkillGroups(ctx context.Context, cvText, jdText string, keyCategories []string) ([]SkillGroup, Meta) {
	if !s.Enabled() {
		return []SkillGroup{}, metaDisabled()
	}

	user := "CATEGORIES: " + strings.Join(keyCategories, " | ") +
		"\n\nJOB DESCRIPTION:\n" + truncateRunes(jdText, skillGroupsJDBudget)
	parsed, resp, err := s.generateJSON(ctx, "skill_groups", skillGroupsSystemPrompt, user, 1024)
	if err != nil {
		return []SkillGroup{}, metaError(resp.Model, err)
	}

	groups := coerceSkillGroups(parsed, keyCategories, cvText)
	meta := Meta{Enabled: true, Model: resp.Model, Status: StatusOK}
	if len(groups) == 0 {
		meta.Status = StatusEmpty
	} else if resp.Truncated {
		meta.Status = StatusPartial
	}
	return groups, meta
}

func coerceSkillGroups(parsed map[string]any, keyCategories []string, cvText string) []SkillGroup {
	out := []SkillGroup{}
	if parsed == nil {
		return out
	}
	cvLow := strings.ToLower(cvText)
	seen := make(map[string]bool)
	for _, raw := range asMapSlice(parsed, "skill_groups") {
		category := matchKeyCategory(asString(raw, "category", ""), keyCategories)
		if category == "" || seen[category] {
			continue
		}
		names := asStringSlice(raw, "skills")
		if len(names) == 0 {
			continue
		}
		skills := make([]SkillMark, 0, len(names))
		for _, name := range names {
			skills = append(skills, SkillMark{
				Name:  name,
				Found: strings.Contains(cvLow, strings.ToLower(name)),
			})
		}
		out = append(out, SkillGroup{
			Category:   category,
			Skills:     skills,
			Importance: normalizeImportance(asString(raw, "importance", "")),
		})
		seen[category] = true
	}
	return out
}

// matchKeyCategory maps a model-reported label onto one of the key
// categories, tolerating case and minor wording drift.
func matchKeyCategory(label string, keyCategories []string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	for _, key := range keyCategories {
		if strings.EqualFold(label, key) {
			return key
		}
	}
	low := strings.ToLower(label)
	for _, key := range keyCategories {
		keyLow := strings.ToLower(key)
		if strings.Contains(low, keyLow) || strings.Contains(keyLow, low) {
			return key
		}
	}
	return ""
}

func normalizeImportance(value string) string {
	if equalsFoldAny(value, "nice-to-have", "nice to have", "optional", "preferred") {
		return "Nice-to-have"
	}
	return "Must-have"
}
