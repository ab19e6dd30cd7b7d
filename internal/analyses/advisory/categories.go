package advisory

import (
	"context"
	"fmt"
	"strings"

	"cvmatch-backend/internal/analyses/heuristic"
)

const keyCategoryCount = 6

// Categories is the reconciled category partition for one analysis.
// Key always holds exactly six labels, Matched and Missing partition Key,
// and Bonus never overlaps Key.
type Categories struct {
	Key     []string `json:"keyCategories"`
	Matched []string `json:"matchedCategories"`
	Missing []string `json:"missingCategories"`
	Bonus   []string `json:"bonusCategories"`
}

// ExtractCategories obtains the category partition from the model, walking
/// a fallback chain when the structured call fails: plain-text delimited
// labels, generic padding, plain-text matched/bonus probes, and finally CV
// substring containment. The output always satisfies the partition
// invariants regardless of which rung produced it.
func (s *Service) ExtractCategories(ctx context.Context, cvText, jdText string) (Categories, Meta) {
	if !s.Enabled() {
		return Categories{}, metaDisabled()
	}

	payload := cvJDPayload(cvText, jdText, categoriesCVBudget, categoriesJDBudget)
	parsed, resp, err := s.generateJSON(ctx, "categories", categoriesSystemPrompt, payload, 1024)
	if err != nil {
		return Categories{}, metaError(resp.Model, err)
	}

	if cats, ok := coerceCategories(parsed, cvText); ok {
		meta := Meta{Enabled: true, Model: resp.Model, Status: StatusOK}
		if resp.Truncated {
			meta.Status = StatusPartial
		}
		return cats, meta
	}

	return s.categoriesPlainTextFallback(ctx, cvText, jdText)
}

// coerceCategories builds a valid partition from loosely parsed output.
// ok is false when the output carries no usable key_categories at all.
func coerceCategories(parsed map[string]any, cvText string) (Categories, bool) {
	if parsed == nil {
		return Categories{}, false
	}
	key := titleCaseAll(asStringSlice(parsed, "key_categories"))
	if len(key) == 0 {
		return Categories{}, false
	}
	cats := reconcileCategories(
		key,
		titleCaseAll(asStringSlice(parsed, "matched_categories")),
		titleCaseAll(asStringSlice(parsed, "bonus_categories")),
		cvText,
	)
	return cats, true
}

func (s *Service) categoriesPlainTextFallback(ctx context.Context, cvText, jdText string) (Categories, Meta) {
	jdOnly := "JOB DESCRIPTION:\n" + truncateRunes(jdText, categoriesJDBudget)
	line, resp, err := s.generateText(ctx, "categories_plain", categoriesPlainSystemPrompt, jdOnly, 256)
	if err != nil {
		return Categories{}, metaError(resp.Model, err)
	}

	key := titleCaseAll(splitDelimited(line))
	if len(key) == 0 {
		// Nothing from the model at all; generic labels against the CV.
		cats := reconcileCategories(nil, nil, nil, cvText)
		return cats, Meta{Enabled: true, Model: resp.Model, Status: StatusEmpty}
	}

	matched := s.probeMatchedCategories(ctx, key, cvText)
	bonus := s.probeBonusCategories(ctx, key, cvText)
	cats := reconcileCategories(key, matched, bonus, cvText)
	return cats, Meta{Enabled: true, Model: resp.Model, Status: StatusPartial}
}

// probeMatchedCategories asks which of the key labels the CV covers; a nil
// return means the probe failed and substring containment decides instead.
func (s *Service) probeMatchedCategories(ctx context.Context, key []string, cvText string) []string {
	user := fmt.Sprintf("CATEGORIES: %s\n\nCV:\n%s",
		strings.Join(key, " | "), truncateRunes(cvText, categoriesCVBudget))
	line, _, err := s.generateText(ctx, "categories_matched", categorySplitSystemPrompt, user, 128)
	if err != nil || strings.TrimSpace(line) == "" {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(line), "NONE") {
		return []string{}
	}
	return titleCaseAll(splitDelimited(line))
}

func (s *Service) probeBonusCategories(ctx context.Context, key []string, cvText string) []string {
	user := fmt.Sprintf("KNOWN CATEGORIES: %s\n\nCV:\n%s",
		strings.Join(key, " | "), truncateRunes(cvText, categoriesCVBudget))
	line, _, err := s.generateText(ctx, "categories_bonus", bonusCategoriesSystemPrompt, user, 128)
	if err != nil || strings.TrimSpace(line) == "" || strings.EqualFold(strings.TrimSpace(line), "NONE") {
		return nil
	}
	return titleCaseAll(splitDelimited(line))
}

// reconcileCategories enforces the partition invariants: exactly six key
// labels (padded from the generic list), matched limited to key, missing is
// the complement, bonus disjoint from key. A nil matched list falls back to
// CV substring containment.
func reconcileCategories(key, matched, bonus []string, cvText string) Categories {
	key = dedupe(key)
	if len(key) > keyCategoryCount {
		key = key[:keyCategoryCount]
	}
	for _, generic := range heuristic.GenericCategories() {
		if len(key) == keyCategoryCount {
			break
		}
		if !containsString(key, generic) {
			key = append(key, generic)
		}
	}

	cvLow := strings.ToLower(cvText)
	if matched == nil {
		for _, cat := range key {
			if strings.Contains(cvLow, strings.ToLower(cat)) {
				matched = append(matched, cat)
			}
		}
	}

	out := Categories{
		Key:     key,
		Matched: []string{},
		Missing: []string{},
		Bonus:   []string{},
	}
	matchedSet := make(map[string]bool, len(matched))
	for _, cat := range matched {
		matchedSet[strings.ToLower(cat)] = true
	}
	for _, cat := range key {
		if matchedSet[strings.ToLower(cat)] {
			out.Matched = append(out.Matched, cat)
		} else {
			out.Missing = append(out.Missing, cat)
		}
	}
	for _, cat := range dedupe(bonus) {
		if !containsString(key, cat) {
			out.Bonus = append(out.Bonus, cat)
		}
	}
	return out
}

func splitDelimited(line string) []string {
	line = strings.TrimSpace(line)
	sep := "|"
	if !strings.Contains(line, "|") {
		if strings.Contains(line, ",") {
			sep = ","
		} else {
			sep = "\n"
		}
	}
	parts := strings.Split(line, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(p), "-•*0123456789. "))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func titleCaseAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := heuristic.TitleCategory(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		low := strings.ToLower(v)
		if v == "" || seen[low] {
			continue
		}
		seen[low] = true
		out = append(out, v)
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
