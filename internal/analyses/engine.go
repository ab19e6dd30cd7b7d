package analyses

import (
	"context"
	"fmt"
	"strings"

	"cvmatch-backend/internal/analyses/advisory"
	"cvmatch-backend/internal/analyses/heuristic"
	"cvmatch-backend/internal/shared/telemetry"
)

// Engine runs the full analysis pipeline: the deterministic pass, the
// advisory tasks when a model is configured, and the reconciliation into
// one complete Report. Analyze never fails; the worst case is a report
// built entirely from heuristic data with the Meta statuses saying so.
type Engine struct {
	Advisory *advisory.Service
}

func NewEngine(adv *advisory.Service) *Engine {
	if adv == nil {
		adv = advisory.NewService(nil)
	}
	return &Engine{Advisory: adv}
}

// Analyze produces the compatibility report for one CV/JD pair.
func (e *Engine) Analyze(ctx context.Context, cvText, jdText string) Report {
	h := heuristic.Analyze(cvText, jdText)
	report := reportFromHeuristic(h)

	if !e.Advisory.Enabled() {
		return report
	}
	report.Meta.AdvisoryEnabled = true

	cats, catsMeta := e.Advisory.ExtractCategories(ctx, cvText, jdText)
	report.Meta.Categories = catsMeta
	if usable(catsMeta) && len(cats.Key) == 6 {
		report.KeyCategories = cats.Key
		report.MatchedCategories = cats.Matched
		report.MissingCategories = cats.Missing
		report.BonusCategories = cats.Bonus
		// The heuristic groups were bucketed under the heuristic key set.
		// Keep only the ones still inside the key set in case the later
		// skill-groups call falls back and leaves them in place.
		report.SkillGroups = groupsInKeySet(report.SkillGroups, report.KeyCategories)
	}

	groups, groupsMeta := e.Advisory.ExtractSkillGroups(ctx, cvText, jdText, report.KeyCategories)
	report.Meta.SkillGroups = groupsMeta
	if usable(groupsMeta) && len(groups) > 0 {
		report.SkillGroups = groups
	}

	scores, scoresMeta := e.Advisory.ScoreAndQuickMatch(ctx, cvText, jdText)
	report.Meta.Scores = scoresMeta
	if scores.HasScores {
		report.Scores = Scores{
			ATS:            scores.Scores.ATS,
			TextSimilarity: scores.Scores.TextSimilarity,
			SkillMatch:     scores.Scores.SkillMatch,
			VerbAlignment:  scores.Scores.VerbAlignment,
		}
	}
	if scores.HasQuickMatch {
		report.QuickMatch = scores.QuickMatch
	}

	insights, insightsMeta := e.Advisory.GenerateInsights(ctx, cvText, jdText)
	report.Meta.Insights = insightsMeta
	if insights.ProfileSummary != "" {
		report.ProfileSummary = insights.ProfileSummary
	}
	MergeSuggestions(&report.Suggestions, insights.Suggestions)

	telemetry.Info("analysis.assembled", map[string]any{
		"categories": catsMeta.Status,
		"skills":     groupsMeta.Status,
		"scores":     scoresMeta.Status,
		"insights":   insightsMeta.Status,
	})
	return report
}

// groupsInKeySet filters skill groups down to the ones whose category is in
// the key set. Every emitted group must belong to a key category.
func groupsInKeySet(groups []advisory.SkillGroup, keySet []string) []advisory.SkillGroup {
	inKey := make(map[string]bool, len(keySet))
	for _, c := range keySet {
		inKey[c] = true
	}
	kept := make([]advisory.SkillGroup, 0, len(groups))
	for _, g := range groups {
		if inKey[g.Category] {
			kept = append(kept, g)
		}
	}
	return kept
}

// usable marks the statuses whose data the assembler may prefer over the
// heuristic values.
func usable(m advisory.Meta) bool {
	return m.Status == advisory.StatusOK || m.Status == advisory.StatusPartial
}

// reportFromHeuristic builds a complete report from the deterministic pass
// alone, with every advisory section marked disabled/empty.
func reportFromHeuristic(h heuristic.Result) Report {
	disabled := advisory.Meta{Enabled: false, Status: advisory.StatusEmpty}
	return Report{
		Scores: Scores{
			ATS:            h.ATS,
			TextSimilarity: h.TextSimilarity,
			SkillMatch:     h.SkillMatch,
			VerbAlignment:  h.VerbAlignment,
		},
		QuickMatch:        h.QuickMatch,
		KeyCategories:     h.KeyCategories,
		MatchedCategories: h.MatchedCategories,
		MissingCategories: h.MissingCategories,
		BonusCategories:   h.BonusCategories,
		SkillGroups:       heuristicSkillGroups(h),
		MatchedSkills:     h.MatchedSkills,
		MissingSkills:     h.MissingSkills,
		ProfileSummary:    "",
		Suggestions:       baseSuggestions(h),
		Meta: ReportMeta{
			Categories:  disabled,
			SkillGroups: disabled,
			Scores:      disabled,
			Insights:    disabled,
		},
	}
}

// heuristicSkillGroups buckets the matched and missing skills under their
// lexicon categories, keeping only groups inside the key-category set.
func heuristicSkillGroups(h heuristic.Result) []advisory.SkillGroup {
	inKey := make(map[string]bool, len(h.KeyCategories))
	for _, c := range h.KeyCategories {
		inKey[c] = true
	}

	byCategory := make(map[string][]advisory.SkillMark)
	order := []string{}
	addSkill := func(name string, found bool) {
		category := heuristic.CategoryOfSkill(name)
		if category == "" || !inKey[category] {
			return
		}
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		byCategory[category] = append(byCategory[category], advisory.SkillMark{Name: name, Found: found})
	}
	for _, s := range h.MatchedSkills {
		addSkill(s, true)
	}
	for _, s := range h.MissingSkills {
		addSkill(s, false)
	}

	groups := make([]advisory.SkillGroup, 0, len(order))
	for _, category := range order {
		groups = append(groups, advisory.SkillGroup{
			Category:   category,
			Skills:     byCategory[category],
			Importance: "Must-have",
		})
	}
	return groups
}

// baseSuggestions is the low-priority fallback pool derived from the
// heuristic gaps. It survives the merge only where the advisory model had
// nothing equivalent to say.
func baseSuggestions(h heuristic.Result) []Suggestion {
	out := []Suggestion{}
	if len(h.MissingSkills) > 0 {
		top := h.MissingSkills
		if len(top) > 5 {
			top = top[:5]
		}
		out = append(out, Suggestion{
			Type:     SuggestionMissingSkills,
			Title:    fmt.Sprintf("Add missing skills: %s", strings.Join(top, ", ")),
			Body:     "The job description asks for these skills but the CV does not mention them. Add the ones you actually have, with concrete usage examples.",
			Examples: top,
			Priority: PriorityMedium,
		})
	}
	if len(h.MissingVerbs) > 0 {
		top := h.MissingVerbs
		if len(top) > 5 {
			top = top[:5]
		}
		out = append(out, Suggestion{
			Type:     SuggestionMissingVerbs,
			Title:    fmt.Sprintf("Use stronger action verbs: %s", strings.Join(top, ", ")),
			Body:     "The job description uses these action verbs; mirroring them in your bullet points strengthens the match.",
			Examples: top,
			Priority: PriorityMedium,
		})
	}
	return out
}
