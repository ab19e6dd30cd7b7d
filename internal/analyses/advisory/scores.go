package advisory

import (
	"context"

	"cvmatch-backend/internal/analyses/heuristic"
)

// ScoreSet mirrors the report's four integer scores.
type ScoreSet struct {
	ATS            int `json:"ats"`
	TextSimilarity int `json:"textSimilarity"`
	SkillMatch     int `json:"skillMatch"`
	VerbAlignment  int `json:"verbAlignment"`
}

// ScoresResult is the combined scoring output. HasScores and HasQuickMatch
// report which halves carry model data; the assembler keeps heuristic
// values for the halves that stayed default.
type ScoresResult struct {
	Scores          ScoreSet
	QuickMatch      heuristic.QuickMatch
	MatchedKeywords []string
	MissingKeywords []string
	HasScores       bool
	HasQuickMatch   bool
}

// ScoreAndQuickMatch runs the scoring cascade: the combined schema first,
// a minimal schema without keyword lists when everything came back default,
// then two narrow single-purpose calls as the last resort, merging whatever
// partial data returns.
func (s *Service) ScoreAndQuickMatch(ctx context.Context, cvText, jdText string) (ScoresResult, Meta) {
	if !s.Enabled() {
		return defaultScoresResult(), metaDisabled()
	}

	payload := cvJDPayload(cvText, jdText, scoresCVBudget, scoresJDBudget)

	parsed, resp, err := s.generateJSON(ctx, "scores", scoresSystemPrompt, payload, 1024)
	if err != nil {
		return defaultScoresResult(), metaError(resp.Model, err)
	}
	result := coerceScoresResult(parsed)
	if result.HasScores || result.HasQuickMatch {
		meta := Meta{Enabled: true, Model: resp.Model, Status: StatusOK}
		if resp.Truncated || !result.HasScores || !result.HasQuickMatch {
			meta.Status = StatusPartial
		}
		return result, meta
	}

	parsed, resp, err = s.generateJSON(ctx, "scores_minimal", scoresMinimalSystemPrompt, payload, 768)
	if err != nil {
		return defaultScoresResult(), metaError(resp.Model, err)
	}
	result = coerceScoresResult(parsed)
	if result.HasScores || result.HasQuickMatch {
		return result, Meta{Enabled: true, Model: resp.Model, Status: StatusPartial}
	}

	return s.narrowScoreCalls(ctx, payload)
}

// narrowScoreCalls issues the two single-purpose requests and merges the
// partial data. Either call failing leaves its half at defaults.
func (s *Service) narrowScoreCalls(ctx context.Context, payload string) (ScoresResult, Meta) {
	result := defaultScoresResult()
	model := ""

	if parsed, resp, err := s.generateJSON(ctx, "scores_only", scoresOnlySystemPrompt, payload, 256); err == nil {
		model = resp.Model
		if scores, ok := coerceScoreSet(parsed); ok {
			result.Scores = scores
			result.HasScores = true
		}
	}
	if parsed, resp, err := s.generateJSON(ctx, "quickmatch_only", quickMatchOnlySystemPrompt, payload, 512); err == nil {
		if model == "" {
			model = resp.Model
		}
		if qm, ok := coerceQuickMatch(parsed); ok {
			result.QuickMatch = qm
			result.HasQuickMatch = true
		}
	}

	status := StatusPartial
	if !result.HasScores && !result.HasQuickMatch {
		status = StatusEmpty
	}
	return result, Meta{Enabled: true, Model: model, Status: status}
}

func defaultScoresResult() ScoresResult {
	return ScoresResult{
		QuickMatch:      heuristic.DefaultQuickMatch(),
		MatchedKeywords: []string{},
		MissingKeywords: []string{},
	}
}

func coerceScoresResult(parsed map[string]any) ScoresResult {
	result := defaultScoresResult()
	if parsed == nil {
		return result
	}
	if scores, ok := coerceScoreSet(asMap(parsed, "scores")); ok {
		result.Scores = scores
		result.HasScores = true
	}
	if qm, ok := coerceQuickMatch(asMap(parsed, "quick_match")); ok {
		result.QuickMatch = qm
		result.HasQuickMatch = true
	}
	result.MatchedKeywords = asStringSlice(parsed, "matched_keywords")
	result.MissingKeywords = asStringSlice(parsed, "missing_keywords")
	return result
}

// coerceScoreSet reads the four scores; ok is false when every score is
// absent or zero, which the cascade treats as an all-default answer.
func coerceScoreSet(m map[string]any) (ScoreSet, bool) {
	if m == nil {
		return ScoreSet{}, false
	}
	set := ScoreSet{
		ATS:            asScore(m, "ats"),
		TextSimilarity: asScore(m, "text_similarity"),
		SkillMatch:     asScore(m, "skill_match"),
		VerbAlignment:  asScore(m, "verb_alignment"),
	}
	ok := set.ATS > 0 || set.TextSimilarity > 0 || set.SkillMatch > 0 || set.VerbAlignment > 0
	return set, ok
}

// coerceQuickMatch fills all four dimensions with sentinels for anything
// absent; ok is false when every dimension stayed at the sentinel.
func coerceQuickMatch(m map[string]any) (heuristic.QuickMatch, bool) {
	qm := heuristic.DefaultQuickMatch()
	if m == nil {
		return qm, false
	}
	qm.Experience = coerceDimension(asMap(m, "experience"))
	qm.Education = coerceDimension(asMap(m, "education"))
	qm.Skills = coerceDimension(asMap(m, "skills"))
	qm.Location = coerceDimension(asMap(m, "location"))
	ok := !isDefaultDimension(qm.Experience) || !isDefaultDimension(qm.Education) ||
		!isDefaultDimension(qm.Skills) || !isDefaultDimension(qm.Location)
	return qm, ok
}

func coerceDimension(m map[string]any) heuristic.Dimension {
	dim := heuristic.Dimension{
		CVValue:      heuristic.NotSpecified,
		JDValue:      heuristic.NotSpecified,
		MatchQuality: heuristic.QualityNone,
	}
	if m == nil {
		return dim
	}
	dim.CVValue = asString(m, "cv_value", heuristic.NotSpecified)
	dim.JDValue = asString(m, "jd_value", heuristic.NotSpecified)
	dim.MatchQuality = normalizeQuality(asString(m, "match_quality", heuristic.QualityNone))
	return dim
}

func normalizeQuality(value string) string {
	switch {
	case equalsFoldAny(value, "strong match", "strong"):
		return heuristic.QualityStrong
	case equalsFoldAny(value, "good match", "good"):
		return heuristic.QualityGood
	case equalsFoldAny(value, "weak match", "weak", "partial match", "partial"):
		return heuristic.QualityWeak
	default:
		return heuristic.QualityNone
	}
}

func isDefaultDimension(d heuristic.Dimension) bool {
	return d.CVValue == heuristic.NotSpecified &&
		d.JDValue == heuristic.NotSpecified &&
		d.MatchQuality == heuristic.QualityNone
}
