package analyses

import (
	"cvmatch-backend/internal/analyses/advisory"
	"cvmatch-backend/internal/analyses/heuristic"
)

// Scores are the four integer compatibility scores, each in [0,100].
type Scores struct {
	ATS            int `json:"ats"`
	TextSimilarity int `json:"textSimilarity"`
	SkillMatch     int `json:"skillMatch"`
	VerbAlignment  int `json:"verbAlignment"`
}

// Suggestion is one improvement suggestion in the final report.
type Suggestion struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Examples []string `json:"examples"`
	Priority string   `json:"priority"`
}

// Suggestion types and priorities.
const (
	SuggestionMissingSkills    = "missing_skills"
	SuggestionMissingVerbs     = "missing_verbs"
	SuggestionRecruiterInsight = "recruiter_insight"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ReportMeta carries per-section provenance so callers can tell model
// output from heuristic fallback.
type ReportMeta struct {
	AdvisoryEnabled bool          `json:"advisoryEnabled"`
	Categories      advisory.Meta `json:"categories"`
	SkillGroups     advisory.Meta `json:"skillGroups"`
	Scores          advisory.Meta `json:"scores"`
	Insights        advisory.Meta `json:"insights"`
}

// Report is the complete analysis result. Every field is always populated:
// the assembler substitutes heuristic or default values for any advisory
// section that failed, and signals that only through Meta.
type Report struct {
	Scores            Scores                `json:"scores"`
	QuickMatch        heuristic.QuickMatch  `json:"quickMatch"`
	KeyCategories     []string              `json:"keyCategories"`
	MatchedCategories []string              `json:"matchedCategories"`
	MissingCategories []string              `json:"missingCategories"`
	BonusCategories   []string              `json:"bonusCategories"`
	SkillGroups       []advisory.SkillGroup `json:"skillGroups"`
	MatchedSkills     []string              `json:"matchedSkills"`
	MissingSkills     []string              `json:"missingSkills"`
	ProfileSummary    string                `json:"profileSummary"`
	Suggestions       []Suggestion          `json:"suggestions"`
	Meta              ReportMeta            `json:"meta"`
}
