package analyses

import (
	"strings"

	"cvmatch-backend/internal/analyses/advisory"
)

// MergeSuggestions folds advisory suggestions into the heuristic base list,
// mutating base in place. Advisory suggestions come first with the top two
// at high priority and the rest at medium; heuristic suggestions whose
// titles the advisory set does not cover are retained at low priority when
// they are skill or verb gaps, and dropped otherwise. An empty advisory
// list leaves base untouched.
func MergeSuggestions(base *[]Suggestion, fromModel []advisory.Suggestion) {
	if len(fromModel) == 0 {
		return
	}

	advisoryTitles := make([]string, 0, len(fromModel))
	for _, s := range fromModel {
		advisoryTitles = append(advisoryTitles, strings.ToLower(s.Title))
	}

	retained := make([]Suggestion, 0, len(*base))
	for _, b := range *base {
		if b.Type != SuggestionMissingSkills && b.Type != SuggestionMissingVerbs {
			continue
		}
		covered := false
		for _, title := range advisoryTitles {
			if titleOverlap(strings.ToLower(b.Title), title) {
				covered = true
				break
			}
		}
		if !covered {
			b.Priority = PriorityLow
			retained = append(retained, b)
		}
	}

	merged := make([]Suggestion, 0, len(fromModel)+len(retained))
	for i, s := range fromModel {
		priority := PriorityMedium
		if i < 2 {
			priority = PriorityHigh
		}
		suggestionType := s.Type
		if suggestionType == "" {
			suggestionType = SuggestionRecruiterInsight
		}
		examples := s.Examples
		if examples == nil {
			examples = []string{}
		}
		merged = append(merged, Suggestion{
			Type:     suggestionType,
			Title:    s.Title,
			Body:     s.Body,
			Examples: examples,
			Priority: priority,
		})
	}
	*base = append(merged, retained...)
}

// titleOverlap reports whether two lowercase titles refer to the same
// advice: one contains the other, or they share a significant word.
// "add python" overlaps "learn python scripting" through "python".
func titleOverlap(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if containsFold(a, b) || containsFold(b, a) {
		return true
	}
	wordsB := make(map[string]bool)
	for _, w := range strings.Fields(b) {
		if significantWord(w) {
			wordsB[w] = true
		}
	}
	for _, w := range strings.Fields(a) {
		if significantWord(w) && wordsB[w] {
			return true
		}
	}
	return false
}

// fillerWords are verbs and glue common in suggestion titles; sharing one
// says nothing about the advice being the same.
var fillerWords = map[string]bool{
	"add": true, "your": true, "learn": true, "improve": true, "more": true,
	"with": true, "skills": true, "use": true, "include": true, "highlight": true,
}

func significantWord(w string) bool {
	return len(w) >= 4 && !fillerWords[w]
}

// containsFold is a case-insensitive substring check.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
