package heuristic

import (
	"math"
	"strings"
	"unicode"
)

// stopwords excluded from the similarity vectors; they dominate frequency
// counts without carrying matching signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "of": true, "on": true,
	"or": true, "our": true, "that": true, "the": true, "to": true,
	"we": true, "with": true, "you": true, "your": true, "will": true,
}

// tokenize lowercases text and splits it on non-alphanumeric runes, keeping
// '+' and '#' so language names like c++ and c# survive.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if r == '+' || r == '#' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func termFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if stopwords[tok] {
			continue
		}
		freq[tok]++
	}
	return freq
}

// cosineSimilarity scores two term-frequency vectors in [0,1].
func cosineSimilarity(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for tok, fa := range a {
		normA += float64(fa * fa)
		if fb, ok := b[tok]; ok {
			dot += float64(fa * fb)
		}
	}
	for _, fb := range b {
		normB += float64(fb * fb)
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// textSimilarityScore rounds cosine similarity to an integer percentage.
func textSimilarityScore(cvText, jdText string) int {
	sim := cosineSimilarity(
		termFrequencies(tokenize(cvText)),
		termFrequencies(tokenize(jdText)),
	)
	return int(math.Round(sim * 100))
}

// containsSkill reports whether normalized text mentions a lexicon skill.
// Multi-word and symbol-bearing skills match as substrings; plain single
// words require an exact token to avoid "java" matching "javascript".
func containsSkill(loweredText string, tokens map[string]int, skill string) bool {
	if strings.ContainsAny(skill, " .+#/") {
		return strings.Contains(loweredText, skill)
	}
	_, ok := tokens[skill]
	return ok
}
