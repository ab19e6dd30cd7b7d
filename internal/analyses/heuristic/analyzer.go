package heuristic

import (
	"math"
	"sort"
	"strings"
)

const keyCategoryCount = 6

// Result is everything the deterministic pass can derive from the raw
// texts. It is complete on its own: when no advisory model is configured
// the report is assembled from this alone.
type Result struct {
	TextSimilarity int
	SkillMatch     int
	VerbAlignment  int
	ATS            int

	MatchedSkills []string
	MissingSkills []string
	MatchedVerbs  []string
	MissingVerbs  []string

	KeyCategories     []string
	MatchedCategories []string
	MissingCategories []string
	BonusCategories   []string

	QuickMatch QuickMatch
}

// Analyze runs the rule-based pass over the CV and JD texts. It performs no
// I/O and never fails; empty input yields zero scores and empty lists.
// Identical inputs always produce identical output.
func Analyze(cvText, jdText string) Result {
	cvLow := strings.ToLower(cvText)
	jdLow := strings.ToLower(jdText)
	cvTokens := termFrequencies(tokenize(cvText))
	jdTokens := termFrequencies(tokenize(jdText))

	res := Result{
		MatchedSkills:     []string{},
		MissingSkills:     []string{},
		MatchedVerbs:      []string{},
		MissingVerbs:      []string{},
		KeyCategories:     []string{},
		MatchedCategories: []string{},
		MissingCategories: []string{},
		BonusCategories:   []string{},
		QuickMatch:        DefaultQuickMatch(),
	}
	if strings.TrimSpace(cvText) == "" && strings.TrimSpace(jdText) == "" {
		return res
	}

	// Skill coverage over the lexicon, plus per-category JD hit counts used
	// to rank the key categories.
	type catHits struct {
		name   string
		jdHits int
		cvHits int
	}
	hits := make([]catHits, 0, len(skillLexicon))
	for category, skills := range skillLexicon {
		ch := catHits{name: category}
		for _, skill := range skills {
			inJD := containsSkill(jdLow, jdTokens, skill)
			inCV := containsSkill(cvLow, cvTokens, skill)
			if inJD {
				ch.jdHits++
				if inCV {
					res.MatchedSkills = append(res.MatchedSkills, skill)
				} else {
					res.MissingSkills = append(res.MissingSkills, skill)
				}
			}
			if inCV {
				ch.cvHits++
			}
		}
		hits = append(hits, ch)
	}
	sort.Strings(res.MatchedSkills)
	sort.Strings(res.MissingSkills)

	// Key categories: lexicon categories ranked by JD hits, padded from the
	// generic list up to exactly six.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].jdHits != hits[j].jdHits {
			return hits[i].jdHits > hits[j].jdHits
		}
		return hits[i].name < hits[j].name
	})
	inKey := make(map[string]bool, keyCategoryCount)
	for _, ch := range hits {
		if ch.jdHits == 0 || len(res.KeyCategories) == keyCategoryCount {
			break
		}
		res.KeyCategories = append(res.KeyCategories, ch.name)
		inKey[ch.name] = true
		if ch.cvHits > 0 {
			res.MatchedCategories = append(res.MatchedCategories, ch.name)
		} else {
			res.MissingCategories = append(res.MissingCategories, ch.name)
		}
	}
	for _, generic := range genericCategories {
		if len(res.KeyCategories) == keyCategoryCount {
			break
		}
		if inKey[generic] {
			continue
		}
		res.KeyCategories = append(res.KeyCategories, generic)
		inKey[generic] = true
		if strings.Contains(cvLow, strings.ToLower(generic)) {
			res.MatchedCategories = append(res.MatchedCategories, generic)
		} else {
			res.MissingCategories = append(res.MissingCategories, generic)
		}
	}

	// Bonus: lexicon categories the CV covers that the JD never asked for.
	for _, ch := range hits {
		if ch.cvHits > 0 && ch.jdHits == 0 && !inKey[ch.name] {
			res.BonusCategories = append(res.BonusCategories, ch.name)
		}
	}
	sort.Strings(res.BonusCategories)

	// Verb coverage against the JD's action verbs.
	var jdVerbs, cvVerbs []string
	for _, verb := range actionVerbs {
		inJD := containsSkill(jdLow, jdTokens, verb)
		inCV := containsSkill(cvLow, cvTokens, verb)
		if inCV {
			cvVerbs = append(cvVerbs, verb)
		}
		if inJD {
			jdVerbs = append(jdVerbs, verb)
			if inCV {
				res.MatchedVerbs = append(res.MatchedVerbs, verb)
			} else {
				res.MissingVerbs = append(res.MissingVerbs, verb)
			}
		}
	}

	res.TextSimilarity = textSimilarityScore(cvText, jdText)
	res.SkillMatch = ratioScore(len(res.MatchedSkills), len(res.MatchedSkills)+len(res.MissingSkills))
	if len(jdVerbs) > 0 {
		res.VerbAlignment = ratioScore(len(res.MatchedVerbs), len(jdVerbs))
	} else {
		res.VerbAlignment = clampInt(10 * len(cvVerbs))
	}

	res.QuickMatch = QuickMatch{
		Experience: experienceDimension(cvText, jdText),
		Education:  educationDimension(cvText, jdText),
		Skills:     skillsDimension(res.MatchedSkills, res.MissingSkills),
		Location:   locationDimension(cvText, jdText),
	}

	res.ATS = clampInt(int(math.Round(
		0.35*float64(res.SkillMatch) +
			0.30*float64(res.TextSimilarity) +
			0.15*float64(res.VerbAlignment) +
			0.20*float64(quickMatchScore(res.QuickMatch)))))

	return res
}

func ratioScore(part, total int) int {
	if total == 0 {
		return 0
	}
	return clampInt(int(math.Round(100 * float64(part) / float64(total))))
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
