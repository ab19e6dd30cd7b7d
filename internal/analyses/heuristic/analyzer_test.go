package heuristic

import (
	"reflect"
	"testing"
)

const sampleCV = `Senior software engineer with 6 years of experience.
Built and shipped services in Python and Go (golang), deployed on AWS with
Docker and Kubernetes. Led a team of four, mentored juniors.
PostgreSQL and Redis in production. Bachelor of Science in CS.
Location: Berlin, Germany (remote friendly)`

const sampleJD = `Looking for a backend engineer, 5+ years experience.
Must have: Python, Golang, AWS, Docker, Kubernetes, PostgreSQL.
You will have designed and implemented distributed systems.
Bachelor degree required. Location: Berlin or remote.`

func TestAnalyzeIdempotent(t *testing.T) {
	first := Analyze(sampleCV, sampleJD)
	second := Analyze(sampleCV, sampleJD)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs produced different results")
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	res := Analyze("", "")
	if res.ATS != 0 || res.TextSimilarity != 0 || res.SkillMatch != 0 || res.VerbAlignment != 0 {
		t.Fatalf("empty input produced non-zero scores: %+v", res)
	}
	if len(res.MatchedSkills) != 0 || len(res.MissingSkills) != 0 {
		t.Fatal("empty input produced skill lists")
	}
	if res.QuickMatch.Experience.CVValue != NotSpecified {
		t.Fatalf("experience cvValue = %q, want sentinel", res.QuickMatch.Experience.CVValue)
	}
	if res.QuickMatch.Location.MatchQuality != QualityNone {
		t.Fatalf("location quality = %q", res.QuickMatch.Location.MatchQuality)
	}
}

func TestAnalyzeCategoryPartition(t *testing.T) {
	res := Analyze(sampleCV, sampleJD)
	if len(res.KeyCategories) != 6 {
		t.Fatalf("key categories = %d, want 6: %v", len(res.KeyCategories), res.KeyCategories)
	}

	union := map[string]bool{}
	for _, c := range res.MatchedCategories {
		union[c] = true
	}
	for _, c := range res.MissingCategories {
		union[c] = true
	}
	if len(union) != len(res.MatchedCategories)+len(res.MissingCategories) {
		t.Fatal("matched and missing categories overlap")
	}
	for _, c := range res.KeyCategories {
		if !union[c] {
			t.Fatalf("key category %q missing from matched/missing union", c)
		}
		delete(union, c)
	}
	if len(union) != 0 {
		t.Fatalf("matched/missing contain non-key categories: %v", union)
	}

	key := map[string]bool{}
	for _, c := range res.KeyCategories {
		key[c] = true
	}
	for _, c := range res.BonusCategories {
		if key[c] {
			t.Fatalf("bonus category %q is also a key category", c)
		}
	}
}

func TestAnalyzeSkillMatchPositive(t *testing.T) {
	res := Analyze("Python developer, 5 years", "Looking for Python developer")
	if res.SkillMatch <= 0 {
		t.Fatalf("skillMatch = %d, want > 0", res.SkillMatch)
	}
}

func TestAnalyzeMatchedAndMissingSkills(t *testing.T) {
	res := Analyze(sampleCV, sampleJD)
	matched := map[string]bool{}
	for _, s := range res.MatchedSkills {
		matched[s] = true
	}
	for _, want := range []string{"python", "golang", "aws", "docker", "kubernetes", "postgresql"} {
		if !matched[want] {
			t.Fatalf("expected matched skill %q, got %v", want, res.MatchedSkills)
		}
	}
	for _, s := range res.MissingSkills {
		if matched[s] {
			t.Fatalf("skill %q both matched and missing", s)
		}
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	for _, tc := range []struct{ cv, jd string }{
		{sampleCV, sampleJD},
		{"", sampleJD},
		{sampleCV, ""},
		{"x", "y"},
	} {
		res := Analyze(tc.cv, tc.jd)
		for name, score := range map[string]int{
			"ats":            res.ATS,
			"textSimilarity": res.TextSimilarity,
			"skillMatch":     res.SkillMatch,
			"verbAlignment":  res.VerbAlignment,
		} {
			if score < 0 || score > 100 {
				t.Fatalf("%s = %d out of range for cv=%q jd=%q", name, score, tc.cv, tc.jd)
			}
		}
	}
}

func TestExperienceDimension(t *testing.T) {
	tests := []struct {
		name    string
		cv, jd  string
		quality string
	}{
		{"meets requirement", "6 years of experience", "5+ years required", QualityStrong},
		{"one year short", "4 years of experience", "5+ years required", QualityGood},
		{"well short", "2 yrs experience", "7 years required", QualityWeak},
		{"cv silent", "software engineer", "5 years required", QualityNone},
		{"jd silent", "6 years of experience", "engineer wanted", QualityGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dim := experienceDimension(tt.cv, tt.jd)
			if dim.MatchQuality != tt.quality {
				t.Fatalf("quality = %q, want %q", dim.MatchQuality, tt.quality)
			}
		})
	}
}

func TestEducationDimension(t *testing.T) {
	dim := educationDimension("Master of Science in CS", "Bachelor degree required")
	if dim.MatchQuality != QualityStrong {
		t.Fatalf("quality = %q, want strong for exceeding requirement", dim.MatchQuality)
	}
	dim = educationDimension("Bachelor of Arts", "Master degree required")
	if dim.MatchQuality != QualityWeak {
		t.Fatalf("quality = %q, want weak for one level short", dim.MatchQuality)
	}
}

func TestTitleCategory(t *testing.T) {
	for in, want := range map[string]string{
		"data engineering":    "Data Engineering",
		"  CLOUD   devops  ":  "Cloud Devops",
		"":                    "",
		"project management":  "Project Management",
	} {
		if got := TitleCategory(in); got != want {
			t.Fatalf("TitleCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenizeKeepsSymbols(t *testing.T) {
	tokens := termFrequencies(tokenize("C++ and c# developer, knows go."))
	for _, want := range []string{"c++", "c#", "go", "developer"} {
		if tokens[want] == 0 {
			t.Fatalf("token %q not found in %v", want, tokens)
		}
	}
	if tokens["and"] != 0 {
		t.Fatal("stopword survived tokenization")
	}
}
