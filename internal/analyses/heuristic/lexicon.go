package heuristic

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// skillLexicon groups well-known CV/JD skills under short category labels.
// Categories double as the candidate pool for the six key categories of an
// analysis.
var skillLexicon = map[string][]string{
	"Programming Languages": {
		"python", "java", "javascript", "typescript", "golang", "c++", "c#",
		"ruby", "php", "rust", "kotlin", "swift", "scala", "sql",
	},
	"Web Development": {
		"react", "angular", "vue", "node.js", "django", "flask", "spring",
		"rails", ".net", "html", "css", "rest api", "graphql",
	},
	"Data & Analytics": {
		"pandas", "numpy", "spark", "hadoop", "tableau", "power bi", "excel",
		"etl", "data analysis", "statistics", "machine learning",
		"tensorflow", "pytorch",
	},
	"Cloud & DevOps": {
		"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
		"jenkins", "ci/cd", "linux", "ansible", "git",
	},
	"Databases": {
		"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
		"oracle", "sqlite", "dynamodb", "cassandra",
	},
	"Project Management": {
		"agile", "scrum", "kanban", "jira", "confluence",
		"stakeholder management", "roadmap", "sprint planning",
	},
	"Communication": {
		"presentation", "technical writing", "documentation",
		"public speaking", "negotiation", "collaboration",
	},
	"Leadership": {
		"mentoring", "team lead", "people management", "coaching",
		"hiring", "strategy",
	},
	"Design": {
		"figma", "sketch", "photoshop", "ui design", "ux research",
		"wireframing", "prototyping",
	},
	"Testing & Quality": {
		"unit testing", "integration testing", "selenium", "cypress",
		"tdd", "qa",
	},
}

// genericCategories pad the key-category set when the JD does not surface
// enough lexicon categories.
var genericCategories = []string{
	"Technical Skills",
	"Communication",
	"Problem Solving",
	"Teamwork",
	"Leadership",
	"Domain Knowledge",
}

var actionVerbs = []string{
	"achieved", "automated", "built", "created", "delivered", "designed",
	"developed", "drove", "implemented", "improved", "launched", "led",
	"managed", "mentored", "optimized", "owned", "reduced", "scaled",
	"shipped", "streamlined",
}

var titleCaser = cases.Title(language.English)

// TitleCategory normalizes a category label to the title-cased form used
// across the report: "data engineering" -> "Data Engineering".
func TitleCategory(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(s))
}

// GenericCategories returns a copy of the fixed padding list.
func GenericCategories() []string {
	out := make([]string, len(genericCategories))
	copy(out, genericCategories)
	return out
}

var skillToCategory = func() map[string]string {
	m := make(map[string]string)
	for category, skills := range skillLexicon {
		for _, skill := range skills {
			m[skill] = category
		}
	}
	return m
}()

// CategoryOfSkill returns the lexicon category a skill belongs to, or ""
// for unknown skills.
func CategoryOfSkill(skill string) string {
	return skillToCategory[strings.ToLower(strings.TrimSpace(skill))]
}
