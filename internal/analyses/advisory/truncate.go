package advisory

// Per-task input budgets, in runes. Each prompt has its own CV/JD limits so
// the combined payload stays inside the model's request budget.
const (
	categoriesCVBudget = 2000
	categoriesJDBudget = 1700

	scoresCVBudget = 1800
	scoresJDBudget = 1500

	insightsCVBudget = 1800
	insightsJDBudget = 1400

	skillGroupsJDBudget = 2000

	rewriteCVBudget = 2200
	rewriteJDBudget = 1200
)

// truncateRunes cuts s to at most limit runes without splitting a rune.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := 0
	for i := range s {
		if runes == limit {
			return s[:i]
		}
		runes++
	}
	return s
}
