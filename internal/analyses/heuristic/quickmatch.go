package heuristic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const NotSpecified = "Not specified"

// Match quality grades, strongest first.
const (
	QualityStrong = "Strong Match"
	QualityGood   = "Good Match"
	QualityWeak   = "Weak Match"
	QualityNone   = "Not a Match"
)

// Dimension is one compared facet of the CV/JD pair.
type Dimension struct {
	CVValue      string `json:"cvValue"`
	JDValue      string `json:"jdValue"`
	MatchQuality string `json:"matchQuality"`
}

// QuickMatch is the four-facet at-a-glance comparison.
type QuickMatch struct {
	Experience Dimension `json:"experience"`
	Education  Dimension `json:"education"`
	Skills     Dimension `json:"skills"`
	Location   Dimension `json:"location"`
}

// DefaultQuickMatch returns the fully populated sentinel shape.
func DefaultQuickMatch() QuickMatch {
	d := Dimension{CVValue: NotSpecified, JDValue: NotSpecified, MatchQuality: QualityNone}
	return QuickMatch{Experience: d, Education: d, Skills: d, Location: d}
}

var yearsPattern = regexp.MustCompile(`(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)

func extractYears(text string) int {
	best := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

func experienceDimension(cvText, jdText string) Dimension {
	cvYears := extractYears(cvText)
	jdYears := extractYears(jdText)

	dim := Dimension{CVValue: NotSpecified, JDValue: NotSpecified, MatchQuality: QualityNone}
	if cvYears > 0 {
		dim.CVValue = fmt.Sprintf("%d years", cvYears)
	}
	if jdYears > 0 {
		dim.JDValue = fmt.Sprintf("%d+ years", jdYears)
	}

	switch {
	case cvYears == 0:
		dim.MatchQuality = QualityNone
	case jdYears == 0:
		dim.MatchQuality = QualityGood
	case cvYears >= jdYears:
		dim.MatchQuality = QualityStrong
	case cvYears >= jdYears-1:
		dim.MatchQuality = QualityGood
	default:
		dim.MatchQuality = QualityWeak
	}
	return dim
}

// educationLevels in ascending rank order; the label is what surfaces in the
// report.
var educationLevels = []struct {
	keywords []string
	label    string
	rank     int
}{
	{[]string{"phd", "ph.d", "doctorate"}, "Doctorate", 4},
	{[]string{"master", "mba", "m.s.", "msc"}, "Master's degree", 3},
	{[]string{"bachelor", "b.s.", "bsc", "b.a.", "undergraduate degree"}, "Bachelor's degree", 2},
	{[]string{"associate degree", "diploma"}, "Associate/Diploma", 1},
}

func extractEducation(text string) (string, int) {
	lowered := strings.ToLower(text)
	for _, level := range educationLevels {
		for _, kw := range level.keywords {
			if strings.Contains(lowered, kw) {
				return level.label, level.rank
			}
		}
	}
	return "", 0
}

func educationDimension(cvText, jdText string) Dimension {
	cvLabel, cvRank := extractEducation(cvText)
	jdLabel, jdRank := extractEducation(jdText)

	dim := Dimension{CVValue: NotSpecified, JDValue: NotSpecified, MatchQuality: QualityNone}
	if cvLabel != "" {
		dim.CVValue = cvLabel
	}
	if jdLabel != "" {
		dim.JDValue = jdLabel
	}

	switch {
	case cvRank == 0:
		dim.MatchQuality = QualityNone
	case jdRank == 0:
		dim.MatchQuality = QualityGood
	case cvRank >= jdRank:
		dim.MatchQuality = QualityStrong
	case cvRank == jdRank-1:
		dim.MatchQuality = QualityWeak
	default:
		dim.MatchQuality = QualityNone
	}
	return dim
}

func skillsDimension(matched, missing []string) Dimension {
	total := len(matched) + len(missing)
	dim := Dimension{CVValue: NotSpecified, JDValue: NotSpecified, MatchQuality: QualityNone}
	if total == 0 {
		return dim
	}
	dim.CVValue = fmt.Sprintf("%d of %d required skills", len(matched), total)
	dim.JDValue = fmt.Sprintf("%d required skills", total)

	ratio := float64(len(matched)) / float64(total)
	switch {
	case ratio >= 0.75:
		dim.MatchQuality = QualityStrong
	case ratio >= 0.5:
		dim.MatchQuality = QualityGood
	case ratio > 0:
		dim.MatchQuality = QualityWeak
	default:
		dim.MatchQuality = QualityNone
	}
	return dim
}

var locationHints = []string{"location:", "based in", "remote", "hybrid", "on-site", "onsite"}

func extractLocation(text string) string {
	for _, line := range strings.Split(text, "\n") {
		lowered := strings.ToLower(line)
		for _, hint := range locationHints {
			if strings.Contains(lowered, hint) {
				value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "Location:"))
				value = strings.TrimSpace(strings.TrimPrefix(value, "location:"))
				if len(value) > 60 {
					value = value[:60]
				}
				return value
			}
		}
	}
	return ""
}

func locationDimension(cvText, jdText string) Dimension {
	cvLoc := extractLocation(cvText)
	jdLoc := extractLocation(jdText)

	dim := Dimension{CVValue: NotSpecified, JDValue: NotSpecified, MatchQuality: QualityNone}
	if cvLoc != "" {
		dim.CVValue = cvLoc
	}
	if jdLoc != "" {
		dim.JDValue = jdLoc
	}

	cvLow, jdLow := strings.ToLower(cvLoc), strings.ToLower(jdLoc)
	switch {
	case cvLoc == "" || jdLoc == "":
		dim.MatchQuality = QualityNone
	case strings.Contains(cvLow, "remote") && strings.Contains(jdLow, "remote"):
		dim.MatchQuality = QualityStrong
	case strings.EqualFold(cvLoc, jdLoc):
		dim.MatchQuality = QualityStrong
	case strings.Contains(cvLow, jdLow) || strings.Contains(jdLow, cvLow):
		dim.MatchQuality = QualityGood
	default:
		dim.MatchQuality = QualityWeak
	}
	return dim
}

// qualityScore maps a grade to its contribution toward the composite score.
func qualityScore(quality string) int {
	switch quality {
	case QualityStrong:
		return 100
	case QualityGood:
		return 70
	case QualityWeak:
		return 40
	default:
		return 0
	}
}

func quickMatchScore(qm QuickMatch) int {
	sum := qualityScore(qm.Experience.MatchQuality) +
		qualityScore(qm.Education.MatchQuality) +
		qualityScore(qm.Skills.MatchQuality) +
		qualityScore(qm.Location.MatchQuality)
	return sum / 4
}
