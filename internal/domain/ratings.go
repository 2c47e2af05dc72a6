package domain

import "strings"

// Ladder maps a score percentage to a star count and a rating label.
// Thresholds are the minimum percentages for five, four, three and two
// stars; anything below the last threshold is one star. Labels are indexed
// by stars, five first.
type Ladder struct {
	Thresholds [4]int
	Labels     [5]string
}

// Evaluate returns the stars and label for score out of maxScore.
func (l Ladder) Evaluate(score, maxScore int) (int, string) {
	pct := 0
	if maxScore > 0 {
		pct = score * 100 / maxScore
	}
	stars := 1
	switch {
	case pct >= l.Thresholds[0]:
		stars = 5
	case pct >= l.Thresholds[1]:
		stars = 4
	case pct >= l.Thresholds[2]:
		stars = 3
	case pct >= l.Thresholds[3]:
		stars = 2
	}
	return stars, l.Labels[5-stars]
}

// StarString renders a star count as repeated star glyphs.
func StarString(stars int) string {
	if stars < 1 {
		stars = 1
	}
	if stars > 5 {
		stars = 5
	}
	return strings.Repeat("⭐", stars)
}

// ApexLadder rates Apex classes and triggers.
var ApexLadder = Ladder{
	Thresholds: [4]int{90, 75, 60, 45},
	Labels:     [5]string{"Excellent", "Very Good", "Good", "Needs Work", "Critical Issues"},
}

// FlowLadder rates Flow metadata. Flows are held to a tighter curve than
// Apex because a Flow ships without a test suite in front of it.
var FlowLadder = Ladder{
	Thresholds: [4]int{95, 85, 75, 60},
	Labels:     [5]string{"Excellent", "Very Good", "Good", "Fair", "Needs Improvement"},
}

// QueryLadder rates standalone SOQL files and data scripts.
var QueryLadder = Ladder{
	Thresholds: [4]int{90, 80, 70, 60},
	Labels:     [5]string{"Excellent", "Very Good", "Good", "Fair", "Needs Improvement"},
}

// SkillLadder rates skill definition documents.
var SkillLadder = Ladder{
	Thresholds: [4]int{90, 75, 60, 45},
	Labels:     [5]string{"Excellent", "Very Good", "Good", "Needs Work", "Critical Issues"},
}

// LadderFor returns the rating ladder used for an artifact kind.
func LadderFor(kind ArtifactKind) Ladder {
	switch kind {
	case KindFlow:
		return FlowLadder
	case KindSOQL, KindAnonApex:
		return QueryLadder
	case KindSkill:
		return SkillLadder
	default:
		return ApexLadder
	}
}

// MaxScoreFor returns the total score budget for an artifact kind.
func MaxScoreFor(kind ArtifactKind) int {
	switch kind {
	case KindFlow:
		return 110
	case KindSOQL, KindAnonApex:
		return 100
	case KindSkill:
		return 100
	default:
		return 150
	}
}
