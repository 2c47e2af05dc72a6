package domain

import "sort"

// Severity levels for issues, ordered from most to least severe.
// CRITICAL, WARNING and INFO come from the built-in rules; HIGH, MODERATE
// and LOW only appear on violations merged from an external scan.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityModerate = "MODERATE"
	SeverityWarning  = "WARNING"
	SeverityLow      = "LOW"
	SeverityInfo     = "INFO"
)

var severityOrder = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityModerate: 2,
	SeverityWarning:  3,
	SeverityLow:      4,
	SeverityInfo:     5,
}

// SeverityRank returns the sort rank of a severity. Unknown severities
// sort after INFO.
func SeverityRank(severity string) int {
	if r, ok := severityOrder[severity]; ok {
		return r
	}
	return len(severityOrder)
}

// SortIssues orders issues by severity rank, most severe first. The sort
// is stable so issues of equal severity keep their discovery order.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return SeverityRank(issues[i].Severity) < SeverityRank(issues[j].Severity)
	})
}

// Issue is a single problem found in an artifact.
type Issue struct {
	Severity string `json:"severity"`
	Category string `json:"category"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
	Rule     string `json:"rule,omitempty"`
	Source   string `json:"source,omitempty"` // empty for built-in rules, engine name for external scans
}

// CategoryResult is one scoring category of a validation report. The score
// starts at MaxScore and deductions pull it down, never below zero.
type CategoryResult struct {
	Name        string   `json:"name"`
	Score       int      `json:"score"`
	MaxScore    int      `json:"max_score"`
	Issues      []Issue  `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// NewCategoryResult returns a category at full score.
func NewCategoryResult(name string, maxScore int) CategoryResult {
	return CategoryResult{Name: name, Score: maxScore, MaxScore: maxScore}
}

// Deduct subtracts points and records the issue. The score floors at zero,
// so a category can never deduct more than its budget.
func (c *CategoryResult) Deduct(points int, issue Issue) {
	c.Score -= points
	if c.Score < 0 {
		c.Score = 0
	}
	c.Issues = append(c.Issues, issue)
}

// Penalize subtracts points without recording a new issue. Used when a
// finding already reported under one category also costs another, so the
// report does not repeat itself.
func (c *CategoryResult) Penalize(points int) {
	c.Score -= points
	if c.Score < 0 {
		c.Score = 0
	}
}

// Suggest records an advisory note that carries no deduction.
func (c *CategoryResult) Suggest(note string) {
	c.Suggestions = append(c.Suggestions, note)
}

// Deducted returns how many points this category lost.
func (c CategoryResult) Deducted() int {
	return c.MaxScore - c.Score
}

// ScanStatus describes one external scanner invocation.
type ScanStatus struct {
	Available  bool     `json:"available"`
	Engines    []string `json:"engines,omitempty"`
	Violations int      `json:"violations"`
	ElapsedMS  int64    `json:"elapsed_ms,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// ExternalViolation is one finding reported by an external scan engine.
type ExternalViolation struct {
	Engine   string `json:"engine"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

// externalDeductions maps a violation severity to the points it removes
// from the combined score.
var externalDeductions = map[string]int{
	SeverityCritical: 10,
	SeverityHigh:     5,
	SeverityModerate: 3,
	SeverityWarning:  2,
	SeverityLow:      1,
	SeverityInfo:     0,
}

// DeductionFor returns the score deduction for an external violation
// severity. Unknown severities deduct nothing.
func DeductionFor(severity string) int {
	return externalDeductions[severity]
}

// QueryAssessment is the outcome of planning one extracted query against
// a live org.
type QueryAssessment struct {
	Line               int      `json:"line"`
	Query              string   `json:"query,omitempty"`
	Cost               float64  `json:"relative_cost"`
	Operation          string   `json:"leading_operation"`
	InLoop             bool     `json:"in_loop"`
	Rating             string   `json:"rating"`
	Cardinality        int64    `json:"cardinality,omitempty"`
	SObjectCardinality int64    `json:"sobject_cardinality,omitempty"`
	Notes              []string `json:"notes,omitempty"`
}

// Selective reports whether the planned query stays under the relative
// cost threshold for index use.
func (a QueryAssessment) Selective() bool { return a.Cost <= 1.0 }

// ValidationReport is the result of validating a single artifact.
type ValidationReport struct {
	Artifact           string            `json:"artifact"`
	Kind               ArtifactKind      `json:"kind"`
	Score              int               `json:"score"`
	MaxScore           int               `json:"max_score"`
	Stars              int               `json:"stars"`
	Rating             string            `json:"rating"`
	Categories         []CategoryResult  `json:"categories"`
	Issues             []Issue           `json:"issues,omitempty"`
	Recommendations    []string          `json:"recommendations,omitempty"`
	CustomScore        int               `json:"custom_score"`
	ExternalDeductions int               `json:"external_deductions"`
	Scan               *ScanStatus       `json:"scan,omitempty"`
	Plans              []QueryAssessment `json:"plans,omitempty"`

	// Meta carries kind-specific header facts for renderers, such as the
	// flow label, API version and fault path coverage.
	Meta map[string]string `json:"meta,omitempty"`
}

// NewReport assembles a report from category results: sums the clamped
// category scores, collects and sorts issues, and applies the ladder.
func NewReport(artifact string, kind ArtifactKind, categories []CategoryResult, ladder Ladder) *ValidationReport {
	score, maxScore := 0, 0
	var issues []Issue
	var recs []string
	for _, c := range categories {
		score += c.Score
		maxScore += c.MaxScore
		issues = append(issues, c.Issues...)
		recs = append(recs, c.Suggestions...)
	}
	SortIssues(issues)

	r := &ValidationReport{
		Artifact:        artifact,
		Kind:            kind,
		Score:           score,
		MaxScore:        maxScore,
		Categories:      categories,
		Issues:          issues,
		Recommendations: recs,
		CustomScore:     score,
	}
	r.Stars, r.Rating = ladder.Evaluate(score, maxScore)
	return r
}

// MergeExternal folds external scan violations into the report: each
// violation becomes an issue and deducts points by severity. The custom
// score is retained so renderers can show the split. The combined score
// floors at zero and the ladder is re-applied.
func (r *ValidationReport) MergeExternal(scan *ScanStatus, violations []ExternalViolation, ladder Ladder) {
	r.Scan = scan
	if len(violations) == 0 {
		return
	}

	deducted := 0
	for _, v := range violations {
		deducted += DeductionFor(v.Severity)
		r.Issues = append(r.Issues, Issue{
			Severity: v.Severity,
			Category: "external",
			File:     v.File,
			Line:     v.Line,
			Message:  v.Message,
			Rule:     v.Rule,
			Source:   v.Engine,
		})
	}
	SortIssues(r.Issues)

	r.ExternalDeductions = deducted
	r.Score = r.CustomScore - deducted
	if r.Score < 0 {
		r.Score = 0
	}
	r.Stars, r.Rating = ladder.Evaluate(r.Score, r.MaxScore)
}

// Percent returns the score as an integer percentage of the maximum.
func (r *ValidationReport) Percent() int {
	if r.MaxScore == 0 {
		return 0
	}
	return r.Score * 100 / r.MaxScore
}

// CriticalCount returns how many issues are CRITICAL.
func (r *ValidationReport) CriticalCount() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// Unreadable builds the report for an artifact that could not be read:
// score zero and a single CRITICAL issue. Validation never fails outright
// on bad input.
func Unreadable(path string, kind ArtifactKind, err error) *ValidationReport {
	return &ValidationReport{
		Artifact: path,
		Kind:     kind,
		Score:    0,
		MaxScore: MaxScoreFor(kind),
		Stars:    1,
		Rating:   "Unreadable",
		Issues: []Issue{{
			Severity: SeverityCritical,
			Category: "input",
			File:     path,
			Message:  "could not read artifact: " + err.Error(),
		}},
	}
}
