// Package testresults parses Apex test run output, in JSON or
// human-readable form, and classifies failures into actionable fix
// guidance for iterative repair loops.
package testresults

import (
	"sort"
	"strings"
)

// Summary aggregates one test run.
type Summary struct {
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Skipped         int     `json:"skipped"`
	Total           int     `json:"total"`
	CoveragePercent float64 `json:"coverage_percent"`
}

// Failure is one failed test method.
type Failure struct {
	Class      string  `json:"class"`
	Method     string  `json:"method"`
	Message    string  `json:"message"`
	StackTrace string  `json:"stack_trace,omitempty"`
	RunTime    float64 `json:"run_time,omitempty"`
}

// Coverage is the line coverage of one class or trigger.
type Coverage struct {
	Class          string  `json:"class"`
	TotalLines     int     `json:"total_lines"`
	CoveredLines   int     `json:"covered_lines"`
	UncoveredLines []int   `json:"uncovered_lines,omitempty"`
	Percent        float64 `json:"percent"`
}

// Results is the structured outcome of one `sf apex run test` invocation.
type Results struct {
	Summary  Summary    `json:"summary"`
	Failures []Failure  `json:"failures,omitempty"`
	Coverage []Coverage `json:"coverage,omitempty"`
}

// LowCoverage returns classes under the 75% deployment threshold, worst
// first.
func (r *Results) LowCoverage() []Coverage {
	var out []Coverage
	for _, c := range r.Coverage {
		if c.Percent < 75 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent < out[j].Percent })
	return out
}

// Interesting reports whether the run is worth rendering. Hooks stay
// silent when nothing ran and nothing failed.
func (r *Results) Interesting() bool {
	return r.Summary.Total > 0 || len(r.Failures) > 0
}

// LooksLikeTestOutput reports whether command output plausibly came from a
// test run.
func LooksLikeTestOutput(output string) bool {
	low := strings.ToLower(output)
	return strings.Contains(low, "test") || strings.Contains(low, "coverage")
}
