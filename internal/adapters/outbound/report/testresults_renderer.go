package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forcekit/forcekit/internal/domain/testresults"
)

// RenderTests formats a parsed test run: summary, classified failures with
// fix guidance, then classes under the deployment coverage threshold.
func RenderTests(r *testresults.Results) string {
	var b strings.Builder
	banner := strings.Repeat("=", reportWidth)
	rule := strings.Repeat("-", reportWidth)

	b.WriteString(banner + "\n")
	b.WriteString("📊 APEX TEST RESULTS\n")
	b.WriteString(banner + "\n\n")

	statusIcon := "✅"
	if r.Summary.Failed > 0 {
		statusIcon = "❌"
	}
	b.WriteString(statusIcon + " SUMMARY\n")
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("   Passed:   %d\n", r.Summary.Passed))
	b.WriteString(fmt.Sprintf("   Failed:   %d\n", r.Summary.Failed))
	b.WriteString(fmt.Sprintf("   Skipped:  %d\n", r.Summary.Skipped))
	b.WriteString(fmt.Sprintf("   Total:    %d\n", r.Summary.Total))
	if r.Summary.CoveragePercent > 0 {
		covIcon := "✅"
		if r.Summary.CoveragePercent < 75 {
			covIcon = "⚠️"
		}
		b.WriteString(fmt.Sprintf("   Coverage: %s%% %s\n", formatPercent(r.Summary.CoveragePercent), covIcon))
	}
	b.WriteString("\n")

	if len(r.Failures) > 0 {
		b.WriteString("❌ FAILED TESTS\n")
		b.WriteString(rule + "\n")
		for i, f := range r.Failures {
			analysis := testresults.Analyze(f)
			b.WriteString(fmt.Sprintf("\n%d. %s.%s\n", i+1, f.Class, f.Method))
			b.WriteString(fmt.Sprintf("   Error Type: %s\n", analysis.ErrorType))
			b.WriteString(fmt.Sprintf("   Message: %s...\n", clip(f.Message, 200)))
			b.WriteString(fmt.Sprintf("   Root Cause: %s\n", analysis.RootCause))
			b.WriteString(fmt.Sprintf("   Suggested Fix: %s\n", analysis.SuggestedFix))
			if analysis.AutoFixable {
				b.WriteString("   🤖 AUTO-FIXABLE: Yes - agent can attempt automatic fix\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(banner + "\n")
		b.WriteString("🤖 AGENTIC FIX INSTRUCTIONS\n")
		b.WriteString(banner + "\n\n")
		b.WriteString("To automatically fix these failures:\n")
		b.WriteString("1. Read the failing test class\n")
		b.WriteString("2. Read the class under test\n")
		b.WriteString("3. Apply the suggested fix\n")
		b.WriteString("4. Re-run: sf apex run test --tests [ClassName].[methodName]\n\n")
	}

	if low := r.LowCoverage(); len(low) > 0 {
		b.WriteString("⚠️ LOW COVERAGE CLASSES (<75%)\n")
		b.WriteString(rule + "\n")
		for _, c := range low {
			b.WriteString(fmt.Sprintf("   %s: %s%%\n", c.Class, formatPercent(c.Percent)))
			if len(c.UncoveredLines) > 0 {
				b.WriteString(fmt.Sprintf("      Uncovered lines: %s\n", joinLines(c.UncoveredLines)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(banner + "\n")
	return b.String()
}

// formatPercent drops the trailing .0 that a fixed-precision format would
// print for whole-number coverage values.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, n := range lines {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
