package report

import (
	"fmt"
	"strings"

	"github.com/forcekit/forcekit/internal/domain/debuglog"
)

// loopCap bounds the per-section listing of in-loop queries and DML.
const loopCap = 5

// RenderLog formats a parsed debug log: findings first, then governor
// limit usage, then fix instructions an agent can follow directly.
func RenderLog(a *debuglog.Analysis) string {
	var b strings.Builder
	banner := strings.Repeat("=", reportWidth)
	rule := strings.Repeat("-", reportWidth)

	b.WriteString(banner + "\n")
	b.WriteString("🔍 DEBUG LOG ANALYSIS\n")
	b.WriteString(banner + "\n\n")

	if a.EntryPoint != "" {
		b.WriteString(fmt.Sprintf("📍 Entry Point: %s\n\n", a.EntryPoint))
	}

	if len(a.Critical) > 0 {
		b.WriteString("🔴 CRITICAL ISSUES\n")
		b.WriteString(rule + "\n")
		for _, issue := range a.Critical {
			b.WriteString(fmt.Sprintf("   • %s\n", issue))
		}
		b.WriteString("\n")
	}

	if len(a.Warnings) > 0 {
		b.WriteString("🟠 WARNINGS\n")
		b.WriteString(rule + "\n")
		for _, w := range a.Warnings {
			b.WriteString(fmt.Sprintf("   • %s\n", w))
		}
		b.WriteString("\n")
	}

	l := a.Limits
	b.WriteString("📊 GOVERNOR LIMIT USAGE\n")
	b.WriteString(rule + "\n")
	b.WriteString(limitBar(l.SOQLQueries, l.SOQLLimit, "SOQL Queries") + "\n")
	b.WriteString(limitBar(l.DMLStatements, l.DMLLimit, "DML Statements") + "\n")
	b.WriteString(limitBar(l.DMLRows, l.DMLRowsLimit, "DML Rows") + "\n")
	b.WriteString(limitBar(l.CPUTime, l.CPULimit, "CPU Time (ms)") + "\n")
	b.WriteString(limitBar(l.HeapSize, l.HeapLimit, "Heap Size") + "\n")
	b.WriteString(limitBar(l.Callouts, l.CalloutLimit, "Callouts") + "\n")
	b.WriteString("\n")

	loopQueries := a.LoopQueries()
	if len(loopQueries) > 0 {
		b.WriteString("🔴 SOQL QUERIES IN LOOPS (Must Fix)\n")
		b.WriteString(rule + "\n")
		for i, q := range loopQueries {
			if i == loopCap {
				b.WriteString(fmt.Sprintf("   ... and %d more\n", len(loopQueries)-loopCap))
				break
			}
			b.WriteString(fmt.Sprintf("   Line %d: %s...\n", q.Line, clip(q.Query, 80)))
			b.WriteString(fmt.Sprintf("      Rows: %d\n", q.Rows))
		}
		b.WriteString("\n")
	}

	loopDML := a.LoopDML()
	if len(loopDML) > 0 {
		b.WriteString("🔴 DML OPERATIONS IN LOOPS (Must Fix)\n")
		b.WriteString(rule + "\n")
		for i, d := range loopDML {
			if i == loopCap {
				b.WriteString(fmt.Sprintf("   ... and %d more\n", len(loopDML)-loopCap))
				break
			}
			b.WriteString(fmt.Sprintf("   Line %d: %s (%d rows)\n", d.Line, d.Operation, d.Rows))
		}
		b.WriteString("\n")
	}

	if len(a.Exceptions) > 0 {
		b.WriteString("❌ EXCEPTIONS\n")
		b.WriteString(rule + "\n")
		for _, exc := range a.Exceptions {
			b.WriteString(fmt.Sprintf("   %s\n", exc.Type))
			b.WriteString(fmt.Sprintf("      Line: %d\n", exc.Line))
			b.WriteString(fmt.Sprintf("      Message: %s...\n", clip(exc.Message, 100)))
		}
		b.WriteString("\n")
	}

	if len(a.Critical) > 0 || len(a.Warnings) > 0 {
		b.WriteString(banner + "\n")
		b.WriteString("🤖 AGENTIC FIX RECOMMENDATIONS\n")
		b.WriteString(banner + "\n\n")

		if len(loopQueries) > 0 {
			b.WriteString("For SOQL in loop:\n")
			b.WriteString("   1. Move query BEFORE the loop\n")
			b.WriteString("   2. Store results in Map<Id, SObject>\n")
			b.WriteString("   3. Access from Map inside loop\n\n")
		}
		if len(loopDML) > 0 {
			b.WriteString("For DML in loop:\n")
			b.WriteString("   1. Create List<SObject> before loop\n")
			b.WriteString("   2. Add records to list inside loop\n")
			b.WriteString("   3. Single DML statement after loop\n\n")
		}
		if len(a.Exceptions) > 0 {
			b.WriteString("For exceptions:\n")
			b.WriteString("   1. Read the source file at the line number\n")
			b.WriteString("   2. Add null checks or try-catch as appropriate\n")
			b.WriteString("   3. Use sf-apex skill to generate fix\n\n")
		}
	}

	b.WriteString(banner + "\n")
	return b.String()
}

func limitBar(used, limit int64, name string) string {
	pct := 0.0
	if limit > 0 {
		pct = float64(used) / float64(limit) * 100
	}
	icon := "✅"
	switch {
	case pct >= 95:
		icon = "🔴"
	case pct >= 80:
		icon = "🟠"
	}
	return fmt.Sprintf("   %s %s: %d/%d (%.1f%%)", icon, name, used, limit, pct)
}
