// Package report renders validation results, parsed logs and test runs
// into bounded text blocks for hook, MCP and terminal consumption. Every
// renderer is a pure function over its input; styling degrades to plain
// text when stdout is not a terminal.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/soql"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	faintStyle  = lipgloss.NewStyle().Foreground(faint)
	passStyle   = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)
)

// Output width and truncation caps. Caps bound the rendered text no matter
// how large the artifact was.
const (
	reportWidth = 60
	soqlWidth   = 55

	issueCap     = 12
	messageCap   = 65
	fixCap       = 55
	recommendCap = 5
	soqlIssueCap = 5
	planNoteCap  = 3
)

// severityIcons maps issue severities to display icons.
var severityIcons = map[string]string{
	domain.SeverityCritical: "🔴",
	domain.SeverityHigh:     "🟠",
	domain.SeverityModerate: "🟡",
	domain.SeverityWarning:  "⚠️",
	domain.SeverityLow:      "🔵",
	domain.SeverityInfo:     "ℹ️",
}

var kindLabels = map[domain.ArtifactKind]string{
	domain.KindApex:     "Apex",
	domain.KindAnonApex: "Anonymous Apex",
	domain.KindFlow:     "Flow",
	domain.KindSOQL:     "SOQL",
	domain.KindSkill:    "SKILL.md",
}

// categoryLabels maps category names to display labels.
var categoryLabels = map[string]string{
	"bulkification":              "Bulkification",
	"security":                   "Security",
	"testing":                    "Testing",
	"architecture":               "Architecture",
	"clean_code":                 "Clean Code",
	"error_handling":             "Error Handling",
	"performance":                "Performance",
	"syntax":                     "Syntax",
	"selectivity":                "Selectivity",
	"limits":                     "Limits",
	"safety":                     "Safety",
	"style":                      "Style",
	"design_naming":              "Design & Naming",
	"logic_structure":            "Logic & Structure",
	"architecture_orchestration": "Architecture & Orchestration",
	"performance_bulk":           "Performance & Bulkification",
	"security_governance":        "Security & Governance",
	"frontmatter":                "Frontmatter",
	"structure":                  "Structure",
	"references":                 "References",
	"external":                   "External Scan",
}

// Render formats a validation report. SOQL reports use the compact
// query-centric layout; every other kind gets the full category breakdown.
func Render(r *domain.ValidationReport) string {
	if r.Kind == domain.KindSOQL {
		return renderSOQL(r)
	}
	return renderReport(r)
}

func renderReport(r *domain.ValidationReport) string {
	var b strings.Builder
	banner := bannerStyle.Render(strings.Repeat("═", reportWidth))
	rule := faintStyle.Render(strings.Repeat("─", reportWidth))

	b.WriteString(banner + "\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("   %s Validation Report", kindLabel(r.Kind))) + "\n")
	b.WriteString(banner + "\n\n")

	b.WriteString(fmt.Sprintf("🎯 Score: %d/%d %s %s\n", r.Score, r.MaxScore, domain.StarString(r.Stars), r.Rating))
	b.WriteString(fmt.Sprintf("📄 File: %s\n", filepath.Base(r.Artifact)))
	if r.ExternalDeductions > 0 {
		b.WriteString(fmt.Sprintf("   (Custom: %d, external deductions: -%d)\n", r.CustomScore, r.ExternalDeductions))
	}
	b.WriteString("\n")

	if len(r.Categories) > 0 {
		b.WriteString(titleStyle.Render("Category Breakdown:") + "\n")
		b.WriteString(rule + "\n")
		for _, c := range r.Categories {
			b.WriteString(categoryLine(c) + "\n")
		}
		b.WriteString("\n")
	}

	if r.Scan != nil {
		b.WriteString(scanLine(r.Scan) + "\n\n")
	}

	if len(r.Issues) > 0 {
		b.WriteString(titleStyle.Render("Issues Found:") + "\n")
		b.WriteString(rule + "\n")
		for i, issue := range r.Issues {
			if i == issueCap {
				b.WriteString(fmt.Sprintf("   ... and %d more issues\n", len(r.Issues)-issueCap))
				break
			}
			b.WriteString(issueLine(issue) + "\n")
			if issue.Fix != "" {
				b.WriteString(fmt.Sprintf("    Fix: %s\n", clip(issue.Fix, fixCap)))
			}
		}
		b.WriteString("\n")
	} else {
		b.WriteString(passStyle.Render("✅ No issues found!") + "\n\n")
	}

	if recs := dedupe(r.Recommendations); len(recs) > 0 {
		b.WriteString(titleStyle.Render("Recommendations:") + "\n")
		b.WriteString(rule + "\n")
		for i, rec := range recs {
			if i == recommendCap {
				break
			}
			b.WriteString(fmt.Sprintf("💡 %s\n", rec))
		}
		b.WriteString("\n")
	}

	b.WriteString(banner + "\n")
	b.WriteString(statusLine(r.Percent()) + "\n")
	b.WriteString(banner + "\n")
	return b.String()
}

// renderSOQL lays out a single-query report: clause summary, live plan,
// then capped issues and recommendations.
func renderSOQL(r *domain.ValidationReport) string {
	var b strings.Builder
	banner := faintStyle.Render(strings.Repeat("═", soqlWidth))

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("🔍 SOQL Validation: %s\n", filepath.Base(r.Artifact)))
	b.WriteString(banner + "\n")

	if r.Meta["has_where"] == "true" {
		b.WriteString("✅ Has WHERE clause\n")
	} else {
		b.WriteString("⚠️ Missing WHERE clause\n")
	}
	if r.Meta["has_limit"] == "true" {
		b.WriteString("✅ Has LIMIT clause\n")
	} else {
		b.WriteString("⚠️ Missing LIMIT clause\n")
	}
	if r.Meta["hardcoded_ids"] == "true" {
		b.WriteString("⚠️ Contains hardcoded IDs\n")
	}

	if block := planBlock(r); block != "" {
		b.WriteString("\n")
		b.WriteString(block)
	}

	if len(r.Issues) > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("⚠️ Issues (%d):\n", len(r.Issues)))
		for i, issue := range r.Issues {
			if i == soqlIssueCap {
				break
			}
			label := ""
			if issue.Source != "" {
				label = "[" + issue.Source + "] "
			}
			b.WriteString(fmt.Sprintf("   %s %s%s\n", severityIcon(issue.Severity), label, clip(issue.Message, 60)))
		}
	}

	if recs := dedupe(r.Recommendations); len(recs) > 0 {
		b.WriteString("\n")
		b.WriteString("💡 Recommendations:\n")
		for i, rec := range recs {
			if i == recommendCap {
				break
			}
			b.WriteString(fmt.Sprintf("   • %s\n", clip(rec, 65)))
		}
	}

	b.WriteString(banner + "\n")
	return b.String()
}

// planBlock renders the live query plan section of a SOQL report. An empty
// string means the section is omitted entirely (planning disabled).
func planBlock(r *domain.ValidationReport) string {
	var b strings.Builder
	switch {
	case len(r.Plans) > 0:
		a := r.Plans[0]
		b.WriteString("🌐 Live Query Plan Analysis\n")
		if org := r.Meta["org"]; org != "" {
			b.WriteString(fmt.Sprintf("   Org: %s\n", org))
		}
		b.WriteString(fmt.Sprintf("   %s Selective: %t\n", planIcon(a.Cost), a.Selective()))
		b.WriteString(fmt.Sprintf("   📊 Relative Cost: %.2f (%s)\n", a.Cost, a.Rating))
		b.WriteString(fmt.Sprintf("   📈 Operation: %s\n", a.Operation))
		if a.Cardinality > 0 {
			b.WriteString(fmt.Sprintf("   📋 Cardinality: %s / %s\n",
				soql.FormatCount(a.Cardinality), soql.FormatCount(a.SObjectCardinality)))
		}
		if len(a.Notes) > 0 {
			b.WriteString("\n   📝 Query Plan Notes:\n")
			for i, note := range a.Notes {
				if i == planNoteCap {
					break
				}
				b.WriteString(fmt.Sprintf("      • %s\n", clip(note, 70)))
			}
		}
	case r.Meta["plan_error"] != "":
		b.WriteString("🌐 Live Query Plan: Error\n")
		b.WriteString(fmt.Sprintf("   %s\n", clip(r.Meta["plan_error"], 60)))
	case r.Meta["plan"] == "unavailable":
		b.WriteString("🌐 Live Query Plan: No org connected\n")
		b.WriteString("   Run 'sf org login web' to enable live analysis\n")
	}
	return b.String()
}

// RenderPlan formats one ad-hoc query plan for terminal output.
func RenderPlan(query string, plan domain.QueryPlan, suggestions []string) string {
	var b strings.Builder
	rule := faintStyle.Render(strings.Repeat("─", soqlWidth))

	b.WriteString(fmt.Sprintf("🔍 Query Plan: %s\n", clip(soql.Normalize(query), 80)))
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("%s Selective: %t\n", planIcon(plan.RelativeCost), plan.Selective()))
	b.WriteString(fmt.Sprintf("📊 Relative Cost: %.2f (%s)\n", plan.RelativeCost, plan.CostRating()))
	b.WriteString(fmt.Sprintf("📈 Operation: %s\n", plan.LeadingOperation))
	if plan.Cardinality > 0 {
		b.WriteString(fmt.Sprintf("📋 Cardinality: %s / %s\n",
			soql.FormatCount(plan.Cardinality), soql.FormatCount(plan.SObjectCardinality)))
	}

	if len(plan.Notes) > 0 {
		b.WriteString("\n📝 Notes:\n")
		for _, note := range plan.Notes {
			b.WriteString(fmt.Sprintf("   • %s\n", note))
		}
	}
	if len(suggestions) > 0 {
		b.WriteString("\n💡 Suggestions:\n")
		for _, s := range suggestions {
			b.WriteString(fmt.Sprintf("   • %s\n", s))
		}
	}
	return b.String()
}

// RenderHistory lists recorded validations, oldest first, with per-artifact
// score deltas.
func RenderHistory(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No validation history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Validation History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	last := make(map[string]int)
	for _, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" || hash == "none" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		pct := 0
		if e.MaxScore > 0 {
			pct = e.Score * 100 / e.MaxScore
		}
		score := lipgloss.NewStyle().
			Foreground(scoreColor(pct)).
			Render(fmt.Sprintf("%d/%d", e.Score, e.MaxScore))

		line := fmt.Sprintf("  %s  %s  %s %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			score,
			domain.StarString(e.Stars),
			filepath.Base(e.Artifact),
		)

		if prev, ok := last[e.Artifact]; ok {
			diff := e.Score - prev
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%d", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%d", -diff))
			}
		}
		last[e.Artifact] = e.Score

		b.WriteString(line + "\n")
	}
	return b.String()
}

func categoryLine(c domain.CategoryResult) string {
	pct := 100
	if c.MaxScore > 0 {
		pct = c.Score * 100 / c.MaxScore
	}

	icon := "✅"
	switch {
	case pct < 60:
		icon = "❌"
	case pct < 80:
		icon = "⚠️"
	}

	line := fmt.Sprintf("%s %s: %d/%d (%d%%)", icon, categoryLabel(c.Name), c.Score, c.MaxScore, pct)
	if d := c.Deducted(); d > 0 {
		line += dimStyle.Render(fmt.Sprintf(" (-%d)", d))
	}
	return line
}

func scanLine(scan *domain.ScanStatus) string {
	if !scan.Available {
		return warnStyle.Render(fmt.Sprintf("⚠️ External scan unavailable: %s", scan.Error))
	}
	engines := strings.Join(scan.Engines, ", ")
	if engines == "" {
		engines = "code-analyzer"
	}
	return fmt.Sprintf("🔎 External scan: %s (%d violations)", engines, scan.Violations)
}

func issueLine(issue domain.Issue) string {
	icon := severityIcon(issue.Severity)
	label := issue.Source
	if label == "" {
		label = categoryLabel(issue.Category)
	}
	msg := clip(issue.Message, messageCap)
	if issue.Line > 0 {
		return fmt.Sprintf("%s %s [%s] Line %d: %s", icon, issue.Severity, label, issue.Line, msg)
	}
	return fmt.Sprintf("%s %s [%s] %s", icon, issue.Severity, label, msg)
}

func statusLine(pct int) string {
	switch {
	case pct >= 90:
		return passStyle.Render("✅ VALIDATION PASSED - Excellent!")
	case pct >= 70:
		return passStyle.Render("✅ VALIDATION PASSED - Good")
	case pct >= 50:
		return warnStyle.Render("⚠️ VALIDATION PASSED - Review recommended")
	default:
		return warnStyle.Render("⚠️ VALIDATION PASSED (Advisory) - Please review issues")
	}
}

func severityIcon(severity string) string {
	if icon, ok := severityIcons[severity]; ok {
		return icon
	}
	return "ℹ️"
}

func kindLabel(kind domain.ArtifactKind) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return "Artifact"
}

func categoryLabel(name string) string {
	if label, ok := categoryLabels[name]; ok {
		return label
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func planIcon(cost float64) string {
	switch {
	case cost <= 1.0:
		return "✅"
	case cost <= 2.0:
		return "⚠️"
	default:
		return "❌"
	}
}

func scoreColor(pct int) lipgloss.Color {
	switch {
	case pct >= 80:
		return success
	case pct >= 60:
		return lipgloss.Color("#A3E635") // lime
	case pct >= 40:
		return warning
	default:
		return danger
	}
}

// dedupe removes repeated entries, keeping first occurrence order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// clip hard-truncates to limit runes, matching the bounded-output caps.
func clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
