package soql

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forcekit/forcekit/internal/domain"
)

// placeholderID substitutes for bind variables; the explain endpoint needs
// a literal but never runs the query.
const placeholderID = "'001000000000000AAA'"

var (
	bindRe     = regexp.MustCompile(`:(\w+)`)
	questionRe = regexp.MustCompile(`\?`)

	// Clauses the explain endpoint rejects.
	stripRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+WITH\s+SECURITY_ENFORCED`),
		regexp.MustCompile(`(?i)\s+WITH\s+USER_MODE`),
		regexp.MustCompile(`(?i)\s+WITH\s+SYSTEM_MODE`),
		regexp.MustCompile(`(?i)\s+FOR\s+UPDATE`),
		regexp.MustCompile(`(?i)\s+FOR\s+VIEW`),
		regexp.MustCompile(`(?i)\s+FOR\s+REFERENCE`),
	}

	fromObjectRe = regexp.MustCompile(`(?i)\bFROM\s+(\w+)`)
)

// PrepareQuery rewrites a query for the explain endpoint: bind variables
// become placeholder IDs and unsupported clauses are stripped.
func PrepareQuery(query string) string {
	prepared := bindRe.ReplaceAllString(query, placeholderID)
	prepared = questionRe.ReplaceAllString(prepared, placeholderID)
	for _, re := range stripRes {
		prepared = re.ReplaceAllString(prepared, "")
	}
	return Normalize(prepared)
}

// SObjectOf returns the primary object a query reads, or "" when the query
// has no FROM clause.
func SObjectOf(query string) string {
	if m := fromObjectRe.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	return ""
}

// Assess pairs an extracted query with its org plan.
func Assess(q Query, plan domain.QueryPlan) domain.QueryAssessment {
	return domain.QueryAssessment{
		Line:               q.Line,
		Query:              q.Text,
		Cost:               plan.RelativeCost,
		Operation:          plan.LeadingOperation,
		InLoop:             q.InLoop,
		Rating:             plan.CostRating(),
		Cardinality:        plan.Cardinality,
		SObjectCardinality: plan.SObjectCardinality,
		Notes:              plan.Notes,
	}
}

// PlanSuggestions turns a query plan into optimization advice. Selective
// plans with no notes produce nothing.
func PlanSuggestions(plan domain.QueryPlan) []string {
	var suggestions []string

	if !plan.Selective() {
		if plan.LeadingOperation == "TableScan" {
			suggestions = append(suggestions,
				"Query performs a full table scan. Add an indexed field to WHERE clause (Id, Name, OwnerId, CreatedDate, or a custom indexed field).")
		} else {
			suggestions = append(suggestions, fmt.Sprintf(
				"Query has relativeCost of %.1f (>1.0 is non-selective). Consider adding more selective filter criteria.",
				plan.RelativeCost))
		}
	}

	for _, note := range plan.Notes {
		desc := strings.ToLower(note)
		if strings.Contains(desc, "not indexed") {
			field := "the field"
			if len(plan.Fields) > 0 {
				field = plan.Fields[0]
			}
			suggestions = append(suggestions, fmt.Sprintf(
				"Field '%s' is not indexed. Consider requesting a custom index via Salesforce Support (requires Business/Enterprise+ edition).",
				field))
		}
		if strings.Contains(desc, "not selective") {
			suggestions = append(suggestions,
				"WHERE clause filters are not selective enough. Add more restrictive conditions or use indexed fields in equality comparisons.")
		}
		if strings.Contains(desc, "negative filter") {
			suggestions = append(suggestions,
				"Negative operators (!=, NOT IN, NOT LIKE) prevent index usage. Consider restructuring to use positive conditions.")
		}
	}

	if plan.SObjectCardinality > 100000 && plan.Cardinality > 10000 {
		pct := float64(plan.Cardinality) / float64(plan.SObjectCardinality) * 100
		if pct > 10 {
			suggestions = append(suggestions, fmt.Sprintf(
				"Query may return %s of %s records (%.1f%%). Consider adding LIMIT or more filters.",
				FormatCount(plan.Cardinality), FormatCount(plan.SObjectCardinality), pct))
		}
	}

	return suggestions
}

// FormatCount renders a record count with thousands separators,
// 1234567 -> "1,234,567".
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
