package soql

import (
	"strconv"

	"github.com/forcekit/forcekit/internal/domain"
)

// Category budgets in display order.
var budgets = []struct {
	name   string
	points int
}{
	{"syntax", 20},
	{"selectivity", 20},
	{"limits", 20},
	{"safety", 20},
	{"style", 20},
}

// Validate scores one .soql file. The whole file is a single query;
// comments are allowed and stripped before the checks run. A file that is
// empty after stripping keeps a full score and is marked for the hook to
// skip.
func Validate(art *domain.Artifact, cfg domain.Config) *domain.ValidationReport {
	q, ok := ExtractFile(art.Content)
	if !ok {
		cats, _ := newCategories()
		r := domain.NewReport(art.Path, art.Kind, cats, domain.QueryLadder)
		r.Meta = map[string]string{"queries": "0"}
		return r
	}

	cats, byName := newCategories()
	scoreQuery(q, byName, cfg)

	r := domain.NewReport(art.Path, art.Kind, cats, domain.QueryLadder)
	f := Inspect(q.Text)
	r.Meta = map[string]string{
		"queries":       "1",
		"query":         Normalize(q.Text),
		"has_where":     strconv.FormatBool(f.HasWhere),
		"has_limit":     strconv.FormatBool(f.HasLimit),
		"has_order_by":  strconv.FormatBool(f.HasOrderBy),
		"hardcoded_ids": strconv.FormatBool(f.HardcodedIDs),
	}
	return r
}

// ValidateScript scores an anonymous Apex script (.apex) by extracting its
// queries and running the checklist over each. Deductions accumulate per
// category and floor at zero; a script with no queries keeps a full score.
func ValidateScript(art *domain.Artifact, cfg domain.Config) *domain.ValidationReport {
	queries := Extract(art.Content)

	cats, byName := newCategories()
	for _, q := range queries {
		scoreQuery(q, byName, cfg)
	}

	r := domain.NewReport(art.Path, art.Kind, cats, domain.QueryLadder)
	r.Meta = map[string]string{"queries": strconv.Itoa(len(queries))}
	return r
}

func newCategories() ([]domain.CategoryResult, map[string]*domain.CategoryResult) {
	cats := make([]domain.CategoryResult, len(budgets))
	byName := make(map[string]*domain.CategoryResult, len(budgets))
	for i, b := range budgets {
		cats[i] = domain.NewCategoryResult(b.name, b.points)
		byName[b.name] = &cats[i]
	}
	return cats, byName
}

// deduct applies one rule's penalty unless config skips the rule or its
// category.
func deduct(cat *domain.CategoryResult, cfg domain.Config, rule string, points int, issue domain.Issue) {
	if cfg.IsSkippedRule(rule) || cfg.IsSkippedCategory(cat.Name) {
		return
	}
	issue.Rule = rule
	issue.Category = cat.Name
	cat.Deduct(points, issue)
}

// scoreQuery applies the static checklist to one query.
func scoreQuery(q Query, byName map[string]*domain.CategoryResult, cfg domain.Config) {
	if q.Type == TypeDynamicVariable {
		// Only the variable name is visible; record it and move on.
		deduct(byName["safety"], cfg, "dynamic-variable", 0, domain.Issue{
			Severity: domain.SeverityInfo,
			Line:     q.Line,
			Message:  "Dynamic SOQL with variable - cannot analyze query plan",
			Fix:      "Prefer a literal query or Database.queryWithBinds with a bind map",
		})
		if q.InLoop {
			deductLoop(byName["limits"], cfg, q)
		}
		return
	}

	clean := StripComments(q.Text)
	facts := Inspect(q.Text)

	for _, rule := range syntaxRules {
		if rule.detect(clean) {
			deduct(byName["syntax"], cfg, rule.id, rule.penalty, domain.Issue{
				Severity: domain.SeverityCritical,
				Line:     q.Line,
				Message:  rule.message,
				Fix:      rule.fix,
			})
		}
	}

	if !facts.HasWhere {
		deduct(byName["selectivity"], cfg, "missing-where", 5, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     q.Line,
			Message:  "Query has no WHERE clause - reads the whole table",
			Fix:      "Add WHERE clause for better query selectivity",
		})
	} else if !facts.IndexedFilter {
		deduct(byName["selectivity"], cfg, "no-indexed-filter", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Line:     q.Line,
			Message:  "WHERE clause uses no indexed field",
			Fix:      "Add an indexed field (Id, Name, CreatedDate) to WHERE for better performance",
		})
	}

	if !facts.HasLimit {
		deduct(byName["limits"], cfg, "missing-limit", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Line:     q.Line,
			Message:  "Query has no LIMIT clause",
			Fix:      "Add LIMIT clause to prevent large result sets",
		})
	}
	if q.InLoop {
		deductLoop(byName["limits"], cfg, q)
	}

	if facts.HardcodedIDs {
		deduct(byName["safety"], cfg, "hardcoded-ids", 5, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     q.Line,
			Message:  "Query contains hardcoded record IDs",
			Fix:      "Avoid hardcoded IDs - use bind variables instead",
		})
	}

	if facts.LowercaseKeywords {
		deduct(byName["style"], cfg, "lowercase-keywords", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Line:     q.Line,
			Message:  "SOQL keywords written in lowercase",
			Fix:      "Uppercase keywords (SELECT, FROM, WHERE) for readability",
		})
	}
	if facts.HasLimit && !facts.HasOrderBy {
		deduct(byName["style"], cfg, "limit-without-order", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Line:     q.Line,
			Message:  "LIMIT without ORDER BY returns arbitrary rows",
			Fix:      "Add ORDER BY so the limited result set is deterministic",
		})
	}
}

func deductLoop(cat *domain.CategoryResult, cfg domain.Config, q Query) {
	deduct(cat, cfg, "soql-in-loop", 10, domain.Issue{
		Severity: domain.SeverityCritical,
		Line:     q.Line,
		Message:  "SOQL query inside loop - may cause governor limit issues",
		Fix:      "Move the query outside the loop and collect results first",
	})
}
