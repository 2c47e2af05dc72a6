package flow

import (
	"fmt"
	"strings"

	"github.com/forcekit/forcekit/internal/domain"
)

// Category budgets in display order.
var budgets = []struct {
	name   string
	points int
}{
	{"design_naming", 20},
	{"logic_structure", 20},
	{"architecture_orchestration", 15},
	{"performance_bulk", 20},
	{"error_handling", 20},
	{"security_governance", 15},
}

// Validate scores one Flow metadata file. It never fails: malformed XML
// produces a zero-score report with a single CRITICAL issue.
func Validate(art *domain.Artifact, cfg domain.Config) *domain.ValidationReport {
	f, err := Parse([]byte(art.Content))
	if err != nil {
		return malformed(art, err)
	}

	cats := make([]domain.CategoryResult, len(budgets))
	byName := make(map[string]*domain.CategoryResult, len(budgets))
	for i, b := range budgets {
		cats[i] = domain.NewCategoryResult(b.name, b.points)
		byName[b.name] = &cats[i]
	}

	if !cfg.IsSkippedCategory("design_naming") {
		checkDesignNaming(f, byName["design_naming"], cfg)
	}
	if !cfg.IsSkippedCategory("logic_structure") {
		checkLogicStructure(f, byName["logic_structure"], cfg)
	}
	if !cfg.IsSkippedCategory("architecture_orchestration") {
		checkArchitecture(f, byName["architecture_orchestration"], cfg)
	}
	if !cfg.IsSkippedCategory("performance_bulk") {
		checkPerformance(f, byName["performance_bulk"], cfg)
	}
	if !cfg.IsSkippedCategory("error_handling") {
		checkErrorHandling(f, byName["error_handling"], cfg)
	}
	if !cfg.IsSkippedCategory("security_governance") {
		checkSecurity(f, byName["security_governance"], cfg)
	}

	r := domain.NewReport(art.Path, art.Kind, cats, domain.FlowLadder)
	r.Meta = map[string]string{
		"flow_label":     f.LabelOrUnknown(),
		"api_version":    apiVersionOrDefault(f),
		"process_type":   f.ProcessType,
		"fault_coverage": f.FaultCoverage(),
	}
	return r
}

func malformed(art *domain.Artifact, err error) *domain.ValidationReport {
	return &domain.ValidationReport{
		Artifact: art.Path,
		Kind:     art.Kind,
		Score:    0,
		MaxScore: domain.MaxScoreFor(domain.KindFlow),
		Stars:    1,
		Rating:   "Invalid XML",
		Issues: []domain.Issue{{
			Severity: domain.SeverityCritical,
			Category: "input",
			File:     art.Path,
			Message:  "could not parse flow XML: " + err.Error(),
		}},
	}
}

// deduct applies one rule's penalty unless config skips the rule.
func deduct(cat *domain.CategoryResult, cfg domain.Config, rule string, points int, issue domain.Issue) {
	if cfg.IsSkippedRule(rule) {
		return
	}
	issue.Rule = rule
	issue.Category = cat.Name
	cat.Deduct(points, issue)
}

func checkDesignNaming(f *Flow, cat *domain.CategoryResult, cfg domain.Config) {
	if name := CheckName(f); !name.Follows {
		fix := "Use standard prefix"
		if len(name.Suggested) > 0 {
			fix = "Consider renaming to: " + name.Suggested[0]
		}
		deduct(cat, cfg, "flow-name-convention", 5, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Flow name %q doesn't follow convention. %s", f.LabelOrUnknown(), name.Hint),
			Fix:      fix,
		})
	}

	if len(f.Description) < 20 {
		deduct(cat, cfg, "flow-description", 5, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "Flow description missing or too short",
			Fix:      "Add clear description (minimum 20 characters)",
		})
	}

	if defaults := DefaultNamedElements(f); len(defaults) > 0 {
		deduct(cat, cfg, "default-element-names", min(5, len(defaults)), domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d elements use default names", len(defaults)),
			Fix:      "Rename elements for better readability",
		})
		for _, name := range head(defaults, 3) {
			cat.Suggest(fmt.Sprintf("[Naming] Element '%s' uses default name - consider renaming for clarity", name))
		}
	}

	if vars := VariableIssues(f); len(vars) > 0 {
		deduct(cat, cfg, "variable-prefixes", min(5, len(vars)), domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d variables don't follow convention", len(vars)),
			Fix:      `Use "var" prefix for single values, "col" for collections`,
		})
		for _, v := range head(vars, 3) {
			cat.Suggest(fmt.Sprintf("[Naming] Variable '%s' (%s) - consider '%s'", v.Name, v.Reason, v.Suggested))
		}
	}

	for _, b := range head(ButtonIssues(f), 2) {
		cat.Suggest(fmt.Sprintf("[Naming] Button '%s' - consider 'Action_[Verb]_[Object]' pattern", b.Name))
	}
}

func checkLogicStructure(f *Flow, cat *domain.CategoryResult, cfg domain.Config) {
	if f.HasDMLInLoops() {
		deduct(cat, cfg, "dml-in-loop", 10, domain.Issue{
			Severity: domain.SeverityCritical,
			Message:  "DML operations found inside loops - WILL CAUSE BULK FAILURES",
			Fix:      "Move DML outside loops, collect records in collection first",
		})
	}

	if f.HasFormulaInLoops() {
		deduct(cat, cfg, "formula-in-loop", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "Formula variables detected with loops - potential CPU impact",
			Fix:      "Test with bulk data; complex formulas in loops can cause CPU timeouts",
		})
	}

	if n := len(f.Decisions); n > 5 {
		deduct(cat, cfg, "decision-complexity", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d decision points - consider simplification", n),
			Fix:      "Break into subflows or use simpler business rules",
		})
	}

	if f.ShouldUseTransform() && !f.HasTransform() {
		deduct(cat, cfg, "prefer-transform", 5, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "Loop with field mapping detected - Transform element recommended",
			Fix:      "Transform is 30-50% faster than loops for field mapping",
		})
	}
}

func checkArchitecture(f *Flow, cat *domain.CategoryResult, cfg domain.Config) {
	if len(f.Subflows) == 0 && f.ElementCount() > 10 {
		deduct(cat, cfg, "no-subflows", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "Complex flow with no subflows - consider breaking into components",
			Fix:      "Use Parent-Child pattern for better maintainability",
		})
	}

	if lines := f.EstimatedLines(); lines > 300 {
		deduct(cat, cfg, "flow-size", 5, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Flow is very large (~%d lines) - hard to maintain", lines),
			Fix:      "Break into orchestrator + specialized subflows",
		})
	}

	if f.IsAutolaunched() && !f.HasInputOutput() {
		deduct(cat, cfg, "no-input-output", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "Autolaunched flow without input/output variables",
			Fix:      "Add input/output variables for reusability",
		})
	}
}

func checkPerformance(f *Flow, cat *domain.CategoryResult, cfg domain.Config) {
	// Already reported under logic_structure; it costs bulk safety too.
	if f.HasDMLInLoops() && !cfg.IsSkippedRule("dml-in-loop") {
		cat.Penalize(10)
	}

	if names := f.StoreAllFieldsLookups(); len(names) > 0 {
		deduct(cat, cfg, "store-all-fields", 3, domain.Issue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("'Store all fields' enabled in Get Records: %s", joinHead(names, 3)),
			Fix:      "Specify only needed fields to prevent data leaks and improve performance",
		})
	}

	if names := f.SameObjectLookups(); len(names) > 0 {
		deduct(cat, cfg, "same-object-query", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Querying trigger object again: %s", joinHead(names, 3)),
			Fix:      "Use $Record to access trigger record fields instead of querying",
		})
	}

	if names := f.UnfilteredLookups(); len(names) > 0 {
		deduct(cat, cfg, "unfiltered-lookup", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Get Records without filters: %s", joinHead(names, 3)),
			Fix:      "Add filter conditions to limit query results and improve performance",
		})
	}

	if names := f.SingleRecordLookups(); len(names) > 0 {
		cat.Suggest(fmt.Sprintf("[Performance] Consider getFirstRecordOnly=true: %s", joinHead(names, 3)))
	}

	switch n := len(f.RecordLookups); {
	case n > 50:
		deduct(cat, cfg, "lookup-count", 5, domain.Issue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%d SOQL queries detected - may exceed governor limits", n),
			Fix:      "Consolidate queries or use bulkified patterns",
		})
	case n > 30:
		deduct(cat, cfg, "lookup-count", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d SOQL queries - monitor for governor limits", n),
			Fix:      "Test with bulk data (200+ records)",
		})
	}

	switch n := f.DMLCount(); {
	case n > 100:
		deduct(cat, cfg, "dml-count", 5, domain.Issue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%d DML operations - may exceed governor limits", n),
			Fix:      "Consolidate DML operations where possible",
		})
	case n > 50:
		deduct(cat, cfg, "dml-count", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d DML operations - monitor for governor limits", n),
			Fix:      "Test with bulk data (200+ records)",
		})
	}
}

func checkErrorHandling(f *Flow, cat *domain.CategoryResult, cfg domain.Config) {
	total := f.DMLCount()
	if total == 0 {
		// No mutations, nothing to cover. Fault coverage reports N/A.
		return
	}

	if missing := total - f.DMLWithFaultPaths(); missing > 0 {
		deduct(cat, cfg, "missing-fault-paths", min(10, missing*2), domain.Issue{
			Severity: domain.SeverityWarning,
			Message:  fmt.Sprintf("%d DML operations missing fault paths", missing),
			Fix:      "Add fault paths to all DML operations for error handling",
		})
	}

	if names := f.PossiblyUncheckedLookups(); len(names) > 0 {
		deduct(cat, cfg, "missing-null-check", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("Get Records may need null checks: %s", joinHead(names, 3)),
			Fix:      "Add Decision element to check for null before using query results",
		})
	}

	if !f.HasErrorLogging() {
		deduct(cat, cfg, "no-error-logging", 10, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "No structured error logging detected",
			Fix:      "Use Sub_LogError subflow in fault paths for better debugging",
		})
	}
}

func checkSecurity(f *Flow, cat *domain.CategoryResult, cfg domain.Config) {
	if f.BypassesPermissions() {
		deduct(cat, cfg, "system-mode", 3, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  "Flow runs in System mode - bypasses FLS/CRUD",
			Fix:      "Document justification and ensure security review",
		})
	}

	if fields := f.SensitiveFields(); len(fields) > 0 {
		deduct(cat, cfg, "sensitive-fields", 2, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%d sensitive fields accessed", len(fields)),
			Fix:      "Test with restricted profiles and document security measures",
		})
	}

	if f.IsScheduled() && f.IsActive() {
		cat.Suggest("[Governance] Active scheduled flow detected - runs automatically without user interaction; ensure thorough testing before activation")
	}

	if v := f.APIVersionValue(); v < 62.0 {
		deduct(cat, cfg, "api-version", 5, domain.Issue{
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("API version %.1f is outdated (current: 62.0)", v),
			Fix:      "Update to latest API version for new features",
		})
	}
}

func apiVersionOrDefault(f *Flow) string {
	if f.APIVersion == "" {
		return "0.0"
	}
	return f.APIVersion
}

func joinHead(names []string, n int) string {
	return strings.Join(head(names, n), ", ")
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
