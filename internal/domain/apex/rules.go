package apex

import (
	"regexp"

	"github.com/forcekit/forcekit/internal/domain"
)

// Rule is one declarative line check. InLoop rules only fire while the
// tracker reports an open loop scope; their Message takes the loop start
// line as a format argument. Unless suppresses a rule when the pattern
// matches anywhere in the file.
type Rule struct {
	ID       string
	Category string
	Severity string
	Penalty  int
	Pattern  *regexp.Regexp
	InLoop   bool
	Unless   *regexp.Regexp
	Message  string
	Fix      string
}

// LineRules is the checklist applied to every line by the driver in
// Validate. Adding a check means adding a row, not a method.
var LineRules = []Rule{
	{
		ID:       "soql-in-loop",
		Category: "bulkification",
		Severity: domain.SeverityCritical,
		Penalty:  10,
		Pattern:  regexp.MustCompile(`(?i)\[\s*SELECT\s+`),
		InLoop:   true,
		Message:  "SOQL query inside loop (loop started line %d)",
		Fix:      "Move SOQL before loop, query all needed records, filter in loop",
	},
	{
		ID:       "dml-in-loop",
		Category: "bulkification",
		Severity: domain.SeverityCritical,
		Penalty:  10,
		Pattern:  regexp.MustCompile(`(?i)\b(insert|update|delete|upsert|undelete)\s+\S|Database\.(insert|update|delete|upsert)\b`),
		InLoop:   true,
		Message:  "DML inside loop (loop started line %d)",
		Fix:      "Collect records in loop, perform single DML after loop",
	},
	{
		ID:       "unescaped-dynamic-soql",
		Category: "security",
		Severity: domain.SeverityWarning,
		Penalty:  5,
		Pattern:  regexp.MustCompile(`Database\.query\s*\(`),
		Unless:   regexp.MustCompile(`escapeSingleQuotes`),
		Message:  "Dynamic SOQL without evident escape - potential injection risk",
		Fix:      "Use String.escapeSingleQuotes() or bind variables",
	},
	{
		ID:       "empty-catch",
		Category: "error_handling",
		Severity: domain.SeverityWarning,
		Penalty:  5,
		Pattern:  regexp.MustCompile(`catch\s*\([^)]+\)\s*\{\s*\}`),
		Message:  "Empty catch block - exceptions are silently swallowed",
		Fix:      "Log the exception or handle it appropriately",
	},
}
