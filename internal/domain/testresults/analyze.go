package testresults

import (
	"fmt"
	"regexp"
	"strings"
)

// Analysis classifies one failure into fix guidance.
type Analysis struct {
	ErrorType    string `json:"error_type"`
	RootCause    string `json:"root_cause"`
	SuggestedFix string `json:"suggested_fix"`
	AutoFixable  bool   `json:"auto_fixable"`
}

// failureRule maps exception-type substrings to a classification. Rules
// match in declaration order; extending coverage to a new exception type
// means adding a table entry, not touching the driver.
type failureRule struct {
	tokens    []string
	errorType string
	classify  func(f Failure) (cause, fix string)
}

var (
	expectedRe = regexp.MustCompile(`[Ee]xpected[:\s]+(\S+)`)
	actualRe   = regexp.MustCompile(`[Aa]ctual[:\s]+(\S+)`)
	lineRe     = regexp.MustCompile(`[Ll]ine[:\s]+(\d+)`)
)

var failureRules = []failureRule{
	{
		tokens:    []string{"AssertException", "Assertion Failed"},
		errorType: "Assertion Failure",
		classify: func(f Failure) (string, string) {
			exp := expectedRe.FindStringSubmatch(f.Message)
			act := actualRe.FindStringSubmatch(f.Message)
			if exp != nil && act != nil {
				return fmt.Sprintf("Expected %s but got %s", exp[1], act[1]),
					"Check if the test expectation is correct, or if the code logic needs fixing"
			}
			return "Test assertion did not match expected outcome",
				"Review the assertion and verify expected vs actual values"
		},
	},
	{
		tokens:    []string{"NullPointerException"},
		errorType: "Null Pointer Exception",
		classify: func(f Failure) (string, string) {
			trace := f.StackTrace
			if trace == "" {
				trace = f.Message
			}
			cause := "Attempting to access a property or method on a null reference"
			if m := lineRe.FindStringSubmatch(trace); m != nil {
				cause = fmt.Sprintf("Null reference at line %s", m[1])
			}
			return cause,
				"Add null check before accessing the object, or ensure test data setup creates required records"
		},
	},
	{
		tokens:    []string{"DmlException"},
		errorType: "DML Exception",
		classify: func(f Failure) (string, string) {
			for _, c := range dmlCauses {
				if strings.Contains(f.Message, c.token) {
					return c.cause, c.fix
				}
			}
			return "DML operation failed",
				"Review the DML error message and adjust test data accordingly"
		},
	},
	{
		tokens:    []string{"QueryException"},
		errorType: "Query Exception",
		classify: func(f Failure) (string, string) {
			return "SOQL query returned no results or too many results",
				"Ensure test data exists before querying, or handle empty results"
		},
	},
	{
		tokens:    []string{"LimitException"},
		errorType: "Governor Limit Exception",
		classify: func(f Failure) (string, string) {
			switch {
			case strings.Contains(f.Message, "Too many SOQL"):
				return "SOQL query limit exceeded (100 queries)",
					"Bulkify queries - query before loops, use maps for lookups"
			case strings.Contains(f.Message, "Too many DML"):
				return "DML statement limit exceeded (150 statements)",
					"Bulkify DML - collect records in list, single DML after loop"
			}
			return "Governor limit exceeded",
				"Review code for bulkification issues"
		},
	},
	{
		tokens:    []string{"MIXED_DML_OPERATION"},
		errorType: "Mixed DML Exception",
		classify: func(f Failure) (string, string) {
			return "Setup and non-setup objects modified in same transaction",
				"Use System.runAs() to separate User operations from data operations"
		},
	},
}

// dmlCauses refines DmlException failures by status code.
var dmlCauses = []struct {
	token string
	cause string
	fix   string
}{
	{
		token: "REQUIRED_FIELD_MISSING",
		cause: "Required field not populated in test data",
		fix:   "Add the missing required field to TestDataFactory or test setup",
	},
	{
		token: "FIELD_CUSTOM_VALIDATION_EXCEPTION",
		cause: "Record fails validation rule",
		fix:   "Modify test data to meet validation rule requirements",
	},
	{
		token: "DUPLICATE_VALUE",
		cause: "Unique field constraint violation",
		fix:   "Use unique values in test data (e.g., add timestamp or random suffix)",
	},
}

// Analyze classifies a failure by the exception type in its message.
// Unknown types fall through to a manual-review classification.
func Analyze(f Failure) Analysis {
	for _, rule := range failureRules {
		if !matchesAny(f.Message, rule.tokens) {
			continue
		}
		cause, fix := rule.classify(f)
		return Analysis{
			ErrorType:    rule.errorType,
			RootCause:    cause,
			SuggestedFix: fix,
			AutoFixable:  true,
		}
	}
	return Analysis{
		ErrorType:    "Unknown",
		RootCause:    "Unable to determine root cause",
		SuggestedFix: "Review the test and code under test",
	}
}

func matchesAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
