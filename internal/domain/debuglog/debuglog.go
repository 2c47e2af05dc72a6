// Package debuglog parses Salesforce debug logs into structured analyses:
// governor limit usage, queries and DML with loop containment, exceptions
// and fix-oriented findings.
package debuglog

import "github.com/forcekit/forcekit/internal/domain"

// LimitUsage tracks per-transaction governor limit consumption against the
// platform ceilings.
type LimitUsage struct {
	SOQLQueries   int64 `json:"soql_queries"`
	SOQLLimit     int64 `json:"soql_limit"`
	DMLStatements int64 `json:"dml_statements"`
	DMLLimit      int64 `json:"dml_limit"`
	DMLRows       int64 `json:"dml_rows"`
	DMLRowsLimit  int64 `json:"dml_rows_limit"`
	CPUTime       int64 `json:"cpu_time"`
	CPULimit      int64 `json:"cpu_limit"`
	HeapSize      int64 `json:"heap_size"`
	HeapLimit     int64 `json:"heap_limit"`
	Callouts      int64 `json:"callouts"`
	CalloutLimit  int64 `json:"callout_limit"`
}

// DefaultLimits returns the standard synchronous-transaction ceilings,
// with any .forcekit.yaml overrides applied.
func DefaultLimits(cfg domain.Config) LimitUsage {
	l := LimitUsage{
		SOQLLimit:    100,
		DMLLimit:     150,
		DMLRowsLimit: 10000,
		CPULimit:     10000,
		HeapLimit:    6000000,
		CalloutLimit: 100,
	}
	for name, v := range cfg.Limits {
		switch name {
		case "soql_queries":
			l.SOQLLimit = v
		case "dml_statements":
			l.DMLLimit = v
		case "dml_rows":
			l.DMLRowsLimit = v
		case "cpu_time":
			l.CPULimit = v
		case "heap_size":
			l.HeapLimit = v
		case "callouts":
			l.CalloutLimit = v
		}
	}
	return l
}

// Query is one SOQL execution observed in the log.
type Query struct {
	Line   int    `json:"line"`
	Query  string `json:"query"`
	Rows   int    `json:"rows_returned"`
	InLoop bool   `json:"in_loop"`
}

// DML is one data operation observed in the log.
type DML struct {
	Line      int    `json:"line"`
	Operation string `json:"operation"` // INSERT, UPDATE, DELETE, UPSERT
	Rows      int    `json:"rows_affected"`
	InLoop    bool   `json:"in_loop"`
}

// Exception is one thrown exception or fatal error observed in the log.
type Exception struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Line    int    `json:"line"`
}

// Analysis is the structured result of parsing one debug log.
type Analysis struct {
	Limits      LimitUsage  `json:"limits"`
	Queries     []Query     `json:"queries,omitempty"`
	DML         []DML       `json:"dml,omitempty"`
	Exceptions  []Exception `json:"exceptions,omitempty"`
	ExecutionMS float64     `json:"execution_ms,omitempty"`
	EntryPoint  string      `json:"entry_point,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
	Critical    []string    `json:"critical_issues,omitempty"`
}

// LoopQueries returns the queries that executed inside a loop.
func (a *Analysis) LoopQueries() []Query {
	var out []Query
	for _, q := range a.Queries {
		if q.InLoop {
			out = append(out, q)
		}
	}
	return out
}

// LoopDML returns the DML operations that executed inside a loop.
func (a *Analysis) LoopDML() []DML {
	var out []DML
	for _, d := range a.DML {
		if d.InLoop {
			out = append(out, d)
		}
	}
	return out
}

// Interesting reports whether the analysis carries anything worth showing.
// Hooks stay silent on logs with no findings and no query activity.
func (a *Analysis) Interesting() bool {
	return len(a.Critical) > 0 || len(a.Warnings) > 0 ||
		len(a.Exceptions) > 0 || a.Limits.SOQLQueries > 0
}
