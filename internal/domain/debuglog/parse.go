package debuglog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forcekit/forcekit/internal/domain"
)

// logIndicators mark text as Apex debug log output. At least one must be
// present before a log is worth parsing.
var logIndicators = []string{
	"EXECUTION_STARTED",
	"CODE_UNIT_STARTED",
	"SOQL_EXECUTE",
	"DML_BEGIN",
	"LIMIT_USAGE",
	"METHOD_ENTRY",
}

// LooksLikeLog reports whether the text contains debug log event markers.
func LooksLikeLog(content string) bool {
	for _, ind := range logIndicators {
		if strings.Contains(content, ind) {
			return true
		}
	}
	return false
}

var (
	entryRe     = regexp.MustCompile(`\|(?:METHOD_ENTRY|CODE_UNIT_STARTED)\|.*?\|(.*?)(?:\||$)`)
	soqlBeginRe = regexp.MustCompile(`(?i)\[(\d+)\].*?SELECT`)
	soqlTextRe  = regexp.MustCompile(`(?i)SELECT.*`)
	rowsRe      = regexp.MustCompile(`\[(\d+)\s*rows?\]`)
	dmlBeginRe  = regexp.MustCompile(`(?i)\[(\d+)\].*?\|(INSERT|UPDATE|DELETE|UPSERT)`)
	exceptionRe = regexp.MustCompile(`\[(\d+)\]\|([^|]+)\|(.+)`)
	fatalRe     = regexp.MustCompile(`\|FATAL_ERROR\|(.+)`)
	execTimeRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ms`)
)

// limitTokens are the counters reported on LIMIT_USAGE lines as
// TOKEN|used|ceiling pairs.
var limitTokens = []string{
	"SOQL_QUERIES",
	"DML_STATEMENTS",
	"DML_ROWS",
	"CPU_TIME",
	"HEAP_SIZE",
	"CALLOUTS",
}

var limitRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(limitTokens))
	for _, t := range limitTokens {
		m[t] = regexp.MustCompile(t + `\|(\d+)\|(\d+)`)
	}
	return m
}()

// Parse scans a debug log in one forward pass and never fails: unmatched or
// out-of-order markers leave fields at their defaults, and text with no
// markers at all yields zero counters and empty lists.
func Parse(content string, cfg domain.Config) *Analysis {
	a := &Analysis{Limits: DefaultLimits(cfg)}
	depth := 0

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "|LOOP_BEGIN|") || strings.Contains(line, "|ITERATION_BEGIN|") {
			depth++
		} else if strings.Contains(line, "|LOOP_END|") || strings.Contains(line, "|ITERATION_END|") {
			if depth > 0 {
				depth--
			}
		}

		if strings.Contains(line, "|METHOD_ENTRY|") || strings.Contains(line, "|CODE_UNIT_STARTED|") {
			if m := entryRe.FindStringSubmatch(line); m != nil && a.EntryPoint == "" {
				a.EntryPoint = m[1]
			}
		}

		if strings.Contains(line, "|SOQL_EXECUTE_BEGIN|") {
			if m := soqlBeginRe.FindStringSubmatch(line); m != nil {
				q := Query{
					Line:   atoi(m[1]),
					Query:  "Unknown query",
					InLoop: depth > 0,
				}
				if t := soqlTextRe.FindString(line); t != "" {
					q.Query = truncate(t, 200)
				}
				a.Queries = append(a.Queries, q)
				a.Limits.SOQLQueries++
			}
		}

		if strings.Contains(line, "|SOQL_EXECUTE_END|") && len(a.Queries) > 0 {
			if m := rowsRe.FindStringSubmatch(line); m != nil {
				a.Queries[len(a.Queries)-1].Rows = atoi(m[1])
			}
		}

		if strings.Contains(line, "|DML_BEGIN|") {
			if m := dmlBeginRe.FindStringSubmatch(line); m != nil {
				a.DML = append(a.DML, DML{
					Line:      atoi(m[1]),
					Operation: strings.ToUpper(m[2]),
					InLoop:    depth > 0,
				})
				a.Limits.DMLStatements++
			}
		}

		if strings.Contains(line, "|DML_END|") && len(a.DML) > 0 {
			if m := rowsRe.FindStringSubmatch(line); m != nil {
				rows := atoi(m[1])
				a.DML[len(a.DML)-1].Rows = rows
				a.Limits.DMLRows += int64(rows)
			}
		}

		if strings.Contains(line, "|EXCEPTION_THROWN|") {
			if m := exceptionRe.FindStringSubmatch(line); m != nil {
				a.Exceptions = append(a.Exceptions, Exception{
					Type:    m[2],
					Message: m[3],
					Line:    atoi(m[1]),
				})
			}
		}

		// FATAL_ERROR repeats the exception that killed the transaction;
		// record it only when no EXCEPTION_THROWN preceded it.
		if strings.Contains(line, "|FATAL_ERROR|") && len(a.Exceptions) == 0 {
			if m := fatalRe.FindStringSubmatch(line); m != nil {
				a.Exceptions = append(a.Exceptions, Exception{
					Type:    "FATAL_ERROR",
					Message: m[1],
				})
			}
		}

		if strings.Contains(line, "|LIMIT_USAGE") {
			for _, token := range limitTokens {
				if !strings.Contains(line, token) {
					continue
				}
				if m := limitRes[token].FindStringSubmatch(line); m != nil {
					a.Limits.apply(token, atoi64(m[1]), atoi64(m[2]))
				}
			}
		}

		if strings.Contains(line, "|EXECUTION_FINISHED|") {
			if m := execTimeRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					a.ExecutionMS = v
				}
			}
		}
	}

	a.findIssues()
	return a
}

func (l *LimitUsage) apply(token string, used, ceiling int64) {
	switch token {
	case "SOQL_QUERIES":
		l.SOQLQueries, l.SOQLLimit = used, ceiling
	case "DML_STATEMENTS":
		l.DMLStatements, l.DMLLimit = used, ceiling
	case "DML_ROWS":
		l.DMLRows, l.DMLRowsLimit = used, ceiling
	case "CPU_TIME":
		l.CPUTime, l.CPULimit = used, ceiling
	case "HEAP_SIZE":
		l.HeapSize, l.HeapLimit = used, ceiling
	case "CALLOUTS":
		l.Callouts, l.CalloutLimit = used, ceiling
	}
}

// findIssues derives warnings and critical issues from the parsed events.
// Limits at 95% of the ceiling are critical, 80% a warning.
func (a *Analysis) findIssues() {
	if n := len(a.LoopQueries()); n > 0 {
		a.Critical = append(a.Critical,
			fmt.Sprintf("SOQL in loop detected: %d queries executed inside loops", n))
	}
	if n := len(a.LoopDML()); n > 0 {
		a.Critical = append(a.Critical,
			fmt.Sprintf("DML in loop detected: %d DML operations inside loops", n))
	}

	a.checkLimit("SOQL", a.Limits.SOQLQueries, a.Limits.SOQLLimit, "")
	a.checkLimit("DML", a.Limits.DMLStatements, a.Limits.DMLLimit, "")
	a.checkLimit("CPU", a.Limits.CPUTime, a.Limits.CPULimit, "ms")
	a.checkLimit("Heap", a.Limits.HeapSize, a.Limits.HeapLimit, " bytes")

	large := 0
	for _, q := range a.Queries {
		if q.Rows > 10000 {
			large++
		}
	}
	if large > 0 {
		a.Warnings = append(a.Warnings,
			fmt.Sprintf("Large queries detected: %d queries returned >10,000 rows", large))
	}

	for _, e := range a.Exceptions {
		a.Critical = append(a.Critical,
			fmt.Sprintf("Exception: %s at line %d", e.Type, e.Line))
	}
}

func (a *Analysis) checkLimit(name string, used, ceiling int64, unit string) {
	pct := percent(used, ceiling)
	switch {
	case pct >= 95:
		a.Critical = append(a.Critical,
			fmt.Sprintf("%s limit critical: %d/%d%s (%.1f%%)", name, used, ceiling, unit, pct))
	case pct >= 80:
		a.Warnings = append(a.Warnings,
			fmt.Sprintf("%s limit warning: %d/%d%s (%.1f%%)", name, used, ceiling, unit, pct))
	}
}

func percent(used, ceiling int64) float64 {
	if ceiling == 0 {
		return 0
	}
	return float64(used) / float64(ceiling) * 100
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
