package testresults

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// testRecord accepts both the REST API field casing (Outcome, MethodName,
// ApexClass.Name) and the camelCase form (outcome, methodName, className)
// the sf CLI emits depending on command and version. encoding/json matches
// keys case-insensitively, so one tag set covers both.
type testRecord struct {
	Outcome   string `json:"outcome"`
	ApexClass struct {
		Name string `json:"name"`
	} `json:"apexClass"`
	ClassName  string  `json:"className"`
	MethodName string  `json:"methodName"`
	Message    string  `json:"message"`
	StackTrace string  `json:"stackTrace"`
	RunTime    float64 `json:"runTime"`
}

// coverageRecord tolerates the two coverage shapes: name/totalLines/
// coveredLines (where coveredLines may be a count or a list of line
// numbers) and apexClassOrTriggerName/numLinesCovered/numLinesUncovered.
type coverageRecord struct {
	Name                   string          `json:"name"`
	ApexClassOrTriggerName string          `json:"apexClassOrTriggerName"`
	TotalLines             int             `json:"totalLines"`
	CoveredLines           json.RawMessage `json:"coveredLines"`
	UncoveredLines         json.RawMessage `json:"uncoveredLines"`
	NumLinesCovered        int             `json:"numLinesCovered"`
	NumLinesUncovered      int             `json:"numLinesUncovered"`
}

type resultBody struct {
	Tests    []testRecord `json:"tests"`
	Coverage struct {
		Coverage []coverageRecord `json:"coverage"`
	} `json:"coverage"`
	CodeCoverage []coverageRecord `json:"codecoverage"`
}

// Parse reads test run output in either JSON (--result-format json) or
// human-readable form. Anything that fails JSON decoding goes through the
// text parser; Parse never fails.
func Parse(output string) *Results {
	trimmed := strings.TrimSpace(output)

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil {
		body := []byte(trimmed)
		if len(envelope.Result) > 0 {
			body = envelope.Result
		}
		var res resultBody
		if err := json.Unmarshal(body, &res); err == nil {
			return fromJSON(res)
		}
	}
	return parseText(output)
}

func fromJSON(res resultBody) *Results {
	r := &Results{}

	for _, t := range res.Tests {
		switch strings.ToLower(t.Outcome) {
		case "pass":
			r.Summary.Passed++
		case "fail":
			r.Summary.Failed++
			r.Failures = append(r.Failures, Failure{
				Class:      firstNonEmpty(t.ApexClass.Name, t.ClassName, "Unknown"),
				Method:     firstNonEmpty(t.MethodName, "Unknown"),
				Message:    t.Message,
				StackTrace: t.StackTrace,
				RunTime:    t.RunTime,
			})
		case "skip":
			r.Summary.Skipped++
		}
	}
	r.Summary.Total = r.Summary.Passed + r.Summary.Failed + r.Summary.Skipped

	records := res.Coverage.Coverage
	if len(records) == 0 {
		records = res.CodeCoverage
	}

	var totalLines, coveredLines int
	for _, c := range records {
		total := c.TotalLines
		if total == 0 {
			total = c.NumLinesCovered + c.NumLinesUncovered
		}
		covered := lineCount(c.CoveredLines, c.NumLinesCovered)
		uncovered := lineList(c.UncoveredLines)
		if len(uncovered) > 10 {
			uncovered = uncovered[:10]
		}

		pct := 0.0
		if total > 0 {
			pct = round1(float64(covered) / float64(total) * 100)
		}
		r.Coverage = append(r.Coverage, Coverage{
			Class:          firstNonEmpty(c.Name, c.ApexClassOrTriggerName, "Unknown"),
			TotalLines:     total,
			CoveredLines:   covered,
			UncoveredLines: uncovered,
			Percent:        pct,
		})

		totalLines += total
		coveredLines += covered
	}
	if totalLines > 0 {
		r.Summary.CoveragePercent = round1(float64(coveredLines) / float64(totalLines) * 100)
	}
	return r
}

var (
	passedRe   = regexp.MustCompile(`(?i)(\d+)\s+(?:tests?\s+)?pass(?:ed|ing)?`)
	failedRe   = regexp.MustCompile(`(?i)(\d+)\s+(?:tests?\s+)?fail(?:ed|ing|ure)?`)
	failLineRe = regexp.MustCompile(`(\w+)\.(\w+)\s*[-:]\s*(.+)`)
)

// parseText scrapes counts and Class.method failure lines out of
// human-readable output.
func parseText(output string) *Results {
	r := &Results{}
	if m := passedRe.FindStringSubmatch(output); m != nil {
		r.Summary.Passed, _ = strconv.Atoi(m[1])
	}
	if m := failedRe.FindStringSubmatch(output); m != nil {
		r.Summary.Failed, _ = strconv.Atoi(m[1])
	}
	r.Summary.Total = r.Summary.Passed + r.Summary.Failed

	for _, line := range strings.Split(output, "\n") {
		m := failLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		msg := strings.TrimSpace(m[3])
		low := strings.ToLower(msg)
		if !strings.Contains(low, "fail") && !strings.Contains(low, "error") {
			continue
		}
		r.Failures = append(r.Failures, Failure{Class: m[1], Method: m[2], Message: msg})
	}
	return r
}

// lineCount reads a coverage field that is either a count or a list of
// line numbers.
func lineCount(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var list []int
	if json.Unmarshal(raw, &list) == nil {
		return len(list)
	}
	return fallback
}

func lineList(raw json.RawMessage) []int {
	var list []int
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
