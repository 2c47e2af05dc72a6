// Package soql extracts SOQL queries from Salesforce sources and scores
// them against a selectivity and safety checklist. All findings are
// advisory.
package soql

import (
	"regexp"
	"sort"
	"strings"
)

// QueryType classifies how a query is written in its source file.
type QueryType string

const (
	TypeInline          QueryType = "inline"           // [SELECT ...] expression
	TypeDynamic         QueryType = "dynamic"          // Database.query('SELECT ...')
	TypeDynamicVariable QueryType = "dynamic_variable" // Database.query(someVar)
	TypeFile            QueryType = "file"             // whole .soql file
)

// Query is one SOQL statement found in a source file.
type Query struct {
	Text    string    `json:"query"`
	Line    int       `json:"line"`
	EndLine int       `json:"end_line,omitempty"`
	InLoop  bool      `json:"in_loop"`
	Context string    `json:"context,omitempty"`
	Type    QueryType `json:"query_type"`
}

var (
	inlineRe = regexp.MustCompile(`(?is)\[\s*(SELECT\b[^\]]+)\]`)

	// Database.query and queryWithBinds, with a literal or a variable
	// argument. A variable is recorded but cannot be analyzed.
	dynamicRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Database\s*\.\s*query\s*\(\s*['"]([^"']+)['"]`),
		regexp.MustCompile(`(?i)Database\s*\.\s*query\s*\(\s*(\w+)\s*\)`),
		regexp.MustCompile(`(?i)Database\s*\.\s*queryWithBinds\s*\(\s*['"]([^"']+)['"]`),
	}

	loopRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfor\s*\(`),
		regexp.MustCompile(`(?i)\bwhile\s*\(`),
		regexp.MustCompile(`(?i)\bdo\s*\{`),
	}

	methodRe = regexp.MustCompile(`(?i)(?:public|private|protected|global|static|\s)+\s+(?:\w+(?:<[^>]+>)?)\s+(\w+)\s*\([^)]*\)\s*\{`)
	stringRe = regexp.MustCompile(`'([^']*)'`)

	dashCommentRe  = regexp.MustCompile(`(?m)--.*$`)
	slashCommentRe = regexp.MustCompile(`(?m)//.*$`)
	blockCommentRe = regexp.MustCompile(`/\*[\s\S]*?\*/`)
)

// Extract finds every SOQL query in an Apex body: inline [SELECT]
// expressions plus Database.query and queryWithBinds calls. Each query is
// tagged with its line, enclosing method and loop containment. The loop
// check is the same brace heuristic the Apex validator uses, so a query in
// a string that happens to mention "for (" does not count.
func Extract(content string) []Query {
	masked := maskNonQueryStrings(content)
	loops := loopRegions(masked)
	methods := methodContexts(content)

	var queries []Query
	for _, m := range inlineRe.FindAllStringSubmatchIndex(content, -1) {
		start := m[0]
		queries = append(queries, Query{
			Text:    Normalize(content[m[2]:m[3]]),
			Line:    lineAt(content, start),
			EndLine: lineAt(content, m[1]),
			InLoop:  inRegion(start, loops),
			Context: contextAt(start, methods),
			Type:    TypeInline,
		})
	}

	for _, re := range dynamicRes {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			start, captured := m[0], content[m[2]:m[3]]
			q := Query{
				Line:    lineAt(content, start),
				InLoop:  inRegion(start, loops),
				Context: contextAt(start, methods),
			}
			if strings.HasPrefix(strings.ToUpper(captured), "SELECT") {
				q.Text = Normalize(captured)
				q.Type = TypeDynamic
			} else {
				q.Text = "[Dynamic: " + captured + "]"
				q.Type = TypeDynamicVariable
			}
			queries = append(queries, q)
		}
	}

	sort.SliceStable(queries, func(i, j int) bool { return queries[i].Line < queries[j].Line })
	return queries
}

// ExtractFile treats a .soql file as a single query. Comments are stripped
// first; a file with nothing left yields no query.
func ExtractFile(content string) (Query, bool) {
	query := strings.TrimSpace(StripComments(content))
	if query == "" {
		return Query{}, false
	}

	lines := strings.Split(content, "\n")
	first := 1
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t != "" && !strings.HasPrefix(t, "--") && !strings.HasPrefix(t, "//") {
			first = i + 1
			break
		}
	}

	return Query{
		Text:    query,
		Line:    first,
		EndLine: len(lines),
		Context: "soql_file",
		Type:    TypeFile,
	}, true
}

// StripComments removes SQL and Apex style comments.
func StripComments(text string) string {
	text = dashCommentRe.ReplaceAllString(text, "")
	text = slashCommentRe.ReplaceAllString(text, "")
	return blockCommentRe.ReplaceAllString(text, "")
}

// Normalize collapses whitespace runs to single spaces.
func Normalize(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// maskNonQueryStrings blanks string literals that are not SOQL so a
// "for (" inside a message string cannot register as a loop. The filler is
// length-preserving to keep byte offsets aligned with the unmasked source.
func maskNonQueryStrings(content string) string {
	return stringRe.ReplaceAllStringFunc(content, func(s string) string {
		body := strings.ToUpper(s[1 : len(s)-1])
		if strings.Contains(body, "SELECT") && strings.Contains(body, "FROM") {
			return s
		}
		return "'" + strings.Repeat("x", len(s)-2) + "'"
	})
}

type region struct{ start, end int }

func loopRegions(content string) []region {
	var regions []region
	for _, re := range loopRes {
		for _, m := range re.FindAllStringIndex(content, -1) {
			if end := matchingBrace(content, m[1]); end > m[0] {
				regions = append(regions, region{m[0], end})
			}
		}
	}
	return regions
}

// matchingBrace scans forward from start for the close brace that balances
// the first open brace, skipping braces inside string literals. An
// unterminated block runs to end of input.
func matchingBrace(content string, start int) int {
	depth := 0
	inString := false
	var quote byte
	for i := start; i < len(content); i++ {
		c := content[i]
		if (c == '\'' || c == '"') && (i == 0 || content[i-1] != '\\') {
			switch {
			case !inString:
				inString, quote = true, c
			case c == quote:
				inString = false
			}
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(content)
}

type methodSpan struct {
	start, end int
	name       string
}

func methodContexts(content string) []methodSpan {
	var spans []methodSpan
	for _, m := range methodRe.FindAllStringSubmatchIndex(content, -1) {
		// The match ends on the opening brace; the balance scan must see
		// it, so back up one byte.
		spans = append(spans, methodSpan{
			start: m[0],
			end:   matchingBrace(content, m[1]-1),
			name:  content[m[2]:m[3]],
		})
	}
	return spans
}

func contextAt(pos int, spans []methodSpan) string {
	for _, s := range spans {
		if s.start <= pos && pos <= s.end {
			return s.name
		}
	}
	return "global"
}

func inRegion(pos int, regions []region) bool {
	for _, r := range regions {
		if r.start <= pos && pos <= r.end {
			return true
		}
	}
	return false
}

func lineAt(content string, pos int) int {
	return strings.Count(content[:pos], "\n") + 1
}
