package apex

import "regexp"

var loopTokens = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bfor\s*\(`),
	regexp.MustCompile(`(?i)\bwhile\s*\(`),
	regexp.MustCompile(`(?i)\bdo\s*\{`),
}

// Tracker approximates loop scope line by line with a single depth counter.
// A loop token opens a scope seeded from the brace balance of its own line;
// while a scope is open, each line's brace balance adjusts the depth,
// floored at zero. Braces outside any loop (class and method bodies) never
// count, so statements before or after a loop are never inside one.
//
// Braces are not matched to logical scope, so multi-statement lines and
// brace-less loop bodies can over- or under-count. That is an accepted
// limitation of line-based scanning, not something callers should try to
// compensate for.
type Tracker struct {
	depth int
	start int
}

// NewTracker returns a tracker positioned before the first line.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Advance consumes one line and reports whether the line sits in a loop
// scope, along with the line number where the outermost open loop started.
// A single-line loop counts as in scope even though its braces balance out.
func (t *Tracker) Advance(line string, lineNo int) (inLoop bool, loopStart int) {
	token := hasLoopToken(line)
	balance := countByte(line, '{') - countByte(line, '}')

	switch {
	case t.depth > 0:
		t.depth += balance
		if t.depth < 0 {
			t.depth = 0
		}
	case token:
		t.start = lineNo
		t.depth = balance
		if t.depth < 0 {
			t.depth = 0
		}
	}

	return t.depth > 0 || token, t.start
}

func hasLoopToken(line string) bool {
	for _, token := range loopTokens {
		if token.MatchString(line) {
			return true
		}
	}
	return false
}

func countByte(s string, b byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			n++
		}
	}
	return n
}
