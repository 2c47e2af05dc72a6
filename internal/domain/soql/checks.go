package soql

import (
	"regexp"
	"strings"
)

var (
	whereRe      = regexp.MustCompile(`(?i)\bWHERE\b`)
	limitRe      = regexp.MustCompile(`(?i)\bLIMIT\s+\d+`)
	orderByRe    = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
	selectRe     = regexp.MustCompile(`(?i)\bSELECT\b`)
	fromRe       = regexp.MustCompile(`(?i)\bFROM\b`)
	selectStarRe = regexp.MustCompile(`(?i)\bSELECT\s+\*`)

	// 15 and 18 character record IDs in string literals.
	id15Re = regexp.MustCompile(`'[a-zA-Z0-9]{15}'`)
	id18Re = regexp.MustCompile(`'[a-zA-Z0-9]{18}'`)

	// The filter section of the query, up to the first keyword that ends it.
	whereSliceRe = regexp.MustCompile(`(?is)\bWHERE\b(.*?)(?:\bORDER\b|\bGROUP\b|\bLIMIT\b|$)`)

	// Standard indexed fields plus custom external-id naming. Lookup and
	// master-detail fields are indexed too but cannot be told apart from
	// plain fields statically.
	indexedFieldRe = regexp.MustCompile(`(?i)\b(Id|Name|OwnerId|CreatedDate|LastModifiedDate|RecordTypeId|\w+Id__c)\b`)

	// Keywords written fully lowercase. Title case slips through; this is
	// a readability nudge, not a parser.
	lowerKeywordRe = regexp.MustCompile(`\b(select|from|where|limit)\b`)
)

// Facts are the clause-level observations for one query. They feed both
// scoring and the rendered summary lines.
type Facts struct {
	HasWhere          bool
	HasLimit          bool
	HasOrderBy        bool
	HardcodedIDs      bool
	IndexedFilter     bool
	LowercaseKeywords bool
}

// Inspect derives Facts from query text. Comments are stripped first so a
// commented-out clause does not count.
func Inspect(text string) Facts {
	clean := StripComments(text)
	f := Facts{
		HasWhere:          whereRe.MatchString(clean),
		HasLimit:          limitRe.MatchString(clean),
		HasOrderBy:        orderByRe.MatchString(clean),
		HardcodedIDs:      id15Re.MatchString(clean) || id18Re.MatchString(clean),
		LowercaseKeywords: lowerKeywordRe.MatchString(clean),
	}
	if m := whereSliceRe.FindStringSubmatch(clean); m != nil {
		f.IndexedFilter = indexedFieldRe.MatchString(m[1])
	}
	return f
}

// syntaxRules are the parse-breaking checks, applied uniformly to every
// query by the validator driver.
var syntaxRules = []struct {
	id      string
	penalty int
	detect  func(clean string) bool
	message string
	fix     string
}{
	{
		id:      "missing-from",
		penalty: 10,
		detect:  func(q string) bool { return selectRe.MatchString(q) && !fromRe.MatchString(q) },
		message: "SELECT statement missing FROM clause",
		fix:     "Add FROM <SObject> after the field list",
	},
	{
		id:      "select-star",
		penalty: 10,
		detect:  func(q string) bool { return selectStarRe.MatchString(q) },
		message: "SELECT * is not valid in SOQL - specify field names",
		fix:     "List the fields you need, or use FIELDS(STANDARD)",
	},
	{
		id:      "double-equals",
		penalty: 5,
		detect:  func(q string) bool { return strings.Contains(q, "==") },
		message: `Invalid operator "==" - use "=" in SOQL`,
		fix:     `Replace "==" with "="`,
	},
	{
		id:      "unbalanced-parens",
		penalty: 5,
		detect:  func(q string) bool { return strings.Count(q, "(") != strings.Count(q, ")") },
		message: "Unbalanced parentheses",
		fix:     "Balance opening and closing parentheses",
	},
}
