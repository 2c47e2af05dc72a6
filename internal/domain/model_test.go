package domain_test

import (
	"errors"
	"testing"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryResult_DeductFloorsAtZero(t *testing.T) {
	cat := domain.NewCategoryResult("bulkification", 25)
	for i := 0; i < 4; i++ {
		cat.Deduct(10, domain.Issue{Severity: domain.SeverityCritical, Message: "dml in loop"})
	}
	assert.Equal(t, 0, cat.Score)
	assert.Equal(t, 25, cat.Deducted())
	assert.Len(t, cat.Issues, 4)
}

func TestCategoryResult_ScoreNeverExceedsMax(t *testing.T) {
	cat := domain.NewCategoryResult("security", 25)
	assert.Equal(t, 25, cat.Score)
	cat.Deduct(5, domain.Issue{Severity: domain.SeverityWarning, Message: "without sharing"})
	assert.GreaterOrEqual(t, cat.Score, 0)
	assert.LessOrEqual(t, cat.Score, cat.MaxScore)
}

func TestNewReport_SumsClampedCategories(t *testing.T) {
	full := domain.NewCategoryResult("testing", 25)
	hit := domain.NewCategoryResult("bulkification", 25)
	hit.Deduct(10, domain.Issue{Severity: domain.SeverityCritical, Message: "soql in loop"})

	r := domain.NewReport("Foo.cls", domain.KindApex, []domain.CategoryResult{full, hit}, domain.ApexLadder)
	assert.Equal(t, 40, r.Score)
	assert.Equal(t, 50, r.MaxScore)
	assert.Equal(t, r.Score, r.CustomScore)
}

func TestNewReport_Deterministic(t *testing.T) {
	build := func() *domain.ValidationReport {
		a := domain.NewCategoryResult("security", 25)
		a.Deduct(5, domain.Issue{Severity: domain.SeverityWarning, Message: "without sharing", Line: 3})
		b := domain.NewCategoryResult("bulkification", 25)
		b.Deduct(10, domain.Issue{Severity: domain.SeverityCritical, Message: "dml in loop", Line: 9})
		return domain.NewReport("Foo.cls", domain.KindApex, []domain.CategoryResult{a, b}, domain.ApexLadder)
	}
	first, second := build(), build()
	assert.Equal(t, first, second)
}

func TestSortIssues_SeverityRankStable(t *testing.T) {
	issues := []domain.Issue{
		{Severity: domain.SeverityInfo, Message: "i1"},
		{Severity: domain.SeverityWarning, Message: "w1"},
		{Severity: domain.SeverityCritical, Message: "c1"},
		{Severity: domain.SeverityWarning, Message: "w2"},
		{Severity: domain.SeverityHigh, Message: "h1"},
		{Severity: domain.SeverityCritical, Message: "c2"},
	}
	domain.SortIssues(issues)

	got := make([]string, len(issues))
	for i, is := range issues {
		got[i] = is.Message
	}
	assert.Equal(t, []string{"c1", "c2", "h1", "w1", "w2", "i1"}, got)
}

func TestMergeExternal_DeductsBySeverity(t *testing.T) {
	cat := domain.NewCategoryResult("security", 100)
	r := domain.NewReport("Foo.cls", domain.KindApex, []domain.CategoryResult{cat}, domain.ApexLadder)
	require.Equal(t, 100, r.Score)

	r.MergeExternal(&domain.ScanStatus{Available: true, Violations: 3}, []domain.ExternalViolation{
		{Engine: "pmd", Rule: "ApexCRUDViolation", Severity: domain.SeverityCritical, Line: 4, Message: "crud"},
		{Engine: "pmd", Rule: "ApexSharingViolations", Severity: domain.SeverityHigh, Line: 1, Message: "sharing"},
		{Engine: "eslint", Rule: "no-unused-vars", Severity: domain.SeverityModerate, Line: 8, Message: "unused"},
	}, domain.ApexLadder)

	assert.Equal(t, 100, r.CustomScore)
	assert.Equal(t, 18, r.ExternalDeductions)
	assert.Equal(t, 82, r.Score)
	assert.Len(t, r.Issues, 3)
	assert.Equal(t, "pmd", r.Issues[0].Source)
}

func TestMergeExternal_FloorsAtZero(t *testing.T) {
	cat := domain.NewCategoryResult("security", 10)
	r := domain.NewReport("Foo.cls", domain.KindApex, []domain.CategoryResult{cat}, domain.ApexLadder)

	var violations []domain.ExternalViolation
	for i := 0; i < 5; i++ {
		violations = append(violations, domain.ExternalViolation{
			Engine: "pmd", Severity: domain.SeverityCritical, Message: "x",
		})
	}
	r.MergeExternal(&domain.ScanStatus{Available: true, Violations: 5}, violations, domain.ApexLadder)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, 50, r.ExternalDeductions)
}

func TestMergeExternal_NoViolationsKeepsScore(t *testing.T) {
	cat := domain.NewCategoryResult("security", 25)
	r := domain.NewReport("Foo.cls", domain.KindApex, []domain.CategoryResult{cat}, domain.ApexLadder)
	r.MergeExternal(&domain.ScanStatus{Available: false}, nil, domain.ApexLadder)
	assert.Equal(t, 25, r.Score)
	assert.Equal(t, 0, r.ExternalDeductions)
	assert.NotNil(t, r.Scan)
}

func TestLadder_Evaluate(t *testing.T) {
	tests := []struct {
		score, max, stars int
		label             string
	}{
		{150, 150, 5, "Excellent"},
		{135, 150, 5, "Excellent"},
		{113, 150, 4, "Very Good"},
		{90, 150, 3, "Good"},
		{68, 150, 2, "Needs Work"},
		{10, 150, 1, "Critical Issues"},
		{0, 0, 1, "Critical Issues"},
	}
	for _, tt := range tests {
		stars, label := domain.ApexLadder.Evaluate(tt.score, tt.max)
		assert.Equal(t, tt.stars, stars, "score %d/%d", tt.score, tt.max)
		assert.Equal(t, tt.label, label, "score %d/%d", tt.score, tt.max)
	}
}

func TestFlowLadder_TighterCurve(t *testing.T) {
	stars, label := domain.FlowLadder.Evaluate(99, 110)
	assert.Equal(t, 4, stars)
	assert.Equal(t, "Very Good", label)

	stars, _ = domain.ApexLadder.Evaluate(99, 110)
	assert.Equal(t, 5, stars)
	_ = label
}

func TestUnreadable_ScoreZeroSingleCritical(t *testing.T) {
	r := domain.Unreadable("Broken.cls", domain.KindApex, errors.New("permission denied"))
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, 150, r.MaxScore)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, domain.SeverityCritical, r.Issues[0].Severity)
	assert.Contains(t, r.Issues[0].Message, "permission denied")
}

func TestDeductionFor(t *testing.T) {
	assert.Equal(t, 10, domain.DeductionFor(domain.SeverityCritical))
	assert.Equal(t, 5, domain.DeductionFor(domain.SeverityHigh))
	assert.Equal(t, 3, domain.DeductionFor(domain.SeverityModerate))
	assert.Equal(t, 2, domain.DeductionFor(domain.SeverityWarning))
	assert.Equal(t, 1, domain.DeductionFor(domain.SeverityLow))
	assert.Equal(t, 0, domain.DeductionFor(domain.SeverityInfo))
	assert.Equal(t, 0, domain.DeductionFor("bogus"))
}

func TestStarString_Bounds(t *testing.T) {
	assert.Equal(t, "⭐", domain.StarString(0))
	assert.Equal(t, "⭐⭐⭐⭐⭐", domain.StarString(9))
	assert.Equal(t, "⭐⭐⭐", domain.StarString(3))
}
