package apex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/forcekit/forcekit/internal/domain"
)

// Category budgets in display order. Testing, architecture and performance
// carry weight in the total but have no line checks yet; they stay at full
// score and keep the ceiling honest.
var budgets = []struct {
	name   string
	points int
}{
	{"bulkification", 25},
	{"security", 25},
	{"testing", 25},
	{"architecture", 20},
	{"clean_code", 20},
	{"error_handling", 15},
	{"performance", 10},
	{"documentation", 10},
}

var (
	classDeclRe = regexp.MustCompile(`(?i)\b(public|private|global)\s+(?:(?:abstract|virtual)\s+)?((?:with|without|inherited)\s+sharing\s+)?(?:(?:abstract|virtual)\s+)?(class|interface)\s+(\w+)`)
	classNameRe = regexp.MustCompile(`class\s+(\w+)`)
	methodRe    = regexp.MustCompile(`(public|private|protected|global)\s+(?:static\s+)?(\w+)\s+(\w+)\s*\(`)
	publicDocRe = regexp.MustCompile(`public\s+(?:static\s+)?(\w+)\s+(\w+)\s*\(`)
	isTestRe    = regexp.MustCompile(`(?i)^\s*@isTest`)
)

// Validate scores one Apex class or trigger against the rule checklist.
// It never fails: every outcome is a report.
func Validate(art *domain.Artifact, cfg domain.Config) *domain.ValidationReport {
	cats := make([]domain.CategoryResult, len(budgets))
	byName := make(map[string]*domain.CategoryResult, len(budgets))
	for i, b := range budgets {
		cats[i] = domain.NewCategoryResult(b.name, b.points)
		byName[b.name] = &cats[i]
	}

	runLineRules(art, byName, cfg)
	checkSharing(art, byName["security"], cfg)
	checkNaming(art, byName["clean_code"], cfg)
	checkDocumentation(art, byName["documentation"], cfg)

	return domain.NewReport(art.Path, art.Kind, cats, domain.ApexLadder)
}

// runLineRules is the single driver for LineRules: one pass over the lines,
// loop scope tracked alongside.
func runLineRules(art *domain.Artifact, byName map[string]*domain.CategoryResult, cfg domain.Config) {
	tracker := NewTracker()
	for i, line := range art.Lines {
		lineNo := i + 1
		inLoop, loopStart := tracker.Advance(line, lineNo)

		for _, rule := range LineRules {
			if cfg.IsSkippedRule(rule.ID) || cfg.IsSkippedCategory(rule.Category) {
				continue
			}
			if rule.InLoop && !inLoop {
				continue
			}
			if rule.Unless != nil && rule.Unless.MatchString(art.Content) {
				continue
			}
			if !rule.Pattern.MatchString(line) {
				continue
			}

			msg := rule.Message
			if rule.InLoop {
				msg = fmt.Sprintf(rule.Message, loopStart)
			}
			byName[rule.Category].Deduct(rule.Penalty, domain.Issue{
				Severity: rule.Severity,
				Category: rule.Category,
				Line:     lineNo,
				Message:  msg,
				Fix:      rule.Fix,
				Rule:     rule.ID,
			})
		}
	}
}

// checkSharing inspects class declarations for a sharing mode. A class with
// no declaration at all is flagged once at line 1; "without sharing" is
// flagged where it appears. Triggers have no class declaration and are
// exempt.
func checkSharing(art *domain.Artifact, security *domain.CategoryResult, cfg domain.Config) {
	if cfg.IsSkippedCategory("security") {
		return
	}

	hasClass, hasSharing := false, false
	for i, line := range art.Lines {
		m := classDeclRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		hasClass = true
		modifier := strings.ToLower(strings.TrimSpace(m[2]))
		if modifier == "" {
			continue
		}
		hasSharing = true
		if strings.HasPrefix(modifier, "without") && !cfg.IsSkippedRule("without-sharing") {
			security.Deduct(5, domain.Issue{
				Severity: domain.SeverityWarning,
				Category: "security",
				Line:     i + 1,
				Message:  `Class uses "without sharing" - ensure this is intentional`,
				Fix:      `Use "with sharing" by default, "inherited sharing" for utilities`,
				Rule:     "without-sharing",
			})
		}
	}

	if hasClass && !hasSharing && !cfg.IsSkippedRule("missing-sharing") {
		security.Deduct(5, domain.Issue{
			Severity: domain.SeverityWarning,
			Category: "security",
			Line:     1,
			Message:  "Class missing explicit sharing declaration",
			Fix:      `Add "with sharing" (recommended) or "inherited sharing" to class declaration`,
			Rule:     "missing-sharing",
		})
	}
}

// checkNaming flags class names that are not PascalCase and method names
// that are not camelCase. Constructors are exempt, and files opening with
// @isTest skip the method check entirely.
func checkNaming(art *domain.Artifact, cleanCode *domain.CategoryResult, cfg domain.Config) {
	if cfg.IsSkippedCategory("clean_code") {
		return
	}

	classNames := make(map[string]bool)
	for _, m := range classNameRe.FindAllStringSubmatch(art.Content, -1) {
		classNames[m[1]] = true
	}

	if !cfg.IsSkippedRule("class-pascal-case") {
		for i, line := range art.Lines {
			m := classNameRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[1]
			if name[0] < 'A' || name[0] > 'Z' {
				cleanCode.Deduct(2, domain.Issue{
					Severity: domain.SeverityInfo,
					Category: "clean_code",
					Line:     i + 1,
					Message:  fmt.Sprintf("Class name %q should be PascalCase", name),
					Fix:      fmt.Sprintf("Rename to %q", pascalCase(name)),
					Rule:     "class-pascal-case",
				})
			}
		}
	}

	if isTestFile(art) || cfg.IsSkippedRule("method-camel-case") {
		return
	}
	for i, line := range art.Lines {
		m := methodRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[3]
		if name[0] < 'A' || name[0] > 'Z' || classNames[name] {
			continue
		}
		cleanCode.Deduct(2, domain.Issue{
			Severity: domain.SeverityInfo,
			Category: "clean_code",
			Line:     i + 1,
			Message:  fmt.Sprintf("Method name %q should be camelCase", name),
			Fix:      fmt.Sprintf("Rename to %q", lowerCamelCase(name)),
			Rule:     "method-camel-case",
		})
	}
}

// checkDocumentation flags public methods with no comment in the four
// preceding lines.
func checkDocumentation(art *domain.Artifact, documentation *domain.CategoryResult, cfg domain.Config) {
	if cfg.IsSkippedCategory("documentation") || cfg.IsSkippedRule("missing-method-doc") {
		return
	}

	for i, line := range art.Lines {
		if !publicDocRe.MatchString(line) {
			continue
		}
		if hasPrecedingComment(art.Lines, i) {
			continue
		}
		documentation.Deduct(2, domain.Issue{
			Severity: domain.SeverityInfo,
			Category: "documentation",
			Line:     i + 1,
			Message:  "Public method missing documentation",
			Fix:      "Add ApexDoc comment: /** @description ... */",
			Rule:     "missing-method-doc",
		})
	}
}

func hasPrecedingComment(lines []string, idx int) bool {
	start := idx - 4
	if start < 0 {
		start = 0
	}
	for _, prev := range lines[start:idx] {
		if strings.Contains(prev, "/**") || strings.Contains(prev, "//") {
			return true
		}
	}
	return false
}

func isTestFile(art *domain.Artifact) bool {
	for _, line := range art.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return isTestRe.MatchString(line)
	}
	return false
}

// lowerCamelCase rewrites an identifier with its first word lowercased,
// keeping the remaining word boundaries.
func lowerCamelCase(name string) string {
	words := camelcase.Split(name)
	if len(words) == 0 {
		return name
	}
	words[0] = strings.ToLower(words[0])
	return strings.Join(words, "")
}

// pascalCase uppercases the first letter of the first word.
func pascalCase(name string) string {
	words := camelcase.Split(name)
	if len(words) == 0 {
		return name
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, "")
}
