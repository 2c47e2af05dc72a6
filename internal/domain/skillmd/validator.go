package skillmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forcekit/forcekit/internal/domain"
)

// Category budgets in display order.
var budgets = []struct {
	name   string
	points int
}{
	{"frontmatter", 40},
	{"structure", 40},
	{"references", 20},
}

const (
	descriptionMin = 20
	descriptionMax = 1024
	nameMax        = 64
)

// Validate scores one SKILL.md file. A file without a frontmatter block
// zeroes the frontmatter category but the body checks still run, so the
// author sees every problem in one pass.
func Validate(art *domain.Artifact, cfg domain.Config) *domain.ValidationReport {
	cats, byName := newCategories()

	meta, body, found := Split(art.Content)
	fm := checkFrontmatter(meta, found, byName["frontmatter"], cfg)
	facts := checkStructure(body, byName["structure"], cfg)
	broken := checkReferences(art.Path, facts.References, byName["references"], cfg)

	r := domain.NewReport(art.Path, art.Kind, cats, domain.SkillLadder)
	r.Meta = map[string]string{
		"skill":             skillName(art.Path, fm),
		"sections":          strconv.Itoa(facts.Sections),
		"references":        strconv.Itoa(len(facts.References)),
		"broken_references": strconv.Itoa(broken),
	}
	return r
}

func newCategories() ([]domain.CategoryResult, map[string]*domain.CategoryResult) {
	cats := make([]domain.CategoryResult, len(budgets))
	byName := make(map[string]*domain.CategoryResult, len(budgets))
	for i, b := range budgets {
		cats[i] = domain.NewCategoryResult(b.name, b.points)
		byName[b.name] = &cats[i]
	}
	return cats, byName
}

// deduct applies one rule's penalty unless config skips the rule or its
// category.
func deduct(cat *domain.CategoryResult, cfg domain.Config, rule string, points int, issue domain.Issue) {
	if cfg.IsSkippedRule(rule) || cfg.IsSkippedCategory(cat.Name) {
		return
	}
	issue.Rule = rule
	issue.Category = cat.Name
	cat.Deduct(points, issue)
}

func checkFrontmatter(meta string, found bool, cat *domain.CategoryResult, cfg domain.Config) *Frontmatter {
	if !found {
		deduct(cat, cfg, "missing-frontmatter", 40, domain.Issue{
			Severity: domain.SeverityCritical,
			Line:     1,
			Message:  "SKILL.md has no YAML frontmatter block",
			Fix:      "Open the file with ---, add name and description, close with ---",
		})
		return nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		deduct(cat, cfg, "invalid-frontmatter", 40, domain.Issue{
			Severity: domain.SeverityCritical,
			Line:     1,
			Message:  fmt.Sprintf("Frontmatter is not valid YAML: %v", err),
			Fix:      "Fix the YAML syntax between the --- delimiters",
		})
		return nil
	}

	switch {
	case fm.Name == "":
		deduct(cat, cfg, "missing-name", 15, domain.Issue{
			Severity: domain.SeverityCritical,
			Line:     1,
			Message:  "Missing required frontmatter field: name",
			Fix:      "Add name: <skill-name> matching the skill directory",
		})
	case !KebabCase(fm.Name):
		deduct(cat, cfg, "name-not-kebab-case", 10, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     1,
			Message:  fmt.Sprintf("Skill name %q is not kebab-case", fm.Name),
			Fix:      "Use lowercase letters, digits and hyphens (e.g. apex-testing)",
		})
	case len(fm.Name) > nameMax:
		deduct(cat, cfg, "name-too-long", 5, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     1,
			Message:  fmt.Sprintf("Skill name is %d characters (maximum %d)", len(fm.Name), nameMax),
			Fix:      "Shorten the skill name",
		})
	}

	switch n := len(fm.Description); {
	case n == 0:
		deduct(cat, cfg, "missing-description", 15, domain.Issue{
			Severity: domain.SeverityCritical,
			Line:     1,
			Message:  "Missing required frontmatter field: description",
			Fix:      "Add description: what the skill does and when to use it",
		})
	case n < descriptionMin:
		deduct(cat, cfg, "description-too-short", 10, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     1,
			Message:  fmt.Sprintf("Description is %d characters - too short to route on (minimum %d)", n, descriptionMin),
			Fix:      "Describe what the skill does and when the assistant should pick it",
		})
	case n > descriptionMax:
		deduct(cat, cfg, "description-too-long", 10, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     1,
			Message:  fmt.Sprintf("Description is %d characters (maximum %d)", n, descriptionMax),
			Fix:      "Trim the description; move detail into the body",
		})
	}

	if _, ok := fm.ToolList(); !ok {
		deduct(cat, cfg, "allowed-tools-not-list", 5, domain.Issue{
			Severity: domain.SeverityWarning,
			Line:     1,
			Message:  "allowed-tools must be a list of tool names",
			Fix:      "Write allowed-tools as a YAML sequence (- Bash, - Read)",
		})
	}
	return &fm
}

func checkStructure(body string, cat *domain.CategoryResult, cfg domain.Config) BodyFacts {
	facts := InspectBody(body)

	if strings.TrimSpace(body) == "" {
		deduct(cat, cfg, "empty-body", 40, domain.Issue{
			Severity: domain.SeverityCritical,
			Message:  "SKILL.md body is empty",
			Fix:      "Add a # title and at least one ## section describing the workflow",
		})
		return facts
	}

	if facts.Titles == 0 {
		deduct(cat, cfg, "missing-title", 15, domain.Issue{
			Severity: domain.SeverityWarning,
			Message:  "Body has no top-level # title",
			Fix:      "Start the body with # <Skill Name>",
		})
	}
	if facts.Sections == 0 {
		deduct(cat, cfg, "no-sections", 10, domain.Issue{
			Severity: domain.SeverityWarning,
			Message:  "Body has no ## sections",
			Fix:      "Organize content under ## sections (When to use, Workflow, Examples)",
		})
	}

	if n := strings.Count(body, "\n") + 1; n > 500 {
		cat.Suggest(fmt.Sprintf("[Conciseness] Body is %d lines - consider moving detail into references the skill links to", n))
	}
	return facts
}

// checkReferences verifies that relative links point at files that ship
// with the skill. Returns the number of broken references.
func checkReferences(path string, refs []string, cat *domain.CategoryResult, cfg domain.Config) int {
	dir := filepath.Dir(path)
	broken := 0
	for _, dest := range refs {
		p, local := LocalPath(dest)
		if !local {
			continue
		}
		if filepath.IsAbs(p) {
			broken++
			deduct(cat, cfg, "absolute-reference", 3, domain.Issue{
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("Reference uses an absolute path: %s", dest),
				Fix:      "Use a path relative to the skill directory so installs stay portable",
			})
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			broken++
			deduct(cat, cfg, "broken-reference", 5, domain.Issue{
				Severity: domain.SeverityWarning,
				Message:  fmt.Sprintf("Broken local reference: %s", dest),
				Fix:      "Fix the path or add the referenced file to the skill",
			})
		}
	}
	return broken
}

// skillName prefers the frontmatter name and falls back to the directory
// the file sits in.
func skillName(path string, fm *Frontmatter) string {
	if fm != nil && fm.Name != "" {
		return fm.Name
	}
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return "unknown"
	}
	return dir
}
