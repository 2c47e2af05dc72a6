package packaging

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/forcekit/forcekit/internal/domain/skills"
)

// Cline combines every rule file in its flat .clinerules directory in
// name order, so each skill becomes a single markdown file with a
// numeric load-order prefix. Templates are inlined; Cline cannot
// reference supporting files.
type Cline struct{}

func (Cline) Name() string { return "cline" }

func (Cline) DefaultRoot(projectDir string) (string, error) {
	return filepath.Join(projectDir, ".clinerules"), nil
}

func (Cline) Target(root, name string) string {
	return filepath.Join(root, ruleFileName(name))
}

func (Cline) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	rule := clineRule(b)
	return &TransformedSkill{
		SkillMD: rule,
		Extra:   map[string]string{ruleFileName(b.Name): rule},
	}, nil
}

func (Cline) Write(out *TransformedSkill, root, _ string) error {
	return writeTree(root, out.Extra)
}

func ruleFileName(name string) string {
	return skills.OrderPrefix(name) + "-" + name + ".md"
}

// skillRefRe matches @skill mentions, which other hosts resolve as
// skill invocations but Cline reads as plain text.
var skillRefRe = regexp.MustCompile(`@([a-z-]+)\s*`)

// clineRule renders the whole skill as one markdown rule file: header,
// body, inlined templates, usage notes.
func clineRule(b *skills.Bundle) string {
	body := skills.StripPluginPaths(skills.StripFrontmatter(b.SkillMD))
	body = skillRefRe.ReplaceAllString(body, "See $1 rules for details. ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", skills.DisplayName(b.Name))
	fmt.Fprintf(&sb, "> Salesforce development rules for %s\n\n", titleWords(skills.Topic(b.Name)))
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n\n")
	if section := skills.TemplatesSection(b); section != "" {
		sb.WriteString(section)
		sb.WriteString("\n")
	}
	sb.WriteString(clineNotes(b.Name))
	return sb.String()
}

// clineNotes closes the rule with the file patterns it applies to and a
// validation caveat.
func clineNotes(name string) string {
	var sb strings.Builder
	sb.WriteString("---\n\n## Cline Usage Notes\n\n### File Patterns\n\n")
	sb.WriteString("When working with files matching these patterns, apply the rules above:\n")
	for _, p := range skills.FilePatterns(name) {
		fmt.Fprintf(&sb, "- `%s` - %s\n", p.Glob, p.Label)
	}
	sb.WriteString("\n### Validation\n\n")
	sb.WriteString("Validation scripts from the original skill are not executed by Cline.\n")
	sb.WriteString("Run them manually for full validation.\n")
	return sb.String()
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
