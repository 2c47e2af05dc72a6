package packaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forcekit/forcekit/internal/domain/skills"
)

// Cursor converts skills into MDC rules under .cursor/rules. The rule
// file sits directly in the rules directory; supporting files go into a
// sibling directory named after the skill.
type Cursor struct{}

func (Cursor) Name() string { return "cursor" }

func (Cursor) DefaultRoot(projectDir string) (string, error) {
	return filepath.Join(projectDir, ".cursor", "rules"), nil
}

func (Cursor) Target(root, name string) string {
	return filepath.Join(root, name+".mdc")
}

func (Cursor) Transform(b *skills.Bundle) (*TransformedSkill, error) {
	out := common(b)

	header, err := mdcFrontmatter(skills.Description(b.SkillMD), skills.Globs(b.Name))
	if err != nil {
		return nil, err
	}
	body := strings.TrimSpace(skills.StripFrontmatter(out.SkillMD))
	out.SkillMD = header + "\n" + body + cursorNotes(b.Name)
	out.Extra = map[string]string{b.Name + ".mdc": out.SkillMD}

	bundleShared(out, b)
	return out, nil
}

func (Cursor) Write(out *TransformedSkill, root, name string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if err := writeTree(root, out.Extra); err != nil {
		return err
	}

	sub := filepath.Join(root, name)
	if err := writeTree(filepath.Join(sub, "scripts"), out.Scripts); err != nil {
		return err
	}
	if err := writeTree(filepath.Join(sub, "assets"), out.Templates); err != nil {
		return err
	}
	if err := writeTree(filepath.Join(sub, "references"), out.Docs); err != nil {
		return err
	}
	return writeTree(filepath.Join(sub, "examples"), out.Examples)
}

// mdcFrontmatter renders the MDC rule header. Globs keep flow style so
// each field reads as one line.
func mdcFrontmatter(description string, globs []string) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, g := range globs {
		seq.Content = append(seq.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Style: yaml.DoubleQuotedStyle,
			Value: g,
		})
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "description"},
		{Kind: yaml.ScalarNode, Value: description},
		{Kind: yaml.ScalarNode, Value: "globs"},
		seq,
		{Kind: yaml.ScalarNode, Value: "alwaysApply"},
		{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"},
	}}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return "---\n" + string(data) + "---\n", nil
}

// cursorNotes closes the rule with guidance on the parts MDC cannot
// express: scripts stay on disk and run manually.
func cursorNotes(name string) string {
	return fmt.Sprintf(`

---

## Cursor Integration Notes

This rule was converted from an Agent Skill (SKILL.md format).

### Validation Scripts

Validation scripts are available in the `+"`scripts/`"+` directory.
Run them manually after editing files:

`+"```bash"+`
cd .cursor/rules/%s/scripts
python validate_*.py path/to/your/file
`+"```"+`

### Full Agent Skills Support

For complete Agent Skills functionality (automatic validation,
templates, etc.), consider the SkillPort MCP server which bridges
Agent Skills to Cursor.
`, name)
}
