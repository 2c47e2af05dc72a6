// Package skillmd validates SKILL.md files: YAML frontmatter against the
// agent-skills contract and markdown body structure via goldmark. All
// findings are advisory.
package skillmd

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header of a SKILL.md file. AllowedTools stays a
// raw node so a scalar where a list belongs is a finding, not a parse
// failure.
type Frontmatter struct {
	Name         string    `yaml:"name"`
	Description  string    `yaml:"description"`
	AllowedTools yaml.Node `yaml:"allowed-tools"`
}

// ToolList extracts allowed-tools. ok is false when the field is present
// but not a sequence of names.
func (f *Frontmatter) ToolList() (tools []string, ok bool) {
	switch f.AllowedTools.Kind {
	case 0:
		return nil, true
	case yaml.SequenceNode:
		if err := f.AllowedTools.Decode(&tools); err != nil {
			return nil, false
		}
		return tools, true
	default:
		return nil, false
	}
}

// kebabRe is the skill naming convention: lowercase words joined by
// single hyphens.
var kebabRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// KebabCase reports whether name follows the skill naming convention.
func KebabCase(name string) bool {
	return kebabRe.MatchString(name)
}

// Split separates the YAML frontmatter block from the markdown body. ok
// is false when the file does not open with a --- delimiter pair; body is
// then the whole content.
func Split(content string) (meta, body string, ok bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r ") != "---" {
		return "", content, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r ") == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", content, false
}

// BodyFacts summarizes the markdown body.
type BodyFacts struct {
	Titles     int      // level-1 headings
	Sections   int      // level-2 headings
	References []string // link and image destinations in document order
}

// InspectBody parses markdown and collects headings and reference
// destinations.
func InspectBody(body string) BodyFacts {
	doc := goldmark.New().Parser().Parse(text.NewReader([]byte(body)))

	var facts BodyFacts
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			switch v.Level {
			case 1:
				facts.Titles++
			case 2:
				facts.Sections++
			}
		case *ast.Link:
			facts.References = append(facts.References, string(v.Destination))
		case *ast.Image:
			facts.References = append(facts.References, string(v.Destination))
		}
		return ast.WalkContinue, nil
	})
	return facts
}

// LocalPath reduces a reference destination to a checkable relative path.
// Anchors, URLs and mailto links are not local; fragments and queries are
// stripped from the rest.
func LocalPath(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return "", false
	}
	p := dest
	if i := strings.IndexAny(p, "#?"); i >= 0 {
		p = p[:i]
	}
	return p, p != ""
}
