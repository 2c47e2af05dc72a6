package skills

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forcekit/forcekit/internal/domain/skillmd"
)

// headingRe matches the first top-level markdown heading.
var headingRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// pluginPathRe matches absolute plugin marketplace paths that only
// resolve inside the host the skill was authored for.
var pluginPathRe = regexp.MustCompile(`~/\.claude/plugins/marketplaces/[^/\s]+/[^/\s]+/`)

// Description extracts a one-line description for a skill: the
// frontmatter description when present, otherwise the first top-level
// heading. Whitespace is collapsed and the result capped at 200 runes.
func Description(content string) string {
	if meta, _, ok := skillmd.Split(content); ok {
		var fm skillmd.Frontmatter
		if yaml.Unmarshal([]byte(meta), &fm) == nil && fm.Description != "" {
			return clip(strings.Join(strings.Fields(fm.Description), " "), 200)
		}
	}
	if m := headingRe.FindStringSubmatch(content); m != nil {
		return clip(strings.TrimSpace(m[1]), 200)
	}
	return "Salesforce development skill"
}

// StripFrontmatter returns the markdown body without the YAML header.
func StripFrontmatter(content string) string {
	_, body, _ := skillmd.Split(content)
	return body
}

// StripPluginPaths removes marketplace path prefixes from file
// references so they resolve relative to the installed copy.
func StripPluginPaths(content string) string {
	return pluginPathRe.ReplaceAllString(content, "")
}

// Topic returns the skill's subject for prose: the sf- prefix dropped
// and hyphens spaced.
func Topic(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "sf-"), "-", " ")
}

// NeedsSharedModules reports whether any script imports the shared
// Python modules, meaning a self-contained install must bundle them.
func NeedsSharedModules(scripts map[string]string) bool {
	for _, content := range scripts {
		if strings.Contains(content, "from shared") || strings.Contains(content, "import shared") {
			return true
		}
		if strings.Contains(content, "lsp_client") || strings.Contains(content, "code_analyzer") {
			return true
		}
	}
	return false
}

// TemplatesSection renders the bundle's templates as fenced code blocks
// for targets that cannot ship them as separate files. Empty when the
// bundle has no templates.
func TemplatesSection(b *Bundle) string {
	if len(b.Templates) == 0 {
		return ""
	}

	paths := make([]string, 0, len(b.Templates))
	for p := range b.Templates {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sb strings.Builder
	sb.WriteString("---\n\n## Code Templates\n\n")
	fmt.Fprintf(&sb, "The following templates are production-ready patterns for %s.\n", Topic(b.Name))
	sb.WriteString("Copy and customize these for your implementation.\n")
	for _, p := range paths {
		fmt.Fprintf(&sb, "\n### Template: %s\n\n```%s\n%s\n```\n",
			p, FenceLanguage(p), strings.TrimSpace(b.Templates[p]))
	}
	return sb.String()
}

var fenceLanguages = map[string]string{
	".cls":     "apex",
	".trigger": "apex",
	".apex":    "apex",
	".js":      "javascript",
	".html":    "html",
	".css":     "css",
	".xml":     "xml",
	".json":    "json",
	".yaml":    "yaml",
	".yml":     "yaml",
	".md":      "markdown",
	".py":      "python",
	".sh":      "bash",
	".soql":    "sql",
}

// FenceLanguage returns the fenced code block language for a file name,
// empty when the extension is unknown.
func FenceLanguage(path string) string {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return ""
	}
	return fenceLanguages[strings.ToLower(path[dot:])]
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
