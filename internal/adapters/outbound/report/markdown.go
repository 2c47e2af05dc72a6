package report

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders markdown source for terminal display, word-wrapped to
// width. Rendering failures fall back to the raw source.
func Markdown(source string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return source
	}

	rendered, err := renderer.Render(source)
	if err != nil {
		return source
	}

	// Trim trailing whitespace that glamour adds.
	return strings.TrimRight(rendered, "\n ")
}
