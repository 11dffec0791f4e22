package cmd

import (
	"github.com/charmbracelet/glamour"
)

// markdownRenderer converts answer markdown to styled terminal output,
// falling back to plain text when the terminal cannot be styled.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer() *markdownRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{renderer: r}
}

// Render returns styled output, or the input unchanged when styling is
// unavailable.
func (m *markdownRenderer) Render(markdown string) string {
	if m == nil || m.renderer == nil {
		return markdown
	}
	out, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
