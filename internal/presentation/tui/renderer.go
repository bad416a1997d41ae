package tui

import (
	"github.com/charmbracelet/glamour"
)

// Renderer turns step descriptions (markdown) into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour backed Renderer. When the terminal style
// cannot be set up it falls back to returning the markdown as is.
func NewRenderer(opts ...glamour.TermRendererOption) Renderer {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(72),
		}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return PlainRenderer
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlainRenderer leaves markdown untouched.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}
