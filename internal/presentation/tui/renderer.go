package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// Output that is not a terminal gets the markdown back unchanged.
func NewRenderer(out *os.File) func(string) (string, error) {
	if out == nil || !term.IsTerminal(int(out.Fd())) {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	width := 80
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return r.Render
}

// RenderStyled renders markdown with a fixed glamour style, regardless of the output.
func RenderStyled(markdown, style string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style))
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
