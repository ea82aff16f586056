package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the isoscene banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Teal to amber, the colours of the default grid and the sunset preset.
	lines := []struct{ text, color string }{
		{`  _                                      `, "#2dd4bf"},
		{` (_)___  ___  ___  ___ ___ _ __   ___   `, "#38bdf8"},
		{` | / __|/ _ \/ __|/ __/ _ \ '_ \ / _ \  `, "#818cf8"},
		{` | \__ \ (_) \__ \ (_|  __/ | | |  __/  `, "#c084fc"},
		{` |_|___/\___/|___/\___\___|_| |_|\___|  `, "#ff9a5a"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
