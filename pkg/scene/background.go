package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Theme is a background preset.
type Theme struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Fog        string `json:"fog"`
}

var themes = map[string]Theme{
	"default": {Name: "default", Background: "#f0f0f0", Fog: "#f0f0f0"},
	"sunset":  {Name: "sunset", Background: "#ff9a5a", Fog: "#d9735a"},
	"night":   {Name: "night", Background: "#101828", Fog: "#0b1220"},
	"forest":  {Name: "forest", Background: "#a8c69f", Fog: "#6f8f68"},
	"ocean":   {Name: "ocean", Background: "#5fa8d3", Fog: "#3d7ea6"},
}

// LookupTheme returns the preset with name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(name)]
	return t, ok
}

// Themes lists the presets sorted by name.
func Themes() []Theme {
	out := make([]Theme, 0, len(themes))
	for _, t := range themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseColor validates a "#rrggbb" colour and returns it in canonical lower-case form.
func ParseColor(s string) (string, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c.Hex(), nil
}

// ToLinear converts a "#rrggbb" colour to linear RGB components in [0, 1].
func ToLinear(hex string) (r, g, b float64, err error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b = c.LinearRgb()
	return r, g, b, nil
}

// FromLinear converts linear RGB components back to "#rrggbb".
func FromLinear(r, g, b float64) string {
	return colorful.LinearRgb(r, g, b).Clamped().Hex()
}

// FogColorFor derives a fog colour from a background by darkening it in linear space.
func FogColorFor(background string) (string, error) {
	r, g, b, err := ToLinear(background)
	if err != nil {
		return "", err
	}
	const darken = 0.6
	return FromLinear(r*darken, g*darken, b*darken), nil
}
