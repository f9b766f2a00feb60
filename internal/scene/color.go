package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hitboard/hitboard/internal/record"
)

// DefaultColor fills anything without a palette entry.
const DefaultColor = "#cccccc"

// RegionColors is the leaderboard palette.
var RegionColors = map[string]string{
	"Western Europe":                     "#4e79a7",
	"North America and ANZ":              "#59a14f",
	"Latin America and Caribbean":        "#f28e2c",
	"Middle East and North Africa":       "#edc949",
	"East Asia":                          "#e15759",
	"Southeast Asia":                     "#76b7b2",
	"Central and Eastern Europe":         "#b07aa1",
	"Commonwealth of Independent States": "#9c755f",
	"South Asia":                         "#bab0ab",
	"Sub-Saharan Africa":                 "#d37295",
}

// Tableau10 colors radar series.
var Tableau10 = []string{
	"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// PlatformColor returns the brand color of a platform.
func PlatformColor(name string) string {
	if p, ok := record.PlatformByName(name); ok && p.Color != "" {
		return p.Color
	}
	return DefaultColor
}

// RegionColor returns the palette color of a region.
func RegionColor(region string) string {
	if c, ok := RegionColors[region]; ok {
		return c
	}
	return DefaultColor
}

type rgb struct{ r, g, b float64 }

func parseHex(s string) (rgb, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{float64(v >> 16 & 0xff), float64(v >> 8 & 0xff), float64(v & 0xff)}, true
}

func (c rgb) hex() string {
	clamp := func(x float64) int { return int(math.Round(math.Max(0, math.Min(255, x)))) }
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.r), clamp(c.g), clamp(c.b))
}

// Darker scales every channel by 0.7^k. Unparseable colors pass through.
func Darker(color string, k float64) string {
	c, ok := parseHex(color)
	if !ok {
		return color
	}
	f := math.Pow(0.7, k)
	return rgb{c.r * f, c.g * f, c.b * f}.hex()
}

// Lerp interpolates between two hex colors in RGB space.
func Lerp(from, to string, t float64) string {
	a, okA := parseHex(from)
	b, okB := parseHex(to)
	if !okA || !okB {
		return DefaultColor
	}
	t = math.Max(0, math.Min(1, t))
	return rgb{a.r + (b.r-a.r)*t, a.g + (b.g-a.g)*t, a.b + (b.b-a.b)*t}.hex()
}

// PopularityColor maps popularity 0..100 onto a red to green ramp.
func PopularityColor(p float64) string {
	if math.IsNaN(p) {
		return DefaultColor
	}
	return Lerp("#ff4444", "#44ff44", p/100)
}
