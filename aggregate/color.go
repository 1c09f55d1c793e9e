package aggregate

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

// ParseHex reads "#rrggbb" or "#rgb".
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// Hex formats the colour as "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *RGB) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scale maps counts onto a straight line between two anchor colours.
type Scale struct {
	Low  RGB `json:"low"`
	High RGB `json:"high"`
}

var (
	// CountryScale runs light cream to dark red.
	CountryScale = Scale{Low: RGB{255, 245, 235}, High: RGB{153, 0, 0}}
	// MaturityScale runs light blue to dark blue.
	MaturityScale = Scale{Low: RGB{230, 242, 255}, High: RGB{23, 58, 140}}
)

// Fraction is the interpolation position of value in [0, max]. Zero or
// negative inputs give 0; values above max are clamped to 1.
func (s Scale) Fraction(value, max int) float64 {
	if max <= 0 || value <= 0 {
		return 0
	}
	if value >= max {
		return 1
	}
	return float64(value) / float64(max)
}

// ColorFor returns the colour of a cell holding value when the largest cell
// holds max. Empty cells and empty matrices get the low anchor.
func (s Scale) ColorFor(value, max int) RGB {
	t := s.Fraction(value, max)
	if t == 0 {
		return s.Low
	}
	return RGB{
		R: lerp(s.Low.R, s.High.R, t),
		G: lerp(s.Low.G, s.High.G, t),
		B: lerp(s.Low.B, s.High.B, t),
	}
}

// Gradient samples steps colours from the empty colour up to the max colour,
// for drawing a colour bar.
func (s Scale) Gradient(steps int) []RGB {
	if steps < 2 {
		return []RGB{s.Low}
	}
	out := make([]RGB, steps)
	for i := range out {
		t := float64(i) / float64(steps-1)
		out[i] = RGB{
			R: lerp(s.Low.R, s.High.R, t),
			G: lerp(s.Low.G, s.High.G, t),
			B: lerp(s.Low.B, s.High.B, t),
		}
	}
	return out
}

var (
	lightText = RGB{255, 255, 255}
	darkText  = RGB{17, 24, 39}
)

// LabelColor picks a readable text colour for a cell: light once the cell is
// past 55% of max.
func LabelColor(value, max int) RGB {
	if float64(value) > float64(max)*0.55 {
		return lightText
	}
	return darkText
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
