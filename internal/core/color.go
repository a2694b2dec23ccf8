package core

import (
	"fmt"
	"unicode/utf16"

	"github.com/lucasb-eyer/go-colorful"
)

// Category color parameters.
const (
	colorLightness  = 54
	colorSatBase    = 60
	colorSatSpread  = 20
	neutralColorHex = "#9aa3af"
)

// Color is a decorative HSL color derived from a category name.
// Saturation and lightness are percentages.
type Color struct {
	Hue        int
	Saturation int
	Lightness  int
	Neutral    bool
}

// ColorForType maps a category to a stable color. The hash is a 32-bit
// rolling h*31+c over the UTF-16 code units. The empty category is neutral gray.
func ColorForType(typ string) Color {
	if typ == "" {
		return Color{Neutral: true}
	}

	h := abs(int64(hashType(typ)))
	return Color{
		Hue:        int(h % 360),
		Saturation: colorSatBase + int(h%colorSatSpread),
		Lightness:  colorLightness,
	}
}

// hashType computes the rolling hash with int32 wraparound.
func hashType(typ string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(typ)) {
		h = (h << 5) - h + int32(c)
	}
	return h
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	if c.Neutral {
		return neutralColorHex
	}
	return colorful.Hsl(float64(c.Hue), float64(c.Saturation)/100, float64(c.Lightness)/100).Clamped().Hex()
}

// CSS renders the color as a CSS hsl() value.
func (c Color) CSS() string {
	if c.Neutral {
		return neutralColorHex
	}
	return fmt.Sprintf("hsl(%ddeg %d%% %d%%)", c.Hue, c.Saturation, c.Lightness)
}
