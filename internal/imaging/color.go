package imaging

import (
	"image"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	HSL        HSLColor `json:"hsl"`
}

// PaletteResult contains the most frequently occurring colors of a garment.
//
// Colors are sorted by frequency in descending order (most common first).
type PaletteResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// Palette extracts the count most common colors of img.
//
// Colors are quantized to 16 levels per channel before counting, so shades
// within 16 units of each other are grouped. Ties in frequency are ordered by
// hex string so the result is deterministic. The alpha channel is ignored,
// matching how garments are blended.
func Palette(img image.Image, count int) *PaletteResult {
	bounds := img.Bounds()
	counts := make(map[color.NRGBA]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			key := color.NRGBA{R: c.R / 16 * 16, G: c.G / 16 * 16, B: c.B / 16 * 16, A: 0xff}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		cf, _ := colorful.MakeColor(c)
		h, s, l := cf.Hsl()
		colors = append(colors, ColorFrequency{
			Hex:        cf.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			HSL:        HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count > 0 && len(colors) > count {
		colors = colors[:count]
	}

	return &PaletteResult{Colors: colors}
}
