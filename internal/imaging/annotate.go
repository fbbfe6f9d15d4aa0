package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Marker is a labelled point to draw on an annotation overlay.
type Marker struct {
	X     float64
	Y     float64
	Label string
}

// Annotation describes what Annotate draws on top of an image.
type Annotation struct {
	// Markers are drawn as small crosses with their label beside them.
	Markers []Marker

	// Box is outlined when non-empty, typically the garment placement.
	Box image.Rectangle

	// Outline is drawn as a thinner frame, typically the silhouette bounds.
	Outline image.Rectangle

	// MarkerColor and BoxColor are hex strings ("#RRGGBB"). Invalid or empty
	// values fall back to red markers and a green box.
	MarkerColor string
	BoxColor    string
}

// Annotate returns a copy of img with the annotation drawn on it.
//
// The source image is not modified. Markers, boxes and labels are clipped to
// the image bounds.
func Annotate(img image.Image, a Annotation) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	markerColor := parseHexColor(a.MarkerColor, color.RGBA{255, 0, 0, 255})
	boxColor := parseHexColor(a.BoxColor, color.RGBA{0, 200, 0, 255})
	labelBg := color.RGBA{0, 0, 0, 180}

	if !a.Outline.Empty() {
		strokeRect(result, a.Outline, 1, color.RGBA{255, 255, 0, 255})
	}
	if !a.Box.Empty() {
		strokeRect(result, a.Box, 2, boxColor)
	}

	for _, m := range a.Markers {
		x := int(math.Round(m.X)) + bounds.Min.X
		y := int(math.Round(m.Y)) + bounds.Min.Y
		for d := -4; d <= 4; d++ {
			setClipped(result, x+d, y, markerColor)
			setClipped(result, x, y+d, markerColor)
		}
		if m.Label != "" {
			drawLabel(result, x+6, y-3, m.Label, color.RGBA{255, 255, 255, 255}, labelBg)
		}
	}

	return result
}

// strokeRect draws the outline of r with the given line thickness, inset
// into the rectangle.
func strokeRect(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setClipped(img, x, r.Min.Y+t, c)
			setClipped(img, x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setClipped(img, r.Min.X+t, y, c)
			setClipped(img, r.Max.X-1-t, y, c)
		}
	}
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// drawLabel draws text on a translucent background with its top-left at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	box := image.Rect(x-1, y-1, x+width+1, y+height).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

// parseHexColor parses "#RRGGBB", returning fallback when s is not a valid
// hex color.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	if s == "" {
		return fallback
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
