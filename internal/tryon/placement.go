package tryon

import (
	"image"
	"math"

	"github.com/fashun/virtual-tryon/internal/landmarks"
)

// MinGarmentSize is the smallest width or height a garment is sized to
// before the rectangle is cut back to the image bounds.
const MinGarmentSize = 50

// HeightBasis selects what a Rule's height factor multiplies.
type HeightBasis int

const (
	// HeightFromWidth scales the computed garment width.
	HeightFromWidth HeightBasis = iota
	// HeightFromPerson scales the person image height.
	HeightFromPerson
)

// Rule sizes and anchors one garment type from a landmark set.
//
// width  = max(span × SpanScale, torso_width × TorsoScale)
// height = width × Height, or person_height × Height
// x      = AnchorX.x − width × ShiftX
// y      = AnchorY.y + OffsetY
type Rule struct {
	SpanLeft   landmarks.Landmark
	SpanRight  landmarks.Landmark
	SpanScale  float64
	TorsoScale float64

	Height      float64
	HeightBasis HeightBasis

	AnchorX landmarks.Landmark
	ShiftX  float64
	AnchorY landmarks.Landmark
	OffsetY float64
}

var upperBody = Rule{
	SpanLeft:    landmarks.LeftShoulder,
	SpanRight:   landmarks.RightShoulder,
	SpanScale:   1.1,
	TorsoScale:  1.0,
	Height:      1.2,
	HeightBasis: HeightFromWidth,
	AnchorX:     landmarks.LeftShoulder,
	ShiftX:      0.05,
	AnchorY:     landmarks.Neck,
	OffsetY:     10,
}

var rules = map[GarmentType]Rule{
	TShirt: upperBody,
	Hoodie: upperBody,
	Jacket: upperBody,
	Dress: {
		SpanLeft:    landmarks.LeftShoulder,
		SpanRight:   landmarks.RightShoulder,
		SpanScale:   1.2,
		TorsoScale:  1.1,
		Height:      0.65,
		HeightBasis: HeightFromPerson,
		AnchorX:     landmarks.LeftShoulder,
		ShiftX:      0.1,
		AnchorY:     landmarks.Neck,
		OffsetY:     15,
	},
	Pants: {
		SpanLeft:    landmarks.LeftHip,
		SpanRight:   landmarks.RightHip,
		SpanScale:   1.1,
		TorsoScale:  1.0,
		Height:      0.45,
		HeightBasis: HeightFromPerson,
		AnchorX:     landmarks.LeftHip,
		ShiftX:      0.05,
		AnchorY:     landmarks.Waist,
		OffsetY:     -20,
	},
}

// RuleFor returns the rule for t, falling back to the default type's rule.
func RuleFor(t GarmentType) Rule {
	if r, ok := rules[t]; ok {
		return r
	}
	return rules[DefaultGarmentType]
}

// Placement is the garment rectangle in person image pixels.
type Placement struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts p to an image.Rectangle.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Empty reports whether p covers no pixels.
func (p Placement) Empty() bool {
	return p.Width <= 0 || p.Height <= 0
}

// Place computes the garment rectangle for a person image of the given size.
//
// Sizes and anchors are truncated toward zero. The size is clamped to
// [MinGarmentSize, image dimension], the origin is pulled back inside the
// image, and any remaining overhang is cut off at the right and bottom
// edges. The result never extends past the image; it can be empty only for
// an empty image.
func Place(set landmarks.Set, t GarmentType, personWidth, personHeight int) Placement {
	r := RuleFor(t)

	span := set.Point(r.SpanRight).X - set.Point(r.SpanLeft).X
	w := int(math.Max(span*r.SpanScale, set.TorsoWidth*r.TorsoScale))

	var h int
	switch r.HeightBasis {
	case HeightFromPerson:
		h = int(float64(personHeight) * r.Height)
	default:
		h = int(float64(w) * r.Height)
	}

	x := int(set.Point(r.AnchorX).X - float64(w)*r.ShiftX)
	y := int(set.Point(r.AnchorY).Y + r.OffsetY)

	w = max(MinGarmentSize, min(w, personWidth))
	h = max(MinGarmentSize, min(h, personHeight))
	x = max(0, min(x, personWidth-w))
	y = max(0, min(y, personHeight-h))

	if x+w > personWidth {
		w = personWidth - x
	}
	if y+h > personHeight {
		h = personHeight - y
	}

	return Placement{X: x, Y: y, Width: w, Height: h}
}
