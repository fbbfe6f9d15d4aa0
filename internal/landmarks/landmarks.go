package landmarks

import (
	"image"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Landmark names one estimated body point.
type Landmark string

const (
	LeftShoulder  Landmark = "left_shoulder"
	RightShoulder Landmark = "right_shoulder"
	LeftElbow     Landmark = "left_elbow"
	RightElbow    Landmark = "right_elbow"
	LeftWrist     Landmark = "left_wrist"
	RightWrist    Landmark = "right_wrist"
	LeftHip       Landmark = "left_hip"
	RightHip      Landmark = "right_hip"
	Neck          Landmark = "neck"
	Waist         Landmark = "waist"
)

// All lists every landmark in a stable order.
var All = []Landmark{
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	Neck, Waist,
}

// Source records which region the ratios were applied to.
type Source string

const (
	SourceContour  Source = "contour"
	SourceFallback Source = "fallback"
)

// Point is a landmark position in pixels.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as an [x, y] pair.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// Ratio positions a point as fractions of a region's width and height.
type Ratio struct {
	X float64
	Y float64
}

// Set is a complete set of landmarks for one image.
type Set struct {
	Points      map[Landmark]Point
	TorsoWidth  float64
	TorsoHeight float64
	Source      Source

	// Region is the rectangle the ratios were applied to: the silhouette's
	// bounding box, or the whole frame for a fallback set.
	Region image.Rectangle
}

// Point returns the position of l. Missing landmarks read as the origin.
func (s Set) Point(l Landmark) Point {
	return s.Points[l]
}

// MarshalJSON flattens the set into one object: every landmark as an [x, y]
// pair next to torso_width, torso_height and source.
func (s Set) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Points)+3)
	for name, p := range s.Points {
		out[string(name)] = p
	}
	out["torso_width"] = s.TorsoWidth
	out["torso_height"] = s.TorsoHeight
	out["source"] = s.Source
	return json.Marshal(out)
}

// silhouetteRatios place landmarks inside the largest contour's bounding box.
var silhouetteRatios = map[Landmark]Ratio{
	LeftShoulder:  {0.25, 0.15},
	RightShoulder: {0.75, 0.15},
	LeftElbow:     {0.15, 0.35},
	RightElbow:    {0.85, 0.35},
	LeftWrist:     {0.10, 0.55},
	RightWrist:    {0.90, 0.55},
	LeftHip:       {0.35, 0.65},
	RightHip:      {0.65, 0.65},
	Neck:          {0.50, 0.08},
	Waist:         {0.50, 0.55},
}

// fallbackRatios place landmarks over the whole frame when no contour exists.
var fallbackRatios = map[Landmark]Ratio{
	LeftShoulder:  {0.35, 0.25},
	RightShoulder: {0.65, 0.25},
	LeftElbow:     {0.25, 0.40},
	RightElbow:    {0.75, 0.40},
	LeftWrist:     {0.20, 0.55},
	RightWrist:    {0.80, 0.55},
	LeftHip:       {0.40, 0.60},
	RightHip:      {0.60, 0.60},
	Neck:          {0.50, 0.20},
	Waist:         {0.50, 0.55},
}

const (
	silhouetteTorsoWidth  = 0.5
	silhouetteTorsoHeight = 0.5
	fallbackTorsoWidth    = 0.3
	fallbackTorsoHeight   = 0.4
)

// FromSilhouette derives landmarks from a silhouette bounding box.
func FromSilhouette(r image.Rectangle) Set {
	w, h := float64(r.Dx()), float64(r.Dy())
	return Set{
		Points:      applyRatios(silhouetteRatios, r),
		TorsoWidth:  w * silhouetteTorsoWidth,
		TorsoHeight: h * silhouetteTorsoHeight,
		Source:      SourceContour,
		Region:      r,
	}
}

// Fallback derives landmarks from the frame size alone.
func Fallback(width, height int) Set {
	r := image.Rect(0, 0, width, height)
	return Set{
		Points:      applyRatios(fallbackRatios, r),
		TorsoWidth:  float64(width) * fallbackTorsoWidth,
		TorsoHeight: float64(height) * fallbackTorsoHeight,
		Source:      SourceFallback,
		Region:      r,
	}
}

func applyRatios(table map[Landmark]Ratio, r image.Rectangle) map[Landmark]Point {
	x, y := float64(r.Min.X), float64(r.Min.Y)
	w, h := float64(r.Dx()), float64(r.Dy())

	points := make(map[Landmark]Point, len(table))
	for name, ratio := range table {
		points[name] = Point{X: x + w*ratio.X, Y: y + h*ratio.Y}
	}
	return points
}
