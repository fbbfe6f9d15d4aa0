package detection

import (
	"image"
	"math"

	"github.com/fashun/virtual-tryon/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Bounds is an axis-aligned bounding box in pixel coordinates.
//
// Width and Height count pixels, so a single pixel has Width = Height = 1.
// This matches the (x, y, w, h) convention of a bounding rectangle.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts b to an image.Rectangle (max exclusive).
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// contains reports whether o lies entirely within b.
func (b Bounds) contains(o Bounds) bool {
	return o.X >= b.X && o.Y >= b.Y &&
		o.X+o.Width <= b.X+b.Width && o.Y+o.Height <= b.Y+b.Height
}

// Contour is the outer boundary of one connected group of edge pixels.
type Contour struct {
	// Points is the simplified boundary polygon, clockwise, starting at the
	// group's top-most then left-most pixel. Runs of collinear boundary pixels
	// are reduced to their end points.
	Points []Point `json:"points"`

	// Area is the polygon area of Points (shoelace formula). A contour made
	// of a single pixel or a one-pixel-wide line has zero area.
	Area float64 `json:"area"`

	// Bounds is the bounding box of the boundary pixels.
	Bounds Bounds `json:"bounds"`

	// Length is the number of boundary steps before simplification.
	Length int `json:"length"`
}

// neighbors lists the 8-neighborhood clockwise (y down), starting east.
var neighbors = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

const west = 4

// FindExternalContours extracts the outer contours of a binary edge map.
//
// Edge pixels are grouped into 8-connected components. Each component's
// outer boundary is traced with Moore-neighbor tracing and simplified.
// Components lying inside another component's outer boundary (holes and
// anything within them) are dropped, so only outermost contours remain.
//
// Contours are returned in raster scan order of their starting pixel, which
// makes the order deterministic for a given edge map.
func FindExternalContours(edges *imaging.EdgeMap) []Contour {
	width, height := edges.Width, edges.Height
	labels := make([]int32, width*height)

	contours := make([]Contour, 0)
	starts := make([]Point, 0)
	var next int32

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if !edges.Pix[i] || labels[i] != 0 {
				continue
			}
			next++
			size := floodFill(edges, labels, x, y, next)

			start := Point{X: x, Y: y}
			boundary := traceBoundary(edges, start, 4*size+16)
			contours = append(contours, newContour(boundary))
			starts = append(starts, start)
		}
	}

	return dropNested(contours, starts)
}

// Largest returns the contour with the greatest area. Ties go to the contour
// that comes first in contours. ok is false when contours is empty.
func Largest(contours []Contour) (c Contour, ok bool) {
	if len(contours) == 0 {
		return Contour{}, false
	}
	best := 0
	for i := 1; i < len(contours); i++ {
		if contours[i].Area > contours[best].Area {
			best = i
		}
	}
	return contours[best], true
}

// floodFill labels the 8-connected component containing (startX, startY)
// and returns its size in pixels.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large components.
func floodFill(edges *imaging.EdgeMap, labels []int32, startX, startY int, label int32) int {
	width := edges.Width
	stack := []Point{{X: startX, Y: startY}}
	labels[startY*width+startX] = label
	size := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++

		for _, d := range neighbors {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !edges.At(nx, ny) {
				continue
			}
			j := ny*width + nx
			if labels[j] != 0 {
				continue
			}
			labels[j] = label
			stack = append(stack, Point{X: nx, Y: ny})
		}
	}
	return size
}

// traceBoundary walks the outer boundary of the component containing start.
//
// start must be the component's first pixel in raster order, so its west,
// north-west, north and north-east neighbors are background. Tracing stops
// when the walk is about to repeat its first move, or after maxSteps as a
// guard.
func traceBoundary(edges *imaging.EdgeMap, start Point, maxSteps int) []Point {
	boundary := []Point{start}

	cur, back := start, west
	var second Point
	for step := 0; step < maxSteps; step++ {
		n, nb, ok := stepClockwise(edges, cur, back)
		if !ok {
			// Isolated pixel
			break
		}
		if step == 0 {
			second = n
		} else if cur == start && n == second {
			break
		}
		boundary = append(boundary, n)
		cur, back = n, nb
	}

	if len(boundary) > 1 && boundary[len(boundary)-1] == start {
		boundary = boundary[:len(boundary)-1]
	}
	return boundary
}

// stepClockwise scans cur's neighbors clockwise starting just after the
// backtrack direction and returns the first edge pixel with the new
// backtrack direction, expressed relative to that pixel.
func stepClockwise(edges *imaging.EdgeMap, cur Point, back int) (Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := Point{X: cur.X + neighbors[d].X, Y: cur.Y + neighbors[d].Y}
		if !edges.At(n.X, n.Y) {
			continue
		}
		pd := neighbors[(back+i-1)%8]
		prev := Point{X: cur.X + pd.X, Y: cur.Y + pd.Y}
		return n, direction(n, prev), true
	}
	return Point{}, 0, false
}

// direction returns the neighbor index leading from a to the adjacent b.
func direction(a, b Point) int {
	dx, dy := b.X-a.X, b.Y-a.Y
	for i, d := range neighbors {
		if d.X == dx && d.Y == dy {
			return i
		}
	}
	return west
}

// newContour simplifies a traced boundary and computes its area and bounds.
func newContour(boundary []Point) Contour {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, p := range boundary {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	points := simplify(boundary)
	return Contour{
		Points: points,
		Area:   polygonArea(points),
		Bounds: Bounds{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1},
		Length: len(boundary),
	}
}

// simplify removes boundary points whose incoming and outgoing steps point
// the same way, keeping only the corners of the closed polygon.
func simplify(boundary []Point) []Point {
	n := len(boundary)
	if n <= 2 {
		return append([]Point(nil), boundary...)
	}

	out := make([]Point, 0, n)
	for i, p := range boundary {
		prev := boundary[(i+n-1)%n]
		next := boundary[(i+1)%n]
		inX, inY := p.X-prev.X, p.Y-prev.Y
		outX, outY := next.X-p.X, next.Y-p.Y
		if inX != outX || inY != outY {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		// Degenerate walk; keep the start so the contour is never empty.
		out = append(out, boundary[0])
	}
	return out
}

// polygonArea returns the absolute area enclosed by a closed polygon.
func polygonArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum int
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(float64(sum)) / 2
}

// pointInPolygon reports whether p lies strictly inside the closed polygon
// using the even-odd ray casting rule.
func pointInPolygon(p Point, poly []Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) == (pj.Y > p.Y) {
			continue
		}
		xCross := float64(pj.X-pi.X)*float64(p.Y-pi.Y)/float64(pj.Y-pi.Y) + float64(pi.X)
		if float64(p.X) < xCross {
			inside = !inside
		}
	}
	return inside
}

// dropNested removes contours whose starting pixel lies inside another
// contour's polygon. Order is preserved.
func dropNested(contours []Contour, starts []Point) []Contour {
	out := make([]Contour, 0, len(contours))
	for i, c := range contours {
		nested := false
		for j, outer := range contours {
			if i == j || len(outer.Points) < 3 || !outer.Bounds.contains(c.Bounds) {
				continue
			}
			if pointInPolygon(starts[i], outer.Points) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, c)
		}
	}
	return out
}
