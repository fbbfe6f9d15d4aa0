package detection

import (
	"image"
	"testing"

	"github.com/fashun/virtual-tryon/internal/imaging"
)

// newEdgeMap creates an empty edge map
func newEdgeMap(width, height int) *imaging.EdgeMap {
	return &imaging.EdgeMap{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// set marks a single edge pixel
func set(m *imaging.EdgeMap, x, y int) {
	m.Pix[y*m.Width+x] = true
}

// drawOutline marks a one-pixel rectangle outline with inclusive corners
func drawOutline(m *imaging.EdgeMap, x1, y1, x2, y2 int) {
	for x := x1; x <= x2; x++ {
		set(m, x, y1)
		set(m, x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(m, x1, y)
		set(m, x2, y)
	}
}

// fillRect marks every pixel of a block with inclusive corners
func fillRect(m *imaging.EdgeMap, x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			set(m, x, y)
		}
	}
}

func TestFindExternalContours_RectangleOutline(t *testing.T) {
	m := newEdgeMap(40, 30)
	drawOutline(m, 10, 10, 29, 19)

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	c := contours[0]

	wantBounds := Bounds{X: 10, Y: 10, Width: 20, Height: 10}
	if c.Bounds != wantBounds {
		t.Errorf("Bounds: got %+v, want %+v", c.Bounds, wantBounds)
	}
	if c.Area != 171 {
		t.Errorf("Area: got %.1f, want 171", c.Area)
	}
	if c.Length != 56 {
		t.Errorf("Length: got %d, want 56", c.Length)
	}

	wantPoints := []Point{{10, 10}, {29, 10}, {29, 19}, {10, 19}}
	if len(c.Points) != len(wantPoints) {
		t.Fatalf("Points: got %v, want %v", c.Points, wantPoints)
	}
	for i := range wantPoints {
		if c.Points[i] != wantPoints[i] {
			t.Errorf("Points[%d]: got %v, want %v", i, c.Points[i], wantPoints[i])
		}
	}
}

func TestFindExternalContours_FilledBlock(t *testing.T) {
	m := newEdgeMap(10, 10)
	fillRect(m, 2, 2, 5, 4)

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if contours[0].Area != 6 {
		t.Errorf("Area: got %.1f, want 6", contours[0].Area)
	}
	if want := (Bounds{X: 2, Y: 2, Width: 4, Height: 3}); contours[0].Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", contours[0].Bounds, want)
	}
}

func TestFindExternalContours_DropsNested(t *testing.T) {
	m := newEdgeMap(40, 30)
	drawOutline(m, 5, 5, 34, 24)
	drawOutline(m, 12, 12, 20, 18)
	set(m, 27, 15) // stray pixel inside the outer outline

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("expected only the outer contour, got %d", len(contours))
	}
	if want := (Bounds{X: 5, Y: 5, Width: 30, Height: 20}); contours[0].Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", contours[0].Bounds, want)
	}
}

func TestFindExternalContours_SeparateShapes(t *testing.T) {
	m := newEdgeMap(40, 20)
	drawOutline(m, 2, 2, 6, 6)
	drawOutline(m, 20, 1, 35, 15)

	contours := FindExternalContours(m)

	if len(contours) != 2 {
		t.Fatalf("expected 2 contours, got %d", len(contours))
	}
	// Raster order of the first pixel: (20,1) comes before (2,2)
	if contours[0].Bounds.X != 20 || contours[1].Bounds.X != 2 {
		t.Errorf("unexpected order: %+v, %+v", contours[0].Bounds, contours[1].Bounds)
	}
}

func TestFindExternalContours_SinglePixel(t *testing.T) {
	m := newEdgeMap(8, 8)
	set(m, 3, 4)

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	c := contours[0]
	if len(c.Points) != 1 || c.Points[0] != (Point{3, 4}) {
		t.Errorf("Points: got %v, want [{3 4}]", c.Points)
	}
	if c.Area != 0 {
		t.Errorf("Area: got %.1f, want 0", c.Area)
	}
	if want := (Bounds{X: 3, Y: 4, Width: 1, Height: 1}); c.Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", c.Bounds, want)
	}
}

func TestFindExternalContours_Line(t *testing.T) {
	m := newEdgeMap(10, 10)
	for x := 2; x <= 6; x++ {
		set(m, x, 3)
	}

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	c := contours[0]
	if c.Area != 0 {
		t.Errorf("Area: got %.1f, want 0", c.Area)
	}
	if c.Length != 8 {
		t.Errorf("Length: got %d, want 8 (there and back)", c.Length)
	}
	if len(c.Points) != 2 || c.Points[0] != (Point{2, 3}) || c.Points[1] != (Point{6, 3}) {
		t.Errorf("Points: got %v, want [{2 3} {6 3}]", c.Points)
	}
}

func TestFindExternalContours_DiagonalIsConnected(t *testing.T) {
	m := newEdgeMap(5, 5)
	set(m, 0, 0)
	set(m, 1, 1)
	set(m, 2, 2)

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("8-connected diagonal should form 1 contour, got %d", len(contours))
	}
	if want := (Bounds{X: 0, Y: 0, Width: 3, Height: 3}); contours[0].Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", contours[0].Bounds, want)
	}
}

func TestFindExternalContours_TouchesBorder(t *testing.T) {
	m := newEdgeMap(10, 10)
	drawOutline(m, 0, 0, 9, 9)

	contours := FindExternalContours(m)

	if len(contours) != 1 {
		t.Fatalf("expected 1 contour, got %d", len(contours))
	}
	if contours[0].Area != 81 {
		t.Errorf("Area: got %.1f, want 81", contours[0].Area)
	}
}

func TestFindExternalContours_Empty(t *testing.T) {
	for _, m := range []*imaging.EdgeMap{newEdgeMap(20, 20), newEdgeMap(0, 0)} {
		contours := FindExternalContours(m)
		if contours == nil {
			t.Error("result should be an empty slice, not nil")
		}
		if len(contours) != 0 {
			t.Errorf("expected no contours, got %d", len(contours))
		}
	}
}

func TestLargest(t *testing.T) {
	m := newEdgeMap(60, 40)
	drawOutline(m, 2, 2, 10, 10)   // area 64
	drawOutline(m, 20, 5, 50, 35)  // area 900
	drawOutline(m, 52, 30, 58, 36) // area 36

	c, ok := Largest(FindExternalContours(m))
	if !ok {
		t.Fatal("Largest reported no contour")
	}
	if c.Area != 900 {
		t.Errorf("Area: got %.1f, want 900", c.Area)
	}
	if want := (Bounds{X: 20, Y: 5, Width: 31, Height: 31}); c.Bounds != want {
		t.Errorf("Bounds: got %+v, want %+v", c.Bounds, want)
	}
}

func TestLargest_TieGoesToFirst(t *testing.T) {
	m := newEdgeMap(30, 10)
	drawOutline(m, 2, 2, 6, 6)
	drawOutline(m, 10, 2, 14, 6)

	c, ok := Largest(FindExternalContours(m))
	if !ok {
		t.Fatal("Largest reported no contour")
	}
	if c.Bounds.X != 2 {
		t.Errorf("tie should go to the first contour in scan order, got X=%d", c.Bounds.X)
	}
}

func TestLargest_Empty(t *testing.T) {
	if _, ok := Largest(nil); ok {
		t.Error("Largest(nil) should report ok=false")
	}
}

func TestBounds_Rect(t *testing.T) {
	b := Bounds{X: 3, Y: 4, Width: 10, Height: 2}
	if got, want := b.Rect(), image.Rect(3, 4, 13, 6); got != want {
		t.Errorf("Rect: got %v, want %v", got, want)
	}
}

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   float64
	}{
		{"empty", nil, 0},
		{"segment", []Point{{0, 0}, {5, 0}}, 0},
		{"square", []Point{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, 16},
		{"triangle", []Point{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"counter-clockwise", []Point{{0, 0}, {0, 4}, {4, 4}, {4, 0}}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := polygonArea(tt.points); got != tt.want {
				t.Errorf("polygonArea: got %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	tests := []struct {
		p    Point
		want bool
	}{
		{Point{5, 5}, true},
		{Point{1, 9}, true},
		{Point{15, 5}, false},
		{Point{-1, 5}, false},
		{Point{5, 20}, false},
	}

	for _, tt := range tests {
		if got := pointInPolygon(tt.p, square); got != tt.want {
			t.Errorf("pointInPolygon(%v): got %v, want %v", tt.p, got, tt.want)
		}
	}
}
