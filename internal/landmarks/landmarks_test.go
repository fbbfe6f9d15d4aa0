package landmarks

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

// createSolidImage creates a uniform test image
func createSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createFigureImage draws a dark block on a light background
func createFigureImage(width, height int, figure image.Rectangle) *image.RGBA {
	img := createSolidImage(width, height, color.White)
	for y := figure.Min.Y; y < figure.Max.Y; y++ {
		for x := figure.Min.X; x < figure.Max.X; x++ {
			img.Set(x, y, color.RGBA{20, 20, 20, 255})
		}
	}
	return img
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFallback(t *testing.T) {
	set := Fallback(400, 600)

	if set.Source != SourceFallback {
		t.Errorf("Source: got %s, want %s", set.Source, SourceFallback)
	}

	tests := []struct {
		name Landmark
		want Point
	}{
		{LeftShoulder, Point{140, 150}},
		{RightShoulder, Point{260, 150}},
		{LeftElbow, Point{100, 240}},
		{RightElbow, Point{300, 240}},
		{LeftWrist, Point{80, 330}},
		{RightWrist, Point{320, 330}},
		{LeftHip, Point{160, 360}},
		{RightHip, Point{240, 360}},
		{Neck, Point{200, 120}},
		{Waist, Point{200, 330}},
	}
	for _, tt := range tests {
		got := set.Point(tt.name)
		if !approxEqual(got.X, tt.want.X) || !approxEqual(got.Y, tt.want.Y) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	if !approxEqual(set.TorsoWidth, 120) {
		t.Errorf("TorsoWidth: got %.2f, want 120", set.TorsoWidth)
	}
	if !approxEqual(set.TorsoHeight, 240) {
		t.Errorf("TorsoHeight: got %.2f, want 240", set.TorsoHeight)
	}
}

func TestFromSilhouette(t *testing.T) {
	set := FromSilhouette(image.Rect(100, 50, 300, 450))

	if set.Source != SourceContour {
		t.Errorf("Source: got %s, want %s", set.Source, SourceContour)
	}

	tests := []struct {
		name Landmark
		want Point
	}{
		{LeftShoulder, Point{150, 110}},
		{RightShoulder, Point{250, 110}},
		{LeftElbow, Point{130, 190}},
		{RightElbow, Point{270, 190}},
		{LeftWrist, Point{120, 270}},
		{RightWrist, Point{280, 270}},
		{LeftHip, Point{170, 310}},
		{RightHip, Point{230, 310}},
		{Neck, Point{200, 82}},
		{Waist, Point{200, 270}},
	}
	for _, tt := range tests {
		got := set.Point(tt.name)
		if !approxEqual(got.X, tt.want.X) || !approxEqual(got.Y, tt.want.Y) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	if !approxEqual(set.TorsoWidth, 100) || !approxEqual(set.TorsoHeight, 200) {
		t.Errorf("torso: got %.2fx%.2f, want 100x200", set.TorsoWidth, set.TorsoHeight)
	}
}

func TestSets_AreComplete(t *testing.T) {
	for _, set := range []Set{Fallback(10, 10), FromSilhouette(image.Rect(1, 1, 5, 5))} {
		if len(set.Points) != len(All) {
			t.Errorf("%s: got %d points, want %d", set.Source, len(set.Points), len(All))
		}
		for _, name := range All {
			if _, ok := set.Points[name]; !ok {
				t.Errorf("%s: missing %s", set.Source, name)
			}
		}
	}
}

func TestEstimate_UniformImageFallsBack(t *testing.T) {
	e := New(WithLogger(zaptest.NewLogger(t)))

	set := e.Estimate(createSolidImage(400, 600, color.RGBA{128, 128, 128, 255}))

	if set.Source != SourceFallback {
		t.Fatalf("Source: got %s, want %s", set.Source, SourceFallback)
	}
	if got := set.Point(Neck); !approxEqual(got.X, 200) || !approxEqual(got.Y, 120) {
		t.Errorf("neck: got %v, want {200 120}", got)
	}
}

func TestEstimate_FigureUsesContour(t *testing.T) {
	e := New()
	figure := image.Rect(100, 80, 300, 520)

	set := e.Estimate(createFigureImage(400, 600, figure))

	if set.Source != SourceContour {
		t.Fatalf("Source: got %s, want %s", set.Source, SourceContour)
	}
	if len(set.Points) != len(All) {
		t.Errorf("got %d points, want %d", len(set.Points), len(All))
	}
	for name, p := range set.Points {
		if p.X < 0 || p.X >= 400 || p.Y < 0 || p.Y >= 600 {
			t.Errorf("%s out of image: %v", name, p)
		}
	}
	if set.TorsoWidth > 400 || set.TorsoHeight > 600 {
		t.Errorf("torso exceeds image: %.2fx%.2f", set.TorsoWidth, set.TorsoHeight)
	}
	if !set.Region.In(image.Rect(0, 0, 400, 600)) {
		t.Errorf("region %v outside image", set.Region)
	}
}

func TestEstimate_Deterministic(t *testing.T) {
	e := New()
	img := createFigureImage(200, 300, image.Rect(50, 40, 150, 260))
	want := e.Estimate(img)

	var wg sync.WaitGroup
	results := make([]Set, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Estimate(img)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got.Region != want.Region || got.Source != want.Source {
			t.Errorf("run %d: got %v/%s, want %v/%s", i, got.Region, got.Source, want.Region, want.Source)
		}
		for _, name := range All {
			if got.Point(name) != want.Point(name) {
				t.Errorf("run %d %s: got %v, want %v", i, name, got.Point(name), want.Point(name))
			}
		}
	}
}

func TestNew_Options(t *testing.T) {
	low, high := New().Thresholds()
	if low != DefaultCannyLow || high != DefaultCannyHigh {
		t.Errorf("defaults: got %d/%d, want %d/%d", low, high, DefaultCannyLow, DefaultCannyHigh)
	}

	low, high = New(WithThresholds(10, 30), WithLogger(nil)).Thresholds()
	if low != 10 || high != 30 {
		t.Errorf("WithThresholds: got %d/%d, want 10/30", low, high)
	}
}

func TestSet_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Fallback(400, 600))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)

	for _, want := range []string{
		`"left_shoulder":[140,150]`,
		`"neck":[200,120]`,
		`"torso_width":120`,
		`"torso_height":240`,
		`"source":"fallback"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}
