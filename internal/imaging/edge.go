package imaging

import (
	"image"
	"image/color"
	"math"
)

// EdgeMap is a binary edge image produced by Canny.
//
// Pix holds Width*Height entries in row-major order; true marks an edge pixel.
// Coordinates are relative to the source image's top-left corner.
type EdgeMap struct {
	Width  int
	Height int
	Pix    []bool
}

// At reports whether (x, y) is an edge pixel. Out-of-range coordinates are
// never edges.
func (m *EdgeMap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Count returns the number of edge pixels.
func (m *EdgeMap) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Luma converts img to a single-channel intensity plane in [0,1] using
// ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
func Luma(img image.Image) (plane []float64, width, height int) {
	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	plane = make([]float64, width*height)
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < width; x++ {
				p := row[x*4 : x*4+3]
				plane[y*width+x] = (0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])) / 255.0
			}
		}
		return plane, width, height
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			plane[y*width+x] = (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255.0
		}
	}
	return plane, width, height
}

// Canny performs Canny edge detection and returns the binary edge map.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - thresholdLow: Low hysteresis threshold (0-255). Gradient magnitudes below
//     this are never edges.
//   - thresholdHigh: High hysteresis threshold (0-255). Magnitudes at or above
//     this seed edges.
//
// # Algorithm
//
//  1. Grayscale conversion with BT.601 luma weights
//  2. 5x5 Gaussian blur (sigma ≈ 1.4) to reduce noise
//  3. Sobel gradients, magnitude = sqrt(Gx² + Gy²)
//  4. Non-maximum suppression along the quantized gradient direction
//  5. Hysteresis: weak pixels (between the thresholds) survive only when
//     8-connected, directly or through other weak pixels, to a strong pixel
//
// The outermost one-pixel border never contains edges.
func Canny(img image.Image, thresholdLow, thresholdHigh int) *EdgeMap {
	gray, width, height := Luma(img)
	edges := &EdgeMap{Width: width, Height: height, Pix: make([]bool, width*height)}
	if width < 3 || height < 3 {
		return edges
	}

	blurred := gaussianBlur(gray, width, height)
	magnitude, direction := sobel(blurred, width, height)
	suppressed := nonMaxSuppress(magnitude, direction, width, height)

	low := float64(thresholdLow) / 255.0
	high := float64(thresholdHigh) / 255.0

	// Seed from strong pixels, then grow through weak ones.
	stack := make([]int, 0, 64)
	for i, v := range suppressed {
		if v > 0 && v >= high && !edges.Pix[i] {
			edges.Pix[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if !edges.Pix[j] && suppressed[j] > 0 && suppressed[j] >= low {
					edges.Pix[j] = true
					stack = append(stack, j)
				}
			}
		}
	}

	return edges
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(src []float64, width, height int) []float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	const kernelSum = 273.0

	dst := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -2; kx <= 2; kx++ {
					px := clamp(x+kx, 0, width-1)
					sum += src[py*width+px] * kernel[ky+2][kx+2]
				}
			}
			dst[y*width+x] = sum / kernelSum
		}
	}
	return dst
}

// sobel returns per-pixel gradient magnitude and direction (radians, y down).
func sobel(src []float64, width, height int) (magnitude, direction []float64) {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude = make([]float64, width*height)
	direction = make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				py := clamp(y+ky, 0, height-1)
				for kx := -1; kx <= 1; kx++ {
					px := clamp(x+kx, 0, width-1)
					v := src[py*width+px]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			i := y*width + x
			magnitude[i] = math.Sqrt(gx*gx + gy*gy)
			direction[i] = math.Atan2(gy, gx)
		}
	}
	return magnitude, direction
}

// nonMaxSuppress keeps a pixel's magnitude only when it is a local maximum
// along its gradient direction, quantized to 0°, 45°, 90° or 135°.
// Border pixels are always suppressed.
func nonMaxSuppress(magnitude, direction []float64, width, height int) []float64 {
	out := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag == 0 {
				continue
			}

			// Fold the direction into [0, π) so opposite gradients share a bucket.
			angle := direction[i]
			if angle < 0 {
				angle += math.Pi
			}

			var dx, dy int
			switch {
			case angle < math.Pi/8 || angle >= 7*math.Pi/8:
				dx, dy = 1, 0
			case angle < 3*math.Pi/8:
				dx, dy = 1, 1
			case angle < 5*math.Pi/8:
				dx, dy = 0, 1
			default:
				dx, dy = -1, 1
			}

			n1 := magnitude[(y+dy)*width+x+dx]
			n2 := magnitude[(y-dy)*width+x-dx]
			if mag >= n1 && mag >= n2 {
				out[i] = mag
			}
		}
	}
	return out
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
