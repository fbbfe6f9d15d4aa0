package landmarks

import (
	"image"

	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/detection"
	"github.com/fashun/virtual-tryon/internal/imaging"
)

// Default Canny hysteresis thresholds on the 0-255 gradient scale.
const (
	DefaultCannyLow  = 50
	DefaultCannyHigh = 150
)

// Estimator turns a photo into a landmark Set. It holds no per-call state and
// is safe for concurrent use.
type Estimator struct {
	low, high int
	logger    *zap.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithThresholds sets the Canny hysteresis thresholds.
func WithThresholds(low, high int) Option {
	return func(e *Estimator) {
		e.low, e.high = low, high
	}
}

// WithLogger attaches a logger for per-call debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Estimator with the default thresholds.
func New(opts ...Option) *Estimator {
	e := &Estimator{
		low:    DefaultCannyLow,
		high:   DefaultCannyHigh,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thresholds returns the configured Canny thresholds.
func (e *Estimator) Thresholds() (low, high int) {
	return e.low, e.high
}

// Estimate returns a complete landmark Set for img. It never fails: an image
// without any edge contour gets the frame-relative fallback set.
func (e *Estimator) Estimate(img image.Image) Set {
	b := img.Bounds()

	edges := imaging.Canny(img, e.low, e.high)
	contours := detection.FindExternalContours(edges)

	largest, ok := detection.Largest(contours)
	if !ok {
		e.logger.Debug("no contour found, using frame fallback",
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()),
		)
		return Fallback(b.Dx(), b.Dy())
	}

	e.logger.Debug("silhouette selected",
		zap.Int("contours", len(contours)),
		zap.Int("edge_pixels", edges.Count()),
		zap.Float64("area", largest.Area),
		zap.Stringer("bounds", largest.Bounds.Rect()),
	)
	return FromSilhouette(largest.Bounds.Rect())
}
