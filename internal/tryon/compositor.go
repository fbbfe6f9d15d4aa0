package tryon

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	imgops "github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/imaging"
	"github.com/fashun/virtual-tryon/internal/landmarks"
)

// GarmentOpacity is the weight of the garment in the blend; the person
// keeps the remaining 1 − GarmentOpacity.
const GarmentOpacity = 0.7

// ErrNoGarment is reported when the garment image is missing or empty.
var ErrNoGarment = errors.New("garment image is empty")

// Outcome tells what Composite did with the person image.
type Outcome string

const (
	// OutcomeComposited means the garment was blended onto the person.
	OutcomeComposited Outcome = "composited"
	// OutcomeSkipped means the placement was empty; the image is unchanged.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeDegraded means compositing failed; the image is the original
	// person and Result.Err holds the cause.
	OutcomeDegraded Outcome = "degraded"
)

func (o Outcome) String() string {
	return string(o)
}

// LandmarkEstimator produces a landmark set for a person image.
type LandmarkEstimator interface {
	Estimate(img image.Image) landmarks.Set
}

// Result is the outcome of one Composite call. Image is never nil.
type Result struct {
	Image       *image.NRGBA
	Outcome     Outcome
	Placement   Placement
	Landmarks   landmarks.Set
	GarmentType GarmentType
	Err         error
}

// Compositor blends garments onto people. It is safe for concurrent use as
// long as its estimator is.
type Compositor struct {
	estimator LandmarkEstimator
	logger    *zap.Logger
}

// NewCompositor creates a Compositor. A nil logger disables logging.
func NewCompositor(estimator LandmarkEstimator, logger *zap.Logger) *Compositor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compositor{estimator: estimator, logger: logger}
}

// Plan estimates landmarks on person and computes the garment rectangle
// without touching any pixels.
func (c *Compositor) Plan(person image.Image, t GarmentType) (landmarks.Set, Placement) {
	b := person.Bounds()
	set := c.estimator.Estimate(person)
	return set, Place(set, t, b.Dx(), b.Dy())
}

// Composite overlays garment onto person. person is never modified; the
// returned image is a fresh opaque copy.
//
// Failures never escape: a missing garment, or a panic anywhere in the
// estimation/resize/blend steps, yields OutcomeDegraded with an unmodified
// copy of person.
func (c *Compositor) Composite(person, garment image.Image, t GarmentType) (res Result) {
	base := imaging.ToRGB(person)
	res = Result{Image: base, Outcome: OutcomeDegraded, GarmentType: t}

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Image:       base,
				Outcome:     OutcomeDegraded,
				Landmarks:   res.Landmarks,
				GarmentType: t,
				Err:         fmt.Errorf("compositing panicked: %v", r),
			}
		}
		if res.Outcome == OutcomeDegraded {
			c.logger.Warn("garment compositing degraded to original image",
				zap.Stringer("garment_type", t),
				zap.Error(res.Err),
			)
		}
	}()

	res.Landmarks, res.Placement = c.Plan(base, t)

	if garment == nil || garment.Bounds().Empty() {
		res.Err = ErrNoGarment
		return res
	}

	p := res.Placement
	if p.Empty() {
		res.Outcome = OutcomeSkipped
		return res
	}

	// Alpha is dropped before resampling so transparent garment pixels blend
	// with their stored colour.
	resized := imgops.Resize(imaging.ToRGB(garment), p.Width, p.Height, imgops.Linear)
	roi := imgops.Crop(base, p.Rect())
	blended := blend.Opacity(roi, resized, GarmentOpacity)

	res.Image = imgops.Paste(base, blended, p.Rect().Min)
	res.Outcome = OutcomeComposited
	return res
}
