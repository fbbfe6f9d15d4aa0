package tryon

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/fashun/virtual-tryon/internal/imaging"
	"github.com/fashun/virtual-tryon/internal/landmarks"
)

// ErrPersonImage is returned when the person upload cannot be decoded. There
// is nothing to degrade to in that case, so callers treat it as a failure.
var ErrPersonImage = errors.New("person image could not be decoded")

// Output is an encoded try-on result.
type Output struct {
	PNG         []byte
	Width       int
	Height      int
	Outcome     Outcome
	GarmentType GarmentType
	Placement   Placement
	Landmarks   landmarks.Set
	Err         error
}

// Pipeline runs the try-on steps on raw upload bytes.
type Pipeline struct {
	compositor *Compositor
	estimator  LandmarkEstimator
	decode     imaging.DecodeOptions
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline. A nil logger disables logging.
func NewPipeline(estimator LandmarkEstimator, decode imaging.DecodeOptions, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		compositor: NewCompositor(estimator, logger),
		estimator:  estimator,
		decode:     decode,
		logger:     logger,
	}
}

// TryOn decodes both uploads, composites the garment and encodes the result
// as PNG.
//
// An undecodable garment is not an error: the output is the decoded person
// image with OutcomeDegraded. Only a bad person image or an encoding failure
// returns an error.
func (p *Pipeline) TryOn(personData, garmentData []byte, garmentType string) (*Output, error) {
	person, err := imaging.Decode(personData, p.decode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersonImage, err)
	}

	t := ParseGarmentType(garmentType)

	var res Result
	garment, err := imaging.Decode(garmentData, p.decode)
	if err != nil {
		res = Result{
			Image:       person,
			Outcome:     OutcomeDegraded,
			GarmentType: t,
			Err:         fmt.Errorf("decode garment: %w", err),
		}
		p.logger.Warn("garment image could not be decoded, returning person image",
			zap.Stringer("garment_type", t),
			zap.Int("garment_bytes", len(garmentData)),
			zap.Error(err),
		)
	} else {
		res = p.compositor.Composite(person, garment, t)
	}

	data, err := imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	b := res.Image.Bounds()
	return &Output{
		PNG:         data,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Outcome:     res.Outcome,
		GarmentType: t,
		Placement:   res.Placement,
		Landmarks:   res.Landmarks,
		Err:         res.Err,
	}, nil
}

// DetectPose decodes a person upload and estimates its landmarks.
func (p *Pipeline) DetectPose(personData []byte) (landmarks.Set, error) {
	person, err := imaging.Decode(personData, p.decode)
	if err != nil {
		return landmarks.Set{}, fmt.Errorf("%w: %w", ErrPersonImage, err)
	}
	return p.estimator.Estimate(person), nil
}

// Landmarks estimates the landmarks of an already decoded person image.
func (p *Pipeline) Landmarks(person image.Image) landmarks.Set {
	return p.estimator.Estimate(person)
}

// Composite runs the compositor on already decoded images.
func (p *Pipeline) Composite(person, garment image.Image, garmentType string) Result {
	return p.compositor.Composite(person, garment, ParseGarmentType(garmentType))
}

// Plan returns the landmarks and garment rectangle for a decoded person.
func (p *Pipeline) Plan(person image.Image, garmentType string) (landmarks.Set, Placement) {
	return p.compositor.Plan(person, ParseGarmentType(garmentType))
}

// Fingerprint names the settings that shape a render: the estimator's edge
// thresholds and EXIF handling. Equal fingerprints render equal bytes for
// equal inputs. MaxPixels only decides rejection, so it is left out.
func (p *Pipeline) Fingerprint() string {
	edges := fmt.Sprintf("%T", p.estimator)
	if t, ok := p.estimator.(interface{ Thresholds() (low, high int) }); ok {
		low, high := t.Thresholds()
		edges = fmt.Sprintf("canny%d-%d", low, high)
	}
	return fmt.Sprintf("%s.orient%t", edges, p.decode.AutoOrient)
}

// DecodeOptions returns the settings used to decode uploads.
func (p *Pipeline) DecodeOptions() imaging.DecodeOptions {
	return p.decode
}
