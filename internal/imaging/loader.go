package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrEmptyImage is returned when an input holds no bytes or decodes to an
// image with zero width or height.
var ErrEmptyImage = errors.New("image is empty")

// ErrImageTooLarge is returned when an image header declares more pixels
// than DecodeOptions.MaxPixels allows.
var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// DecodeOptions controls how uploaded bytes are turned into pixel buffers.
type DecodeOptions struct {
	// AutoOrient rotates/flips the image according to its EXIF orientation tag
	// before returning it. Only JPEG and TIFF carry the tag.
	AutoOrient bool

	// MaxPixels rejects images whose header declares more than width×height
	// pixels, before any pixel data is decoded. Zero means no limit.
	MaxPixels int
}

// Decode decodes raw image bytes into an opaque RGB buffer.
//
// Returns:
//   - *image.NRGBA: the decoded image with origin (0,0) and alpha forced to 255.
//   - error: ErrEmptyImage for empty input or a zero-area image,
//     ErrImageTooLarge when the header exceeds opts.MaxPixels, otherwise the
//     wrapped decoder error.
func Decode(data []byte, opts DecodeOptions) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	if opts.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		if int64(cfg.Width)*int64(cfg.Height) > int64(opts.MaxPixels) {
			return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(opts.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyImage
	}

	return ToRGB(img), nil
}

// ToRGB returns an opaque copy of img with origin (0,0).
//
// The copy is always fresh, so callers may mutate it without touching img.
func ToRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// ImageCache provides thread-safe caching of decoded images keyed by file path.
//
// The MCP tools address images by path and typically run several tools
// against the same photo, so decoded buffers are kept until evicted.
// Cached images are already RGB-normalised.
type ImageCache struct {
	mu     sync.RWMutex
	opts   DecodeOptions
	images map[string]*image.NRGBA
}

// NewImageCache creates an empty cache that decodes with opts.
func NewImageCache(opts DecodeOptions) *ImageCache {
	return &ImageCache{
		opts:   opts,
		images: make(map[string]*image.NRGBA),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate entries.
func (c *ImageCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := Decode(data, c.opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}
