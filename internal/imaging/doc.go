// Package imaging provides the pixel-level building blocks of the try-on pipeline.
//
// This package turns uploaded bytes into opaque RGB buffers, encodes results
// back to PNG, computes the binary Canny edge map the landmark estimator works
// from, and offers a few inspection helpers (garment palette, annotation
// overlay) used by the MCP tools. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # RGB Normalisation
//
// Every decoded image is returned as an *image.NRGBA whose alpha channel is
// forced to 255. Transparency in the source file is dropped rather than
// composited onto a background, so a transparent garment pixel keeps its
// stored colour.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. None of
// the functions here mutate their input images.
//
// # Supported Formats
//
// Decoding accepts PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding always
// produces PNG.
package imaging
