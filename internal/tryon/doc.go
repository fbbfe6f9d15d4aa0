// Package tryon overlays a garment photo onto a person photo.
//
// The Compositor asks a landmark estimator for a coarse skeleton, derives a
// placement rectangle from a per-garment-type rule, resizes the garment to
// that rectangle and blends it over the person at a fixed 70% opacity. The
// outcome is reported explicitly: a composited image, an unchanged image
// when the rectangle is degenerate, or the original image together with the
// error that prevented compositing.
//
// Pipeline wraps the Compositor with byte-level decoding and PNG encoding for
// use by the HTTP and MCP boundaries.
package tryon
