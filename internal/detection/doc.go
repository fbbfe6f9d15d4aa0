// Package detection finds object outlines in binary edge maps.
//
// The entry point is FindExternalContours, which takes the output of
// imaging.Canny and returns the outer boundary of every group of connected
// edge pixels. Boundaries that sit inside another boundary are discarded, so
// the result describes the silhouettes of the objects in the frame rather
// than their internal detail.
//
// # Algorithm Overview
//
//  1. Labelling: edge pixels are grouped into 8-connected components with an
//     iterative flood fill
//  2. Tracing: each component's outer boundary is walked clockwise with
//     Moore-neighbor tracing, starting from its first pixel in raster order
//  3. Simplification: straight runs of boundary pixels collapse to their end
//     points
//  4. Filtering: components whose first pixel lies inside another contour's
//     polygon are dropped
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Bounds use the (x, y, width, height) form, where width and height count
// pixels and are therefore at least 1.
//
// # Area
//
// Contour area is the polygon area of the simplified boundary, not a pixel
// count. A filled w×h block has area (w-1)·(h-1); a line or a lone pixel has
// area 0. Largest relies on this measure and breaks ties by scan order.
package detection
