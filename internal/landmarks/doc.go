// Package landmarks estimates a coarse body skeleton from a single photo.
//
// There is no pose model. The estimator runs Canny edge detection, takes the
// largest outer contour as the person's silhouette and places ten named
// points at fixed fractions of the silhouette's bounding box. When the photo
// yields no contour at all, the same points are placed at fixed fractions of
// the whole frame instead. Either way the returned Set is complete.
//
// Coordinates are floats in the pixel space of the input image, relative to
// its bounds' minimum point.
package landmarks
