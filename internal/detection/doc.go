// Package detection finds candidate answer bubbles on a normalized sheet.
//
// # Algorithm Overview
//
// The native detector follows a fixed pipeline:
//
//  1. Grayscale conversion and gaussian smoothing
//  2. Global Otsu threshold, inverted so dark ink becomes foreground (255)
//  3. Connected-region labeling of the foreground. Holes are filled first, so a
//     hollow ring and a filled disc of the same outline yield the same region,
//     and marks nested inside another region merge into it
//  4. Filtering by pixel area and bounding-box aspect ratio
//
// The binarized mask is returned with the candidates because fill measurement
// needs it unchanged.
//
// # Variants
//
// NewDetector selects an implementation by name. "native" is pure Go and always
// available. "opencv" uses gocv and is compiled in only with the gocv build tag.
//
// # Coordinate System
//
// Candidate rectangles follow image.Rectangle semantics: Min inclusive, Max
// exclusive. A region covering pixels x=10..19 has Min.X=10, Max.X=20, width 10.
package detection
