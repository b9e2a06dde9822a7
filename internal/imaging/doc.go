// Package imaging loads answer-sheet photographs, normalizes their scale and
// renders the audit overlay.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is the top-left corner, X increases rightward and Y
// increases downward. Rectangles follow image.Rectangle semantics: Min is
// inclusive, Max is exclusive.
//
// # Error Handling
//
// Decode failures (empty input, corrupt bytes, unsupported formats) are
// reported as *DecodeError so callers can tell them apart from I/O errors.
// Normalization never fails for a decoded image. Overlay rendering reports
// errors but never touches the scoring data it was handed.
//
// # Thread Safety
//
// Every function returns a freshly allocated image; inputs are never mutated,
// so independent evaluations can run concurrently.
package imaging
