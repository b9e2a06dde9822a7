// Package ocr reads printed text from answer sheets using Tesseract.
//
// It wraps the Tesseract OCR engine (via gosseract/v2). The only text an
// evaluation needs is the answer-set label printed in the sheet header
// ("SET A", "Set-B", ...), so the package exposes a Reader that scans the top
// band of a normalized sheet and extracts that label.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A custom tessdata directory can be set with ocr.tessdata_prefix.
//
// # Error Handling
//
// Engine failures are returned wrapped. A header in which no set label is
// recognized yields ErrNoSetLabel, letting callers fall back to a default set.
package ocr
