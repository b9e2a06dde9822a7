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

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrEmptyInput is wrapped by a DecodeError when no bytes were supplied.
var ErrEmptyInput = errors.New("empty input")

// DecodeError reports that the input bytes are not a readable raster image.
// It is fatal to an evaluation; no partial result accompanies it.
type DecodeError struct {
	// Source names the input (a file path, or "bytes" for in-memory data).
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode turns encoded image bytes into an image.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. JPEG EXIF
// orientation is applied so photos taken in portrait come out upright.
//
// Returns a *DecodeError for empty, corrupt or unsupported input.
func Decode(data []byte) (image.Image, error) {
	return decode("bytes", data)
}

// LoadFile reads and decodes an image file.
//
// I/O failures are returned wrapped as-is; decode failures as *DecodeError.
func LoadFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return decode(path, data)
}

func decode(source string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Source: source, Err: ErrEmptyInput}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &DecodeError{Source: source, Err: fmt.Errorf("zero-sized image %dx%d", b.Dx(), b.Dy())}
	}
	return img, nil
}
