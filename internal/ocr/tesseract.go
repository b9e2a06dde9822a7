package ocr

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/omr-eval/internal/config"
	imgutil "github.com/ironsheep/omr-eval/internal/imaging"
)

// ErrNoSetLabel is returned when the header holds no recognizable set label.
var ErrNoSetLabel = errors.New("no set label found")

// setLabelPattern matches "SET A", "Set-B", "SET:C" and similar.
var setLabelPattern = regexp.MustCompile(`(?i)\bSET\s*[-:]?\s*([A-Z])\b`)

// Reader runs Tesseract with fixed settings.
type Reader struct {
	cfg config.OCRConfig
}

// NewReader creates a reader for the language and tessdata location of cfg.
func NewReader(cfg config.OCRConfig) *Reader {
	return &Reader{cfg: cfg}
}

// Text returns all text Tesseract recognizes in img.
func (r *Reader) Text(img image.Image) (string, error) {
	encoded, err := imgutil.EncodePNGBytes(img)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if r.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(r.cfg.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(encoded); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// ReadSetLabel recognizes the answer-set letter printed in the header band of
// a normalized sheet, e.g. "A" for "SET A".
func (r *Reader) ReadSetLabel(img image.Image) (string, error) {
	text, err := r.Text(HeaderBand(img, r.cfg.HeaderFraction))
	if err != nil {
		return "", err
	}
	set, ok := ParseSetLabel(text)
	if !ok {
		return "", ErrNoSetLabel
	}
	return set, nil
}

// HeaderBand crops the top fraction of img. The band is at least one pixel tall.
func HeaderBand(img image.Image, fraction float64) *image.NRGBA {
	b := img.Bounds()
	h := int(float64(b.Dy()) * fraction)
	if h < 1 {
		h = 1
	}
	if h > b.Dy() {
		h = b.Dy()
	}
	return imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+h))
}

// ParseSetLabel finds the first set label in text and returns its upper-case
// letter.
func ParseSetLabel(text string) (string, bool) {
	m := setLabelPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}
