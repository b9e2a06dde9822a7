package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// Normalize rescales img uniformly so its width equals targetWidth.
//
// The height is scaled by the same factor and truncated toward zero (never
// below one pixel). Bilinear interpolation is used. The result always has its
// origin at (0,0).
//
// No perspective correction happens here: the sheet is assumed to be roughly
// axis-aligned and to fill the frame.
func Normalize(img image.Image, targetWidth int) *image.NRGBA {
	b := img.Bounds()
	scale := float64(targetWidth) / float64(b.Dx())
	height := int(float64(b.Dy()) * scale)
	if height < 1 {
		height = 1
	}
	return imaging.Resize(img, targetWidth, height, imaging.Linear)
}
