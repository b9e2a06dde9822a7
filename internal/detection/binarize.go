package detection

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Binarize converts img to an ink mask.
//
// The image is converted to grayscale, smoothed with a gaussian of the given
// radius (skipped when radius is 0) and split with Otsu's global threshold.
// Pixels at or below the threshold are ink (255), the rest background (0).
//
// Returns the mask and the chosen threshold.
func Binarize(img image.Image, radius float64) (*image.Gray, uint8) {
	rgba := effect.Grayscale(img)
	if radius > 0 {
		rgba = effect.Grayscale(blur.Gaussian(rgba, radius))
	}
	gray := toGray(rgba)

	level := otsuThreshold(gray)

	bounds := gray.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y <= level {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mask, level
}

// toGray copies the red channel of a grayscale RGBA image into a Gray image.
func toGray(rgba *image.RGBA) *image.Gray {
	bounds := rgba.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := rgba.Pix[rgba.PixOffset(bounds.Min.X, y):]
		dst := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// otsuThreshold picks the gray level that maximizes between-class variance.
//
// Ties keep the lowest level. A uniform image yields 0.
func otsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	bounds := gray.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, y):gray.PixOffset(bounds.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}

	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var (
		sumB     float64
		weightB  int
		best     float64
		bestKept int
	)
	for t := 0; t < 256; t++ {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])

		meanB := sumB / float64(weightB)
		meanF := (sum - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			bestKept = t
		}
	}
	return uint8(bestKept)
}
