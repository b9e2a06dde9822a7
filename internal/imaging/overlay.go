package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/omr-eval/internal/config"
)

// Box is one measured cell to draw: its clamped bounding box, its fill ratio and
// the question it belongs to (1-based).
type Box struct {
	Rect     image.Rectangle
	Ratio    float64
	Question int
}

// OverlayOptions control how RenderOverlay draws boxes.
type OverlayOptions struct {
	FilledColor color.Color
	EmptyColor  color.Color
	// Threshold is the fill ratio at or above which a box is drawn in FilledColor.
	Threshold float64
	LineWidth int
	// Labels draws each question number to the left of its first box.
	Labels bool
}

// NewOverlayOptions parses the configured hex colors.
func NewOverlayOptions(cfg config.OverlayConfig, threshold float64) (OverlayOptions, error) {
	filled, err := colorful.Hex(cfg.FilledColor)
	if err != nil {
		return OverlayOptions{}, fmt.Errorf("invalid filled color %q: %w", cfg.FilledColor, err)
	}
	empty, err := colorful.Hex(cfg.EmptyColor)
	if err != nil {
		return OverlayOptions{}, fmt.Errorf("invalid empty color %q: %w", cfg.EmptyColor, err)
	}
	return OverlayOptions{
		FilledColor: filled,
		EmptyColor:  empty,
		Threshold:   threshold,
		LineWidth:   cfg.LineWidth,
		Labels:      cfg.Labels,
	}, nil
}

// RenderOverlay draws a rectangle outline per box onto a copy of img.
//
// Boxes whose ratio meets opts.Threshold use FilledColor, the rest EmptyColor.
// Outlines grow inward from the box edge, LineWidth pixels thick. Parts of a
// box outside the image are clipped.
//
// img is never modified.
func RenderOverlay(img image.Image, boxes []Box, opts OverlayOptions) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to draw on")
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot draw on empty image")
	}
	if opts.FilledColor == nil || opts.EmptyColor == nil {
		return nil, fmt.Errorf("overlay colors not set")
	}

	result := imaging.Clone(img)
	width := opts.LineWidth
	if width < 1 {
		width = 1
	}

	labeled := make(map[int]bool)
	for _, b := range boxes {
		c := opts.EmptyColor
		if b.Ratio >= opts.Threshold {
			c = opts.FilledColor
		}
		drawOutline(result, b.Rect, width, c)

		if opts.Labels && b.Question > 0 && !labeled[b.Question] {
			labeled[b.Question] = true
			drawLabel(result, b.Rect, strconv.Itoa(b.Question), opts.EmptyColor)
		}
	}
	return result, nil
}

// drawOutline strokes r with the given thickness, clipped to the image.
func drawOutline(img *image.NRGBA, r image.Rectangle, width int, c color.Color) {
	r = r.Canon()
	bounds := img.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			inner := x >= r.Min.X+width && x < r.Max.X-width &&
				y >= r.Min.Y+width && y < r.Max.Y-width
			if inner {
				continue
			}
			if (image.Point{X: x, Y: y}).In(bounds) {
				img.Set(x, y, c)
			}
		}
	}
}

// drawLabel writes text right-aligned just left of r, vertically centered.
func drawLabel(img *image.NRGBA, r image.Rectangle, text string, c color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
	}
	advance := d.MeasureString(text).Ceil()
	x := r.Min.X - advance - 4
	if x < img.Bounds().Min.X {
		x = img.Bounds().Min.X
	}
	metrics := face.Metrics()
	y := (r.Min.Y+r.Max.Y)/2 + (metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
}
