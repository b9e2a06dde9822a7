// Package omrtest draws synthetic answer sheets for tests.
package omrtest

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Sheet geometry used by Draw. Rows are Pitch pixels apart starting at Top;
// columns are Pitch pixels apart starting at Left. Empty bubbles are rings
// RingWidth pixels thick so their outline survives the default smoothing.
const (
	Width     = 1200
	Top       = 100
	Left      = 200
	Pitch     = 60
	Radius    = 24
	RingWidth = 2
)

// Layout describes a sheet to draw. Marks[i] is the filled column of row i,
// or -1 for a row left blank.
type Layout struct {
	Columns int
	Marks   []int

	// Sentinel adds one empty bubble a pitch below the last row. Uniform row
	// binning never keeps the bottom-most center, so the sentinel lets every
	// drawn row reach the grid.
	Sentinel bool
}

// Rows returns a four-column layout with a sentinel, one row per mark.
func Rows(marks ...int) Layout {
	return Layout{Columns: 4, Marks: marks, Sentinel: true}
}

// Draw renders l on a white sheet Width pixels wide. Empty bubbles are
// rings, marked bubbles are solid discs.
func Draw(l Layout) *image.RGBA {
	rows := len(l.Marks) + 2
	img := image.NewRGBA(image.Rect(0, 0, Width, Top+rows*Pitch))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	for i, mark := range l.Marks {
		cy := Top + i*Pitch
		for j := 0; j < l.Columns; j++ {
			cx := Left + j*Pitch
			if j == mark {
				Disc(img, cx, cy, Radius)
			} else {
				Ring(img, cx, cy, Radius-RingWidth, Radius)
			}
		}
	}
	if l.Sentinel {
		Ring(img, Left, Top+len(l.Marks)*Pitch, Radius-RingWidth, Radius)
	}
	return img
}

// Blank returns an empty white sheet.
func Blank(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// Disc paints a solid black disc.
func Disc(img draw.Image, cx, cy, radius int) {
	Ring(img, cx, cy, -1, radius)
}

// Ring paints the black pixels whose squared distance from the center lies in
// (inner², outer²]. A negative inner paints a solid disc.
func Ring(img draw.Image, cx, cy, inner, outer int) {
	for y := cy - outer; y <= cy+outer; y++ {
		for x := cx - outer; x <= cx+outer; x++ {
			d2 := (x-cx)*(x-cx) + (y-cy)*(y-cy)
			if d2 <= outer*outer && (inner < 0 || d2 > inner*inner) {
				img.Set(x, y, color.Black)
			}
		}
	}
}

// PNG encodes img.
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
