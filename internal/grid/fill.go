package grid

import (
	"image"
)

// Measurement is the fill ratio of one grid cell.
type Measurement struct {
	Question int             `json:"question"`
	Column   int             `json:"column"`
	Rect     image.Rectangle `json:"rect"`
	Ratio    float64         `json:"ratio"`
}

// Measure computes the fill ratio of every cell against the binarized mask,
// in row-major order.
//
// The ratio is the share of non-zero mask pixels inside the cell's bounding
// box clipped to the mask. A box that clips to nothing has ratio 0. Each
// ratio depends only on its own crop.
func Measure(g Grid, mask *image.Gray) []Measurement {
	cells := g.Cells()
	out := make([]Measurement, len(cells))
	for i, c := range cells {
		rect := c.Candidate.Rect.Intersect(mask.Bounds())
		out[i] = Measurement{
			Question: c.Question,
			Column:   c.Column,
			Rect:     rect,
			Ratio:    FillRatio(mask, rect),
		}
	}
	return out
}

// FillRatio returns the fraction of non-zero pixels of mask inside r.
// r must already lie within the mask bounds; an empty r yields 0.
func FillRatio(mask *image.Gray, r image.Rectangle) float64 {
	if r.Empty() {
		return 0
	}
	ink := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := mask.Pix[mask.PixOffset(r.Min.X, y):mask.PixOffset(r.Max.X, y)]
		for _, v := range row {
			if v != 0 {
				ink++
			}
		}
	}
	return float64(ink) / float64(r.Dx()*r.Dy())
}
