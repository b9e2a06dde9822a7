package grid

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-eval/internal/detection"
)

func paint(mask *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

func TestFillRatio(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 40, 40))
	paint(mask, image.Rect(0, 0, 10, 5))

	tests := []struct {
		name string
		r    image.Rectangle
		want float64
	}{
		{"fully inked", image.Rect(0, 0, 10, 5), 1},
		{"half inked", image.Rect(0, 0, 10, 10), 0.5},
		{"blank", image.Rect(20, 20, 30, 30), 0},
		{"empty rect", image.Rect(5, 5, 5, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FillRatio(mask, tt.r), 1e-9)
		})
	}
}

func TestMeasure(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 40))
	paint(mask, image.Rect(5, 5, 15, 15)) // column A fully filled
	paint(mask, image.Rect(25, 5, 35, 8)) // column B 30%

	cands := row(0, 10, 10, 30, 50, 70)
	cands = append(cands, bubble(9, 10, 30))

	g, _ := NewUniformAssembler(2, 4).Assemble(cands)
	require.Equal(t, 2, g.Rows())

	ms := Measure(g, mask)
	require.Len(t, ms, 8)

	assert.Equal(t, 1, ms[0].Question)
	assert.Equal(t, 0, ms[0].Column)
	assert.InDelta(t, 1.0, ms[0].Ratio, 1e-9)
	assert.InDelta(t, 0.3, ms[1].Ratio, 1e-9)
	assert.Zero(t, ms[2].Ratio)
	assert.Equal(t, image.Rect(65, 5, 75, 15), ms[3].Rect)

	// second row was recovered from the first: identical boxes and ratios
	for j := 0; j < 4; j++ {
		assert.Equal(t, 2, ms[4+j].Question)
		assert.Equal(t, ms[j].Rect, ms[4+j].Rect)
		assert.Equal(t, ms[j].Ratio, ms[4+j].Ratio)
	}
}

func TestMeasure_ClipsToMask(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	paint(mask, mask.Bounds())

	g := Grid{
		columns: 2,
		rows: [][]Cell{{
			{Question: 1, Column: 0, Candidate: detection.Candidate{Rect: image.Rect(-5, -5, 5, 5)}},
			{Question: 1, Column: 1, Candidate: detection.Candidate{Rect: image.Rect(30, 30, 40, 40)}},
		}},
	}

	ms := Measure(g, mask)
	require.Len(t, ms, 2)
	assert.Equal(t, image.Rect(0, 0, 5, 5), ms[0].Rect)
	assert.InDelta(t, 1.0, ms[0].Ratio, 1e-9)
	assert.True(t, ms[1].Rect.Empty())
	assert.Zero(t, ms[1].Ratio)
}
