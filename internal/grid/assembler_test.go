package grid

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/detection"
)

// bubble returns a 10x10 candidate centered at (cx, cy).
func bubble(id, cx, cy int) detection.Candidate {
	return detection.Candidate{
		ID:   id,
		Rect: image.Rect(cx-5, cy-5, cx+5, cy+5),
		Area: 78,
	}
}

// row returns one candidate per x at height cy, IDs starting at firstID.
func row(firstID, cy int, xs ...int) []detection.Candidate {
	out := make([]detection.Candidate, len(xs))
	for i, x := range xs {
		out[i] = bubble(firstID+i, x, cy)
	}
	return out
}

func rects(cells []Cell) []image.Rectangle {
	out := make([]image.Rectangle, len(cells))
	for i, c := range cells {
		out[i] = c.Candidate.Rect
	}
	return out
}

func TestAssemble_Empty(t *testing.T) {
	g, stats := NewUniformAssembler(100, 4).Assemble(nil)
	assert.Equal(t, 0, g.Rows())
	assert.Empty(t, g.Cells())
	assert.Equal(t, 4, g.Columns())
	assert.Equal(t, 0, stats.Candidates)
}

func TestAssemble_RowsAndOrder(t *testing.T) {
	// R=4: min cy 12, max cy 50 -> height 9.5, bins start at 12, 21.5, 31, 40.5
	var cands []detection.Candidate
	cands = append(cands, row(0, 22, 40, 10, 30, 20)...) // shuffled x
	cands = append(cands, row(10, 12, 10, 20, 30, 40)...)
	cands = append(cands, row(20, 33, 10, 20, 30, 40)...)
	cands = append(cands, row(30, 44, 10, 20, 30, 40)...)
	cands = append(cands, bubble(99, 10, 50)) // on the bottom edge, excluded

	g, stats := NewUniformAssembler(4, 4).Assemble(cands)
	require.Equal(t, 4, g.Rows())
	assert.Equal(t, 9.5, stats.RowHeight)
	assert.Zero(t, stats.Recovered)

	for i := 0; i < g.Rows(); i++ {
		cells := g.Row(i)
		require.Len(t, cells, 4)
		for j, c := range cells {
			assert.Equal(t, i+1, c.Question)
			assert.Equal(t, j, c.Column)
			if j > 0 {
				assert.Greater(t, c.Candidate.Rect.Min.X, cells[j-1].Candidate.Rect.Min.X, "row %d not left-to-right", i)
			}
		}
	}
	assert.Equal(t, 7, g.Row(0)[0].Candidate.Rect.Min.Y)
	assert.Equal(t, 17, g.Row(1)[0].Candidate.Rect.Min.Y)
	assert.Equal(t, 39, g.Row(3)[0].Candidate.Rect.Min.Y)
}

func TestAssemble_EmptyRowRepeatsPrevious(t *testing.T) {
	var cands []detection.Candidate
	cands = append(cands, row(0, 12, 10, 20, 30, 40)...)
	// nothing in [21.5, 31)
	cands = append(cands, row(20, 33, 10, 20, 30, 40)...)
	cands = append(cands, row(30, 44, 10, 20, 30, 40)...)
	cands = append(cands, bubble(99, 10, 50))

	g, stats := NewUniformAssembler(4, 4).Assemble(cands)
	require.Equal(t, 4, g.Rows())
	assert.Equal(t, 1, stats.Recovered)

	assert.Equal(t, rects(g.Row(0)), rects(g.Row(1)), "recovered row must reuse the previous bounding boxes")
	for _, c := range g.Row(1) {
		assert.Equal(t, 2, c.Question)
	}
	assert.NotEqual(t, rects(g.Row(1)), rects(g.Row(2)))
}

func TestAssemble_PadsShortRow(t *testing.T) {
	var cands []detection.Candidate
	cands = append(cands, row(0, 12, 10, 20)...) // only A and B detected
	cands = append(cands, row(20, 33, 10, 20, 30, 40)...)
	cands = append(cands, bubble(99, 10, 50))

	g, stats := NewUniformAssembler(4, 4).Assemble(cands)
	require.GreaterOrEqual(t, g.Rows(), 1)
	assert.GreaterOrEqual(t, stats.Padded, 1)

	first := g.Row(0)
	require.Len(t, first, 4)
	assert.Equal(t, image.Rect(15, 7, 25, 17), first[1].Candidate.Rect)
	assert.Equal(t, first[1].Candidate.Rect, first[2].Candidate.Rect)
	assert.Equal(t, first[1].Candidate.Rect, first[3].Candidate.Rect)
	assert.Equal(t, 3, first[3].Column)
}

func TestAssemble_TruncatesLongRow(t *testing.T) {
	var cands []detection.Candidate
	cands = append(cands, row(0, 12, 60, 50, 40, 30, 20, 10)...)
	cands = append(cands, bubble(99, 10, 50))

	g, stats := NewUniformAssembler(4, 4).Assemble(cands)
	require.GreaterOrEqual(t, g.Rows(), 1)
	// the three recovered rows repeat the long bin and are truncated too
	assert.Equal(t, 4, stats.Truncated)

	xs := []int{}
	for _, c := range g.Row(0) {
		cx, _ := c.Candidate.Center()
		xs = append(xs, int(cx))
	}
	assert.Equal(t, []int{10, 20, 30, 40}, xs)
}

func TestAssemble_FlatSpanIsEmpty(t *testing.T) {
	// all centers share one Y: zero row height, every bin empty
	g, stats := NewUniformAssembler(100, 4).Assemble(row(0, 40, 10, 20, 30, 40))
	assert.Equal(t, 0, g.Rows())
	assert.Equal(t, 100, stats.Skipped)
}

func TestAssemble_DoesNotMutateInput(t *testing.T) {
	cands := row(0, 12, 40, 30, 20, 10)
	cands = append(cands, bubble(99, 10, 50))
	before := append([]detection.Candidate(nil), cands...)

	NewUniformAssembler(4, 4).Assemble(cands)
	assert.Equal(t, before, cands)
}

func TestAssemble_NeverShrinksColumns(t *testing.T) {
	// rows of 1..6 candidates at irregular heights
	var cands []detection.Candidate
	id := 0
	for r := 0; r < 12; r++ {
		for c := 0; c <= r%6; c++ {
			cands = append(cands, bubble(id, 10+c*15, 10+r*13+r%3))
			id++
		}
	}

	g, _ := NewUniformAssembler(10, 4).Assemble(cands)
	require.LessOrEqual(t, g.Rows(), 10)
	for i := 0; i < g.Rows(); i++ {
		assert.Len(t, g.Row(i), 4)
	}
	assert.Len(t, g.Cells(), g.Rows()*4)
}

func TestNewAssembler(t *testing.T) {
	cfg := config.Default().Sheet

	a, err := NewAssembler(cfg)
	require.NoError(t, err)
	assert.IsType(t, &UniformAssembler{}, a)

	cfg.Assembler = "adaptive"
	_, err = NewAssembler(cfg)
	assert.Error(t, err)
}
