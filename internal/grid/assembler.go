package grid

import (
	"fmt"
	"sort"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/detection"
)

// Cell binds one candidate's bounding box to a grid position.
type Cell struct {
	// Question is the 1-based question number (assembled row order).
	Question int `json:"question"`

	// Column is the 0-based choice column.
	Column int `json:"column"`

	Candidate detection.Candidate `json:"candidate"`
}

// Grid is an assembled logical grid. Every row has exactly Columns cells,
// rows are ordered top-to-bottom and cells left-to-right.
type Grid struct {
	rows    [][]Cell
	columns int
}

// Rows returns the number of assembled rows.
func (g Grid) Rows() int { return len(g.rows) }

// Columns returns the number of cells in every row.
func (g Grid) Columns() int { return g.columns }

// Row returns a copy of row i (0-based).
func (g Grid) Row(i int) []Cell {
	out := make([]Cell, len(g.rows[i]))
	copy(out, g.rows[i])
	return out
}

// Cells returns all cells in row-major order.
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.rows)*g.columns)
	for _, row := range g.rows {
		out = append(out, row...)
	}
	return out
}

// Stats describes the recoveries applied while assembling.
type Stats struct {
	// Candidates is the number of candidates handed to the assembler.
	Candidates int `json:"candidates"`

	// RowHeight is the uniform bin height in pixels.
	RowHeight float64 `json:"row_height"`

	// Recovered counts empty bins filled by repeating the previous row.
	Recovered int `json:"recovered"`

	// Skipped counts leading empty bins dropped because no row preceded them.
	Skipped int `json:"skipped"`

	// Padded counts rows extended by repeating their last cell.
	Padded int `json:"padded"`

	// Truncated counts rows cut down to the leftmost Columns cells.
	Truncated int `json:"truncated"`
}

// Assembler turns unordered candidates into a logical grid.
type Assembler interface {
	Assemble(candidates []detection.Candidate) (Grid, Stats)
}

// NewAssembler returns the configured assembly strategy.
// An empty name selects "uniform".
func NewAssembler(cfg config.SheetConfig) (Assembler, error) {
	switch cfg.Assembler {
	case "uniform", "":
		return NewUniformAssembler(cfg.Rows, cfg.Columns), nil
	default:
		return nil, fmt.Errorf("unknown grid assembler: %s", cfg.Assembler)
	}
}

// UniformAssembler bins candidates into evenly spaced rows.
type UniformAssembler struct {
	rows    int
	columns int
}

// NewUniformAssembler creates an assembler for a rows × columns sheet.
func NewUniformAssembler(rows, columns int) *UniformAssembler {
	return &UniformAssembler{rows: rows, columns: columns}
}

type centered struct {
	cand   detection.Candidate
	cx, cy float64
}

// Assemble partitions candidates into at most rows rows of exactly columns cells.
//
// # Algorithm
//
//  1. Sort candidates by vertical center, then horizontal center.
//  2. Row height = (max center Y - min center Y) / rows.
//  3. Bin i holds the candidates whose center Y lies in
//     [minY + i*height, minY + i*height + height).
//  4. An empty bin repeats the previous assembled row verbatim; with no previous
//     row it is skipped, so the grid can end up with fewer than rows rows.
//  5. A bin is sorted left-to-right, padded on the right by repeating its last
//     candidate, or truncated to its leftmost columns candidates.
//
// Questions are numbered by assembled row order starting at 1. Zero candidates
// yield an empty grid, and so do candidates that all share one center Y (the
// row height is then zero). Because the bins are half-open, candidates whose
// center lies on the largest center Y are only kept when floating point
// rounding puts them inside the last bin.
func (a *UniformAssembler) Assemble(candidates []detection.Candidate) (Grid, Stats) {
	stats := Stats{Candidates: len(candidates)}
	if len(candidates) == 0 || a.rows <= 0 || a.columns <= 0 {
		return Grid{columns: a.columns}, stats
	}

	sorted := make([]centered, len(candidates))
	for i, c := range candidates {
		cx, cy := c.Center()
		sorted[i] = centered{cand: c, cx: cx, cy: cy}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].cy != sorted[j].cy {
			return sorted[i].cy < sorted[j].cy
		}
		if sorted[i].cx != sorted[j].cx {
			return sorted[i].cx < sorted[j].cx
		}
		return sorted[i].cand.ID < sorted[j].cand.ID
	})

	minY := sorted[0].cy
	rowHeight := (sorted[len(sorted)-1].cy - minY) / float64(a.rows)
	stats.RowHeight = rowHeight

	bins := make([][]detection.Candidate, 0, a.rows)
	for i := 0; i < a.rows; i++ {
		yMin := minY + float64(i)*rowHeight
		yMax := yMin + rowHeight

		bin := binRow(sorted, yMin, yMax)
		switch {
		case len(bin) > 0:
			bins = append(bins, bin)
		case len(bins) > 0:
			prev := bins[len(bins)-1]
			bins = append(bins, append([]detection.Candidate(nil), prev...))
			stats.Recovered++
		default:
			stats.Skipped++
		}
	}

	rows := make([][]Cell, len(bins))
	for i, bin := range bins {
		switch {
		case len(bin) < a.columns:
			stats.Padded++
		case len(bin) > a.columns:
			stats.Truncated++
		}
		rows[i] = a.cells(i+1, bin)
	}

	return Grid{rows: rows, columns: a.columns}, stats
}

// binRow collects the candidates with center Y in [yMin, yMax), left to right.
func binRow(sorted []centered, yMin, yMax float64) []detection.Candidate {
	members := make([]centered, 0)
	for _, c := range sorted {
		if c.cy >= yMin && c.cy < yMax {
			members = append(members, c)
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].cx < members[j].cx
	})

	out := make([]detection.Candidate, len(members))
	for i, m := range members {
		out[i] = m.cand
	}
	return out
}

// cells pads or truncates a bin to exactly a.columns cells.
func (a *UniformAssembler) cells(question int, bin []detection.Candidate) []Cell {
	row := make([]Cell, a.columns)
	for j := range row {
		k := j
		if k >= len(bin) {
			k = len(bin) - 1
		}
		row[j] = Cell{Question: question, Column: j, Candidate: bin[k]}
	}
	return row
}
