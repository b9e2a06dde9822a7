package scoring

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/grid"
)

var abcd = []string{"A", "B", "C", "D"}

func newTestScorer() *Scorer {
	cfg := config.Default()
	return NewScorer(cfg.Sheet, cfg.Subjects)
}

func TestSelectRow(t *testing.T) {
	tests := []struct {
		name   string
		ratios []float64
		want   string
	}{
		{"single highest", []float64{0.05, 0.7, 0.1, 0.3}, "B"},
		{"nothing reaches threshold", []float64{0.19, 0.1, 0.0, 0.15}, NoSelection},
		{"threshold is inclusive", []float64{0.1, 0.2, 0.0, 0.05}, "B"},
		{"tie keeps earlier column", []float64{0.1, 0.6, 0.6, 0.3}, "B"},
		{"tie at threshold keeps earlier", []float64{0.2, 0.2, 0.2, 0.2}, "A"},
		{"last column", []float64{0, 0, 0, 0.9}, "D"},
		{"all zero", []float64{0, 0, 0, 0}, NoSelection},
		{"later higher wins", []float64{0.3, 0.31, 0.0, 0.0}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectRow(tt.ratios, abcd, 0.2))
		})
	}
}

func TestSelectRow_ZeroThresholdNeverPicksEmpty(t *testing.T) {
	assert.Equal(t, NoSelection, SelectRow([]float64{0, 0, 0, 0}, abcd, 0))
	assert.Equal(t, "C", SelectRow([]float64{0, 0, 0.01, 0}, abcd, 0))
}

func measurementsFor(rows ...[]float64) []grid.Measurement {
	var ms []grid.Measurement
	for i, ratios := range rows {
		for j, r := range ratios {
			ms = append(ms, grid.Measurement{Question: i + 1, Column: j, Ratio: r})
		}
	}
	return ms
}

func TestSelect(t *testing.T) {
	s := newTestScorer()
	qs := s.Select(measurementsFor(
		[]float64{0.9, 0.1, 0.1, 0.1},
		[]float64{0.1, 0.1, 0.1, 0.1},
		[]float64{0.1, 0.1, 0.5, 0.5},
	))

	require.Len(t, qs, 3)
	assert.Equal(t, Question{Number: 1, Choice: "A"}, qs[0])
	assert.Equal(t, Question{Number: 2, Choice: NoSelection}, qs[1])
	assert.Equal(t, Question{Number: 3, Choice: "C"}, qs[2])
}

func TestSelect_Empty(t *testing.T) {
	assert.Empty(t, newTestScorer().Select(nil))
}

func TestScore_EmptyPredictions(t *testing.T) {
	key := AnswerKey{}
	for q := 1; q <= 100; q++ {
		key[strconv.Itoa(q)] = "A"
	}

	res := newTestScorer().Score(nil, key)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, res.PerSubject)
	assert.Empty(t, res.Predicted)
}

func TestScore_ScenarioA(t *testing.T) {
	key := AnswerKey{"1": "A", "2": "B"}
	qs := []Question{{Number: 1, Choice: "A"}, {Number: 2, Choice: "C"}}

	res := newTestScorer().Score(qs, key)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []int{1, 0, 0, 0, 0}, res.PerSubject)
	assert.Equal(t, map[int]string{1: "A", 2: "C"}, res.Predicted)
}

func TestScore_ScenarioB_AllCorrect(t *testing.T) {
	key := AnswerKey{}
	qs := make([]Question, 0, 100)
	for q := 1; q <= 100; q++ {
		choice := abcd[q%4]
		key[strconv.Itoa(q)] = choice
		qs = append(qs, Question{Number: q, Choice: choice})
	}

	res := newTestScorer().Score(qs, key)
	assert.Equal(t, 100, res.Total)
	assert.Equal(t, []int{20, 20, 20, 20, 20}, res.PerSubject)
}

func TestScore_BucketBoundaries(t *testing.T) {
	tests := []struct {
		question int
		bucket   int
	}{
		{1, 0}, {20, 0}, {21, 1}, {40, 1}, {41, 2}, {60, 2}, {61, 3}, {80, 3}, {81, 4}, {100, 4},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.question), func(t *testing.T) {
			key := AnswerKey{strconv.Itoa(tt.question): "D"}
			res := newTestScorer().Score([]Question{{Number: tt.question, Choice: "D"}}, key)

			want := make([]int, 5)
			want[tt.bucket] = 1
			assert.Equal(t, want, res.PerSubject)
			assert.Equal(t, 1, res.Total)
		})
	}
}

func TestScore_SkipsMalformedEntries(t *testing.T) {
	qs := []Question{{Number: 1, Choice: "A"}, {Number: 2, Choice: NoSelection}, {Number: 3, Choice: "B"}}
	key := AnswerKey{
		"1":     "A",
		"two":   "A",  // non-numeric question
		"2":     "",   // empty value never matches an unmarked question
		"3":     "E",  // outside the alphabet
		"0":     "A",  // no question zero
		"-4":    "A",  // negative
		"999":   "A",  // beyond the sheet
		"notes": "hi", // free text
	}

	res := newTestScorer().Score(qs, key)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []int{1, 0, 0, 0, 0}, res.PerSubject)
}

func TestScore_ExactMatch(t *testing.T) {
	qs := []Question{{Number: 1, Choice: "A"}, {Number: 2, Choice: "B"}, {Number: 3, Choice: "C"}}

	for name, key := range map[string]AnswerKey{
		"lower case":    {"1": "a", "2": "b", "3": "c"},
		"padded value":  {"1": " A", "2": "B ", "3": "C\n"},
		"padded number": {" 1": "A", "02": "B", "3 ": "C"},
	} {
		t.Run(name, func(t *testing.T) {
			res := newTestScorer().Score(qs, key)
			assert.Zero(t, res.Total)
		})
	}

	// a question is counted once even when other keys parse to its number
	res := newTestScorer().Score(qs, AnswerKey{"1": "A", "01": "A", " 1 ": "A"})
	assert.Equal(t, 1, res.Total)
}

func TestScore_MissingQuestionsNeverMatch(t *testing.T) {
	// grid lost its last rows: questions 99 and 100 have no prediction
	qs := []Question{{Number: 1, Choice: "A"}}
	key := AnswerKey{"1": "A", "99": "A", "100": "A"}

	res := newTestScorer().Score(qs, key)
	assert.Equal(t, 1, res.Total)
	_, ok := res.Predicted[99]
	assert.False(t, ok)
}

func TestScore_QuestionsBeyondBucketsCountTowardTotal(t *testing.T) {
	cfg := config.Default()
	cfg.Sheet.Rows = 120
	s := NewScorer(cfg.Sheet, cfg.Subjects)

	res := s.Score([]Question{{Number: 110, Choice: "A"}}, AnswerKey{"110": "A"})
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, []int{0, 0, 0, 0, 0}, res.PerSubject)
}

func TestScore_Deterministic(t *testing.T) {
	qs := []Question{{Number: 1, Choice: "A"}, {Number: 2, Choice: "B"}, {Number: 21, Choice: "C"}}
	key := AnswerKey{"1": "A", "2": "B", "21": "C", "x": "A"}

	s := newTestScorer()
	assert.Equal(t, s.Score(qs, key), s.Score(qs, key))
}
