package scoring

import (
	"strconv"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/grid"
)

// NoSelection is the choice recorded for a question with no marked bubble.
const NoSelection = ""

// AnswerKey maps question numbers, as decimal strings, to expected choice labels.
// It is read-only to the scorer.
type AnswerKey map[string]string

// Question is one question's selected choice.
type Question struct {
	Number int    `json:"question"`
	Choice string `json:"choice"`
}

// Result is the outcome of scoring one sheet.
type Result struct {
	// Total is the number of questions answered as the key expects.
	Total int `json:"total_score"`

	// PerSubject holds the correct count of each subject bucket.
	PerSubject []int `json:"per_subject"`

	// Predicted maps every assembled question to its choice (NoSelection if none).
	Predicted map[int]string `json:"predicted_answers"`

	// Questions lists the same predictions in question order.
	Questions []Question `json:"-"`
}

// Scorer selects choices and aggregates scores for one sheet layout.
type Scorer struct {
	labels    []string
	threshold float64
	subjects  config.SubjectsConfig
}

// NewScorer creates a scorer using the choice alphabet and fill threshold of
// sheet and the bucket layout of subjects.
func NewScorer(sheet config.SheetConfig, subjects config.SubjectsConfig) *Scorer {
	return &Scorer{
		labels:    sheet.Labels(),
		threshold: sheet.FillThreshold,
		subjects:  subjects,
	}
}

// SelectRow picks the label of the marked column among ratios, in column order.
//
// The running maximum starts at 0 and only moves on a ratio that is strictly
// greater and at least threshold, so ties keep the earlier column.
func SelectRow(ratios []float64, labels []string, threshold float64) string {
	best := 0.0
	sel := NoSelection
	for j, r := range ratios {
		if j >= len(labels) {
			break
		}
		if r > best && r >= threshold {
			best = r
			sel = labels[j]
		}
	}
	return sel
}

// Select reduces row-major measurements to one Question per assembled row.
func (s *Scorer) Select(ms []grid.Measurement) []Question {
	questions := make([]Question, 0)
	for start := 0; start < len(ms); {
		end := start
		for end < len(ms) && ms[end].Question == ms[start].Question {
			end++
		}

		ratios := make([]float64, len(s.labels))
		for _, m := range ms[start:end] {
			if m.Column >= 0 && m.Column < len(ratios) {
				ratios[m.Column] = m.Ratio
			}
		}
		questions = append(questions, Question{
			Number: ms[start].Question,
			Choice: SelectRow(ratios, s.labels, s.threshold),
		})
		start = end
	}
	return questions
}

// Score compares questions against key.
//
// Each question is looked up by its decimal number and matches only when the
// key value is exactly the predicted choice. Key values outside the choice
// alphabet, and questions without a prediction or predicted as NoSelection,
// never match. Matches on questions beyond the last subject bucket count
// toward the total only.
func (s *Scorer) Score(questions []Question, key AnswerKey) Result {
	predicted := make(map[int]string, len(questions))
	for _, q := range questions {
		predicted[q.Number] = q.Choice
	}

	perSubject := make([]int, s.subjects.Count)
	total := 0

	for _, q := range questions {
		if q.Choice == NoSelection {
			continue
		}
		expected, ok := key[strconv.Itoa(q.Number)]
		if !ok || !s.inAlphabet(expected) || q.Choice != expected {
			continue
		}

		total++
		if bucket := (q.Number - 1) / s.subjects.QuestionsPerSubject; bucket < len(perSubject) {
			perSubject[bucket]++
		}
	}

	ordered := make([]Question, len(questions))
	copy(ordered, questions)

	return Result{
		Total:      total,
		PerSubject: perSubject,
		Predicted:  predicted,
		Questions:  ordered,
	}
}

// inAlphabet reports whether v is one of the choice labels.
func (s *Scorer) inAlphabet(v string) bool {
	for _, l := range s.labels {
		if v == l {
			return true
		}
	}
	return false
}
