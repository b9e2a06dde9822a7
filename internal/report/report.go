// Package report renders evaluation results for the command line.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/scoring"
)

// Format selects how results are printed.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or csv)", s)
	}
}

// Record is one evaluated sheet with the student it belongs to.
type Record struct {
	// Source names the evaluated image.
	Source string
	RollNo string
	Name   string
	// Set is the answer-key set used, if any.
	Set    string
	Result scoring.Result
}

// SubjectScore is a named subject bucket.
type SubjectScore struct {
	Subject string `json:"subject"`
	Score   int    `json:"score"`
}

type jsonRecord struct {
	Source     string            `json:"source,omitempty"`
	RollNo     string            `json:"roll_no,omitempty"`
	Name       string            `json:"name,omitempty"`
	Set        string            `json:"set,omitempty"`
	Total      int               `json:"total_score"`
	PerSubject []int             `json:"per_subject"`
	Subjects   []SubjectScore    `json:"subjects"`
	Predicted  map[string]string `json:"predicted_answers"`
}

// Writer prints records in one format.
type Writer struct {
	w        io.Writer
	format   Format
	subjects config.SubjectsConfig
	csv      *csv.Writer
	header   bool
}

// NewWriter creates a writer printing to w. Subject names come from subjects.
func NewWriter(w io.Writer, format Format, subjects config.SubjectsConfig) *Writer {
	rw := &Writer{w: w, format: format, subjects: subjects}
	if format == FormatCSV {
		rw.csv = csv.NewWriter(w)
	}
	return rw
}

// Write prints rec. In CSV format the header row precedes the first record.
func (rw *Writer) Write(rec Record) error {
	switch rw.format {
	case FormatJSON:
		return rw.writeJSON(rec)
	case FormatCSV:
		return rw.writeCSV(rec)
	default:
		return rw.writeText(rec)
	}
}

// Flush flushes buffered CSV output.
func (rw *Writer) Flush() error {
	if rw.csv == nil {
		return nil
	}
	rw.csv.Flush()
	if err := rw.csv.Error(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Subjects pairs each bucket score with its subject name.
func Subjects(result scoring.Result, subjects config.SubjectsConfig) []SubjectScore {
	out := make([]SubjectScore, len(result.PerSubject))
	for i, score := range result.PerSubject {
		out[i] = SubjectScore{Subject: subjects.Name(i), Score: score}
	}
	return out
}

// CSVHeader is the header row: RollNo, Name, one column per subject, Total.
func CSVHeader(subjects config.SubjectsConfig) []string {
	header := []string{"RollNo", "Name"}
	for i := 0; i < subjects.Count; i++ {
		header = append(header, subjects.Name(i))
	}
	return append(header, "Total")
}

// CSVRow is the data row matching CSVHeader.
func CSVRow(rec Record, subjects config.SubjectsConfig) []string {
	row := []string{rec.RollNo, rec.Name}
	for i := 0; i < subjects.Count; i++ {
		score := 0
		if i < len(rec.Result.PerSubject) {
			score = rec.Result.PerSubject[i]
		}
		row = append(row, strconv.Itoa(score))
	}
	return append(row, strconv.Itoa(rec.Result.Total))
}

func (rw *Writer) writeCSV(rec Record) error {
	if !rw.header {
		if err := rw.csv.Write(CSVHeader(rw.subjects)); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		rw.header = true
	}
	if err := rw.csv.Write(CSVRow(rec, rw.subjects)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func (rw *Writer) writeJSON(rec Record) error {
	predicted := make(map[string]string, len(rec.Result.Predicted))
	for q, choice := range rec.Result.Predicted {
		predicted[strconv.Itoa(q)] = choice
	}
	out := jsonRecord{
		Source:     rec.Source,
		RollNo:     rec.RollNo,
		Name:       rec.Name,
		Set:        rec.Set,
		Total:      rec.Result.Total,
		PerSubject: rec.Result.PerSubject,
		Subjects:   Subjects(rec.Result, rw.subjects),
		Predicted:  predicted,
	}
	enc := json.NewEncoder(rw.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func (rw *Writer) writeText(rec Record) error {
	var b strings.Builder
	if rec.Source != "" {
		fmt.Fprintf(&b, "Sheet: %s\n", rec.Source)
	}
	if rec.RollNo != "" || rec.Name != "" {
		fmt.Fprintf(&b, "Student: %s %s\n", rec.RollNo, rec.Name)
	}
	if rec.Set != "" {
		fmt.Fprintf(&b, "Set: %s\n", rec.Set)
	}
	fmt.Fprintf(&b, "Total: %d\n", rec.Result.Total)
	for _, s := range Subjects(rec.Result, rw.subjects) {
		fmt.Fprintf(&b, "  %-16s %d\n", s.Subject, s.Score)
	}

	questions := make([]int, 0, len(rec.Result.Predicted))
	for q := range rec.Result.Predicted {
		questions = append(questions, q)
	}
	sort.Ints(questions)
	if len(questions) > 0 {
		b.WriteString("Answers:\n")
		for i, q := range questions {
			choice := rec.Result.Predicted[q]
			if choice == scoring.NoSelection {
				choice = "-"
			}
			fmt.Fprintf(&b, "  %3d:%s", q, choice)
			if (i+1)%10 == 0 || i == len(questions)-1 {
				b.WriteString("\n")
			}
		}
	}

	if _, err := io.WriteString(rw.w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
