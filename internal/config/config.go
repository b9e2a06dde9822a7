// Package config holds the single immutable configuration value that every
// pipeline stage receives. Nothing in the pipeline reads process-wide globals;
// callers build a Config (usually via Load) and hand the relevant section to
// each stage by value.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the evaluator.
type Config struct {
	Sheet    SheetConfig
	Overlay  OverlayConfig
	Log      LogConfig
	Batch    BatchConfig
	OCR      OCRConfig
	Subjects SubjectsConfig
}

// SheetConfig describes the physical answer sheet and the detection heuristics.
type SheetConfig struct {
	// TargetWidth is the width every sheet is rescaled to before detection.
	TargetWidth int `mapstructure:"target_width" validate:"gt=0"`

	// BlurRadius is the gaussian blur radius applied before binarization.
	// Zero disables smoothing.
	BlurRadius float64 `mapstructure:"blur_radius" validate:"gte=0"`

	// BubbleMinArea and BubbleMaxArea bound the pixel area of a candidate (inclusive).
	BubbleMinArea int `mapstructure:"bubble_min_area" validate:"gte=0"`
	BubbleMaxArea int `mapstructure:"bubble_max_area" validate:"gtefield=BubbleMinArea"`

	// AspectMin and AspectMax bound width/height of a candidate's bounding box (inclusive).
	AspectMin float64 `mapstructure:"aspect_min" validate:"gt=0"`
	AspectMax float64 `mapstructure:"aspect_max" validate:"gtefield=AspectMin"`

	// Rows is the number of questions on the sheet.
	Rows int `mapstructure:"rows" validate:"gt=0"`

	// Columns is the number of choices per question.
	Columns int `mapstructure:"columns" validate:"gt=0"`

	// Choices is the choice alphabet, one letter per column in left-to-right order.
	Choices string `mapstructure:"choices" validate:"required"`

	// FillThreshold is the minimum fill ratio for a bubble to count as marked.
	FillThreshold float64 `mapstructure:"fill_threshold" validate:"gte=0,lte=1"`

	// Detector selects the bubble detector variant ("native" or "opencv").
	Detector string `mapstructure:"detector"`

	// Assembler selects the grid assembly strategy ("uniform").
	Assembler string `mapstructure:"assembler"`
}

// Labels returns the choice alphabet as individual labels.
func (s SheetConfig) Labels() []string {
	labels := make([]string, 0, len(s.Choices))
	for _, r := range s.Choices {
		labels = append(labels, string(r))
	}
	return labels
}

// OverlayConfig controls the audit overlay.
type OverlayConfig struct {
	FilledColor string `mapstructure:"filled_color" validate:"required"`
	EmptyColor  string `mapstructure:"empty_color" validate:"required"`
	LineWidth   int    `mapstructure:"line_width" validate:"gt=0"`
	// Labels draws question numbers to the left of every row.
	Labels bool `mapstructure:"labels"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// BatchConfig holds batch evaluation settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"gt=0"`
}

// OCRConfig holds settings for reading the sheet header.
type OCRConfig struct {
	Language string `mapstructure:"language" validate:"required"`
	// HeaderFraction is the share of the sheet height, from the top, scanned for the set label.
	HeaderFraction float64 `mapstructure:"header_fraction" validate:"gt=0,lte=1"`

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
}

// SubjectsConfig partitions questions into fixed, contiguous subject buckets.
type SubjectsConfig struct {
	Count               int      `mapstructure:"count" validate:"gt=0"`
	QuestionsPerSubject int      `mapstructure:"questions_per_subject" validate:"gt=0"`
	Names               []string `mapstructure:"names"`
}

// Name returns the display name of subject i, falling back to "Subject N".
func (s SubjectsConfig) Name(i int) string {
	if i >= 0 && i < len(s.Names) && strings.TrimSpace(s.Names[i]) != "" {
		return s.Names[i]
	}
	return fmt.Sprintf("Subject %d", i+1)
}

// Default returns the standard sheet configuration: 100 questions, 4 choices (A-D),
// 5 subjects of 20 questions, fill threshold 0.2, bubble area [50,12000],
// aspect [0.6,1.4] and a normalization width of 1200.
func Default() Config {
	return Config{
		Sheet: SheetConfig{
			TargetWidth:   1200,
			BlurRadius:    1.0,
			BubbleMinArea: 50,
			BubbleMaxArea: 12000,
			AspectMin:     0.6,
			AspectMax:     1.4,
			Rows:          100,
			Columns:       4,
			Choices:       "ABCD",
			FillThreshold: 0.2,
			Detector:      "native",
			Assembler:     "uniform",
		},
		Overlay: OverlayConfig{
			FilledColor: "#00FF00",
			EmptyColor:  "#FF0000",
			LineWidth:   2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		OCR: OCRConfig{
			Language:       "eng",
			HeaderFraction: 0.12,
		},
		Subjects: SubjectsConfig{
			Count:               5,
			QuestionsPerSubject: 20,
			Names:               []string{"Python", "Data Analysis", "MySQL", "Power BI", "Adv Stats"},
		},
	}
}

var validate = validator.New()

// Validate checks field constraints and the relations between fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if n := len([]rune(c.Sheet.Choices)); n != c.Sheet.Columns {
		return fmt.Errorf("invalid config: %d choice labels for %d columns", n, c.Sheet.Columns)
	}
	seen := make(map[rune]bool, c.Sheet.Columns)
	for _, r := range c.Sheet.Choices {
		if seen[r] {
			return fmt.Errorf("invalid config: duplicate choice label %q", r)
		}
		seen[r] = true
	}
	return nil
}
