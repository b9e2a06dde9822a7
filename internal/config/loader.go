package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. OMR_SHEET_FILL_THRESHOLD.
const EnvPrefix = "OMR"

// Load builds a Config from defaults, an optional YAML file and OMR_* environment
// variables, in increasing order of precedence.
//
// When path is empty, "omr.yaml" is searched for in the working directory and in
// ./config; a missing file is not an error. An explicit path that cannot be read is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("omr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config

	// Sheet
	cfg.Sheet.TargetWidth = v.GetInt("sheet.target_width")
	cfg.Sheet.BlurRadius = v.GetFloat64("sheet.blur_radius")
	cfg.Sheet.BubbleMinArea = v.GetInt("sheet.bubble_min_area")
	cfg.Sheet.BubbleMaxArea = v.GetInt("sheet.bubble_max_area")
	cfg.Sheet.AspectMin = v.GetFloat64("sheet.aspect_min")
	cfg.Sheet.AspectMax = v.GetFloat64("sheet.aspect_max")
	cfg.Sheet.Rows = v.GetInt("sheet.rows")
	cfg.Sheet.Columns = v.GetInt("sheet.columns")
	cfg.Sheet.Choices = strings.ToUpper(v.GetString("sheet.choices"))
	cfg.Sheet.FillThreshold = v.GetFloat64("sheet.fill_threshold")
	cfg.Sheet.Detector = v.GetString("sheet.detector")
	cfg.Sheet.Assembler = v.GetString("sheet.assembler")

	// Overlay
	cfg.Overlay.FilledColor = v.GetString("overlay.filled_color")
	cfg.Overlay.EmptyColor = v.GetString("overlay.empty_color")
	cfg.Overlay.LineWidth = v.GetInt("overlay.line_width")
	cfg.Overlay.Labels = v.GetBool("overlay.labels")

	// Logging
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Format = v.GetString("log.format")

	// Batch
	cfg.Batch.Workers = v.GetInt("batch.workers")

	// OCR
	cfg.OCR.Language = v.GetString("ocr.language")
	cfg.OCR.HeaderFraction = v.GetFloat64("ocr.header_fraction")
	cfg.OCR.TessdataPrefix = v.GetString("ocr.tessdata_prefix")

	// Subjects
	cfg.Subjects.Count = v.GetInt("subjects.count")
	cfg.Subjects.QuestionsPerSubject = v.GetInt("subjects.questions_per_subject")
	cfg.Subjects.Names = v.GetStringSlice("subjects.names")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	// Sheet defaults
	v.SetDefault("sheet.target_width", d.Sheet.TargetWidth)
	v.SetDefault("sheet.blur_radius", d.Sheet.BlurRadius)
	v.SetDefault("sheet.bubble_min_area", d.Sheet.BubbleMinArea)
	v.SetDefault("sheet.bubble_max_area", d.Sheet.BubbleMaxArea)
	v.SetDefault("sheet.aspect_min", d.Sheet.AspectMin)
	v.SetDefault("sheet.aspect_max", d.Sheet.AspectMax)
	v.SetDefault("sheet.rows", d.Sheet.Rows)
	v.SetDefault("sheet.columns", d.Sheet.Columns)
	v.SetDefault("sheet.choices", d.Sheet.Choices)
	v.SetDefault("sheet.fill_threshold", d.Sheet.FillThreshold)
	v.SetDefault("sheet.detector", d.Sheet.Detector)
	v.SetDefault("sheet.assembler", d.Sheet.Assembler)

	// Overlay defaults
	v.SetDefault("overlay.filled_color", d.Overlay.FilledColor)
	v.SetDefault("overlay.empty_color", d.Overlay.EmptyColor)
	v.SetDefault("overlay.line_width", d.Overlay.LineWidth)
	v.SetDefault("overlay.labels", d.Overlay.Labels)

	// Logging defaults
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	// Batch defaults
	v.SetDefault("batch.workers", d.Batch.Workers)

	// OCR defaults
	v.SetDefault("ocr.language", d.OCR.Language)
	v.SetDefault("ocr.header_fraction", d.OCR.HeaderFraction)
	v.SetDefault("ocr.tessdata_prefix", d.OCR.TessdataPrefix)

	// Subject defaults
	v.SetDefault("subjects.count", d.Subjects.Count)
	v.SetDefault("subjects.questions_per_subject", d.Subjects.QuestionsPerSubject)
	v.SetDefault("subjects.names", d.Subjects.Names)
}
