package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1200, cfg.Sheet.TargetWidth)
	assert.Equal(t, 100, cfg.Sheet.Rows)
	assert.Equal(t, 4, cfg.Sheet.Columns)
	assert.Equal(t, []string{"A", "B", "C", "D"}, cfg.Sheet.Labels())
	assert.Equal(t, 0.2, cfg.Sheet.FillThreshold)
	assert.Equal(t, 50, cfg.Sheet.BubbleMinArea)
	assert.Equal(t, 12000, cfg.Sheet.BubbleMaxArea)
	assert.Equal(t, 0.6, cfg.Sheet.AspectMin)
	assert.Equal(t, 1.4, cfg.Sheet.AspectMax)
	assert.Equal(t, 5, cfg.Subjects.Count)
	assert.Equal(t, 20, cfg.Subjects.QuestionsPerSubject)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"choices shorter than columns", func(c *Config) { c.Sheet.Choices = "ABC" }},
		{"duplicate choice", func(c *Config) { c.Sheet.Choices = "ABCA" }},
		{"max area below min", func(c *Config) { c.Sheet.BubbleMaxArea = 10 }},
		{"aspect max below min", func(c *Config) { c.Sheet.AspectMax = 0.5 }},
		{"threshold above one", func(c *Config) { c.Sheet.FillThreshold = 1.5 }},
		{"zero width", func(c *Config) { c.Sheet.TargetWidth = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSubjectsName(t *testing.T) {
	s := SubjectsConfig{Count: 3, QuestionsPerSubject: 10, Names: []string{"Math", ""}}
	assert.Equal(t, "Math", s.Name(0))
	assert.Equal(t, "Subject 2", s.Name(1))
	assert.Equal(t, "Subject 3", s.Name(2))
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omr.yaml")
	content := `
sheet:
  rows: 50
  columns: 5
  choices: abcde
  fill_threshold: 0.35
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Sheet.Rows)
	assert.Equal(t, 5, cfg.Sheet.Columns)
	assert.Equal(t, "ABCDE", cfg.Sheet.Choices)
	assert.Equal(t, 0.35, cfg.Sheet.FillThreshold)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, 1200, cfg.Sheet.TargetWidth)
	assert.Equal(t, "Python", cfg.Subjects.Name(0))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OMR_SHEET_FILL_THRESHOLD", "0.4")
	t.Setenv("OMR_BATCH_WORKERS", "9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Sheet.FillThreshold)
	assert.Equal(t, 9, cfg.Batch.Workers)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sheet:\n  columns: 3\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
