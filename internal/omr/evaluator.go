// Package omr evaluates scanned answer sheets.
//
// An Evaluator runs the full pipeline on one image: decode, normalize to the
// target width, detect bubble candidates, assemble them into the question grid,
// measure fill ratios, select one choice per question, score against an answer
// key and draw the audit overlay. Evaluations share no mutable state, so one
// Evaluator may serve many goroutines.
package omr

import (
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/detection"
	"github.com/ironsheep/omr-eval/internal/grid"
	"github.com/ironsheep/omr-eval/internal/imaging"
	"github.com/ironsheep/omr-eval/internal/metrics"
	"github.com/ironsheep/omr-eval/internal/scoring"
)

// Analysis is everything known about a sheet before scoring.
type Analysis struct {
	// Normalized is the sheet resized to the target width. All coordinates
	// below refer to it.
	Normalized *image.NRGBA

	// Threshold is the binarization level picked for the sheet.
	Threshold uint8

	// Regions is the number of connected regions before bubble filtering.
	Regions int

	Candidates   []detection.Candidate
	Grid         grid.Grid
	Stats        grid.Stats
	Measurements []grid.Measurement
}

// Outcome is the result of evaluating one sheet.
type Outcome struct {
	*Analysis

	Result scoring.Result

	// Overlay is the normalized sheet with every measured cell outlined. It is
	// nil when drawing failed.
	Overlay *image.NRGBA
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records every evaluation on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// Evaluator scores answer sheets for one sheet layout.
type Evaluator struct {
	cfg       config.Config
	detector  detection.Detector
	assembler grid.Assembler
	scorer    *scoring.Scorer
	overlay   imaging.OverlayOptions
	logger    *zap.Logger
	recorder  *metrics.Recorder
}

// New creates an Evaluator for cfg.
func New(cfg config.Config, opts ...Option) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	detector, err := detection.NewDetector(cfg.Sheet)
	if err != nil {
		return nil, err
	}
	assembler, err := grid.NewAssembler(cfg.Sheet)
	if err != nil {
		return nil, err
	}
	overlay, err := imaging.NewOverlayOptions(cfg.Overlay, cfg.Sheet.FillThreshold)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{
		cfg:       cfg,
		detector:  detector,
		assembler: assembler,
		scorer:    scoring.NewScorer(cfg.Sheet, cfg.Subjects),
		overlay:   overlay,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the configuration the evaluator was built with.
func (e *Evaluator) Config() config.Config {
	return e.cfg
}

// Evaluate decodes data and evaluates the sheet against key.
//
// Undecodable data fails with an *imaging.DecodeError. A sheet without usable
// bubbles is not an error: every question is unselected and every score is 0.
func (e *Evaluator) Evaluate(data []byte, key scoring.AnswerKey) (*Outcome, error) {
	start := time.Now()
	img, err := imaging.Decode(data)
	if err != nil {
		e.observeError(start)
		return nil, err
	}
	return e.evaluate(start, img, key)
}

// EvaluateFile reads and evaluates the sheet stored at path.
func (e *Evaluator) EvaluateFile(path string, key scoring.AnswerKey) (*Outcome, error) {
	start := time.Now()
	img, err := imaging.LoadFile(path)
	if err != nil {
		e.observeError(start)
		return nil, err
	}
	return e.evaluate(start, img, key)
}

// EvaluateImage evaluates an already decoded sheet.
func (e *Evaluator) EvaluateImage(img image.Image, key scoring.AnswerKey) (*Outcome, error) {
	return e.evaluate(time.Now(), img, key)
}

func (e *Evaluator) evaluate(start time.Time, img image.Image, key scoring.AnswerKey) (*Outcome, error) {
	analysis, err := e.Analyze(img)
	if err != nil {
		e.observeError(start)
		return nil, err
	}

	questions := e.scorer.Select(analysis.Measurements)
	result := e.scorer.Score(questions, key)

	out := &Outcome{Analysis: analysis, Result: result}

	boxes := make([]imaging.Box, len(analysis.Measurements))
	for i, m := range analysis.Measurements {
		boxes[i] = imaging.Box{Rect: m.Rect, Ratio: m.Ratio, Question: m.Question}
	}
	overlay, err := imaging.RenderOverlay(analysis.Normalized, boxes, e.overlay)
	if err != nil {
		e.logger.Warn("overlay rendering failed", zap.Error(err))
	} else {
		out.Overlay = overlay
	}

	elapsed := time.Since(start)
	e.logger.Debug("sheet evaluated",
		zap.Int("total_score", result.Total),
		zap.Ints("per_subject", result.PerSubject),
		zap.Duration("elapsed", elapsed),
	)
	if e.recorder != nil {
		e.recorder.ObserveEvaluation(elapsed, analysis.Stats, result.Total)
	}
	return out, nil
}

// Analyze normalizes img and runs detection, grid assembly and fill
// measurement without scoring.
func (e *Evaluator) Analyze(img image.Image) (*Analysis, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &imaging.DecodeError{Source: "image", Err: imaging.ErrEmptyInput}
	}

	normalized := imaging.Normalize(img, e.cfg.Sheet.TargetWidth)

	det, err := e.detector.Detect(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to detect bubbles: %w", err)
	}

	g, stats := e.assembler.Assemble(det.Candidates)
	measurements := grid.Measure(g, det.Mask)

	e.logger.Debug("sheet analyzed",
		zap.Int("width", normalized.Bounds().Dx()),
		zap.Int("height", normalized.Bounds().Dy()),
		zap.Uint8("threshold", det.Threshold),
		zap.Int("regions", det.Regions),
		zap.Int("candidates", len(det.Candidates)),
		zap.Int("rows", g.Rows()),
		zap.Int("recovered", stats.Recovered),
		zap.Int("skipped", stats.Skipped),
		zap.Int("padded", stats.Padded),
		zap.Int("truncated", stats.Truncated),
	)

	return &Analysis{
		Normalized:   normalized,
		Threshold:    det.Threshold,
		Regions:      det.Regions,
		Candidates:   det.Candidates,
		Grid:         g,
		Stats:        stats,
		Measurements: measurements,
	}, nil
}

func (e *Evaluator) observeError(start time.Time) {
	if e.recorder != nil {
		e.recorder.ObserveError(time.Since(start))
	}
}
