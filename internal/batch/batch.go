// Package batch evaluates many answer sheets concurrently.
package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/omr-eval/internal/imaging"
	"github.com/ironsheep/omr-eval/internal/omr"
	"github.com/ironsheep/omr-eval/internal/scoring"
)

// imageExtensions are the file types picked up from a directory.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// KeySource picks the answer key for a decoded sheet and reports the set it
// chose.
type KeySource func(img image.Image) (set string, key scoring.AnswerKey)

// FixedKey always returns key for set.
func FixedKey(set string, key scoring.AnswerKey) KeySource {
	return func(image.Image) (string, scoring.AnswerKey) {
		return set, key
	}
}

// Item is the evaluation of one sheet. Exactly one of Outcome and Err is set.
type Item struct {
	Path        string
	Set         string
	Outcome     *omr.Outcome
	OverlayPath string
	Err         error
}

// Runner evaluates sheets with a bounded number of workers.
type Runner struct {
	evaluator *omr.Evaluator
	keys      KeySource
	workers   int
	outDir    string
	logger    *zap.Logger
}

// NewRunner creates a runner. Overlays are written to outDir unless it is empty.
func NewRunner(ev *omr.Evaluator, keys KeySource, workers int, outDir string, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{evaluator: ev, keys: keys, workers: workers, outDir: outDir, logger: logger}
}

// Collect lists the image files directly inside dir, sorted by name.
func Collect(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OverlayPath is where the overlay of the sheet at path is written.
func OverlayPath(outDir, path string) string {
	return filepath.Join(outDir, Stem(path)+"_overlay.png")
}

// Stem is the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Run evaluates every path. Items come back in the order of paths.
//
// A sheet that fails is reported in its Item and does not stop the others.
// Run only returns an error when ctx is cancelled or the output directory
// cannot be created.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Item, error) {
	if r.outDir != "" {
		if err := os.MkdirAll(r.outDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	items := make([]Item, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = r.evaluate(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Runner) evaluate(path string) Item {
	item := Item{Path: path}

	img, err := imaging.LoadFile(path)
	if err != nil {
		item.Err = err
		r.logger.Warn("sheet skipped", zap.String("path", path), zap.Error(err))
		return item
	}

	set, key := r.keys(img)
	item.Set = set

	out, err := r.evaluator.EvaluateImage(img, key)
	if err != nil {
		item.Err = err
		r.logger.Warn("sheet failed", zap.String("path", path), zap.Error(err))
		return item
	}
	item.Outcome = out

	if r.outDir != "" && out.Overlay != nil {
		dst := OverlayPath(r.outDir, path)
		if err := imaging.Save(out.Overlay, dst); err != nil {
			r.logger.Warn("overlay not saved", zap.String("path", dst), zap.Error(err))
		} else {
			item.OverlayPath = dst
		}
	}

	r.logger.Info("sheet evaluated",
		zap.String("path", path),
		zap.String("set", set),
		zap.Int("total_score", out.Result.Total),
	)
	return item
}
