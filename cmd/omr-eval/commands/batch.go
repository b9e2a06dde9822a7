package commands

import (
	"fmt"
	"image"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/batch"
	"github.com/ironsheep/omr-eval/internal/metrics"
	"github.com/ironsheep/omr-eval/internal/omr"
	"github.com/ironsheep/omr-eval/internal/report"
	"github.com/ironsheep/omr-eval/internal/scoring"
)

// batch <dir> <answer_key>: score every sheet in a directory.
func batchCmd() *cobra.Command {
	var (
		set         string
		outDir      string
		workers     int
		format      string
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "batch <dir> <answer_key>",
		Short: "Score every sheet image in a directory",
		Long: "Score every sheet image in a directory. Each sheet's file name (without " +
			"extension) is used as its roll number. Overlays are written to --out.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, keyPath := args[0], args[1]

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Batch.Workers
			}

			doc, err := loadKeys(keyPath)
			if err != nil {
				return err
			}
			paths, err := batch.Collect(dir)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			ev, err := newEvaluator(omr.WithMetrics(metrics.New(reg)))
			if err != nil {
				return err
			}

			selector := strings.ToLower(strings.TrimSpace(set))
			reader := setReader(selector)
			keys := func(img image.Image) (string, scoring.AnswerKey) {
				chosen := ev.ResolveSet(img, selector, reader)
				return chosen, doc.Resolve(chosen)
			}

			logger.Info("batch started", zap.String("dir", dir), zap.Int("sheets", len(paths)), zap.Int("workers", workers))
			items, err := batch.NewRunner(ev, keys, workers, outDir, logger).Run(cmd.Context(), paths)
			if err != nil {
				return err
			}

			w := report.NewWriter(cmd.OutOrStdout(), f, cfg.Subjects)
			failed := 0
			for _, item := range items {
				if item.Err != nil {
					failed++
					logger.Error("sheet failed", zap.String("path", item.Path), zap.Error(item.Err))
					continue
				}
				if err := w.Write(report.Record{
					Source: item.Path,
					RollNo: batch.Stem(item.Path),
					Set:    item.Set,
					Result: item.Outcome.Result,
				}); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if metricsFile != "" {
				if err := metrics.WriteTextfile(reg, metricsFile); err != nil {
					return err
				}
			}

			logger.Info("batch finished", zap.Int("evaluated", len(items)-failed), zap.Int("failed", failed))
			if failed > 0 {
				return fmt.Errorf("%d of %d sheets failed", failed, len(items))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&set, "set", omr.DefaultSet, fmt.Sprintf("answer set (A, B, ...) or %q to read it from each sheet header", omr.AutoSet))
	cmd.Flags().StringVar(&outDir, "out", "", "directory for overlay images (none written if empty)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent evaluations (default from config)")
	cmd.Flags().StringVar(&format, "format", string(report.FormatCSV), "output format: text, json or csv")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this textfile when done")
	return cmd
}
