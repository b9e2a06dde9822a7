package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/imaging"
	"github.com/ironsheep/omr-eval/internal/omr"
	"github.com/ironsheep/omr-eval/internal/report"
)

// evaluate <image> <answer_key> <overlay_out>: score one sheet.
func evaluateCmd() *cobra.Command {
	var (
		set    string
		rollNo string
		name   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "evaluate <image> <answer_key> <overlay_out>",
		Short: "Score a sheet, print the result and write the overlay",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			imagePath, keyPath, overlayPath := args[0], args[1], args[2]

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			doc, err := loadKeys(keyPath)
			if err != nil {
				return err
			}
			ev, err := newEvaluator()
			if err != nil {
				return err
			}
			img, err := imaging.LoadFile(imagePath)
			if err != nil {
				return err
			}

			selector := strings.ToLower(strings.TrimSpace(set))
			chosen := ev.ResolveSet(img, selector, setReader(selector))
			out, err := ev.EvaluateImage(img, doc.Resolve(chosen))
			if err != nil {
				return err
			}

			if out.Overlay == nil {
				logger.Warn("no overlay to write", zap.String("path", overlayPath))
			} else if err := imaging.Save(out.Overlay, overlayPath); err != nil {
				return err
			}

			w := report.NewWriter(cmd.OutOrStdout(), f, cfg.Subjects)
			if err := w.Write(report.Record{
				Source: imagePath,
				RollNo: rollNo,
				Name:   name,
				Set:    chosen,
				Result: out.Result,
			}); err != nil {
				return err
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&set, "set", omr.DefaultSet, fmt.Sprintf("answer set (A, B, ...) or %q to read it from the sheet header", omr.AutoSet))
	cmd.Flags().StringVar(&rollNo, "roll", "", "student roll number, for reports")
	cmd.Flags().StringVar(&name, "name", "", "student name, for reports")
	cmd.Flags().StringVar(&format, "format", string(report.FormatText), "output format: text, json or csv")
	return cmd
}
