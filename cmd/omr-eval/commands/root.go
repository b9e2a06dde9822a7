package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/answerkey"
	"github.com/ironsheep/omr-eval/internal/config"
	"github.com/ironsheep/omr-eval/internal/detection"
	"github.com/ironsheep/omr-eval/internal/logging"
	"github.com/ironsheep/omr-eval/internal/ocr"
	"github.com/ironsheep/omr-eval/internal/omr"
)

var (
	cfgPath  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger

	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// SetVersion records build information for the version command and the MCP handshake.
func SetVersion(v, built, commit string) {
	version, buildTime, gitCommit = v, built, commit
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "omr-eval",
		Short:        "Score scanned OMR answer sheets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
				if err := loaded.Validate(); err != nil {
					return err
				}
			}
			cfg = loaded

			l, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ./omr.yaml or ./config/omr.yaml if present)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(evaluateCmd(), batchCmd(), keysCmd(), serveCmd(), versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "omr-eval %s\n", version)
			fmt.Fprintf(out, "  Build time: %s\n", buildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", gitCommit)
			fmt.Fprintf(out, "  Detectors:  %s\n", strings.Join(detection.Variants(), ", "))
			return nil
		},
	}
}

// newEvaluator builds an evaluator from the loaded configuration.
func newEvaluator(opts ...omr.Option) (*omr.Evaluator, error) {
	return omr.New(*cfg, append([]omr.Option{omr.WithLogger(logger)}, opts...)...)
}

// setReader returns the OCR reader when the set is read from the sheet.
func setReader(set string) omr.SetReader {
	if set != omr.AutoSet {
		return nil
	}
	return ocr.NewReader(cfg.OCR)
}

// loadKeys reads an answer key file, logging the sets it offers.
func loadKeys(path string) (*answerkey.Document, error) {
	doc, err := answerkey.LoadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("answer key loaded", zap.String("path", path), zap.Strings("sets", doc.Sets()))
	return doc, nil
}
