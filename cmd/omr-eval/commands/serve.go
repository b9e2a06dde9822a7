package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/omr-eval/internal/ocr"
	"github.com/ironsheep/omr-eval/internal/server"
)

// serve: run the MCP server over stdin/stdout.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: "Run the MCP server on stdin/stdout. Configure it in an MCP client; " +
			"logs go to stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := newEvaluator()
			if err != nil {
				return err
			}
			logger.Debug("MCP server starting", zap.String("version", version))
			srv := server.New(ev,
				server.WithLogger(logger),
				server.WithSetReader(ocr.NewReader(cfg.OCR)),
				server.WithVersion(version),
			)
			return srv.Run()
		},
	}
}
