package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the analyzer over HTTP:
  POST /analyze-pitch-deck   multipart upload (file, general_context)
  GET  /health               liveness
  GET  /metrics              Prometheus metrics

Example:
  pitchcheck serve --addr :8000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	addPipelineFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if !p.ModelAvailable(checkCtx) {
		log.Warn("model provider not reachable, analyses will fail until it is",
			zap.String("provider", cfg.LLM.Provider))
	}
	cancel()

	log.Info("starting pitchcheck API",
		zap.String("addr", addr),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("version", Version))
	if err := server.New(p, cfg, log).ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
