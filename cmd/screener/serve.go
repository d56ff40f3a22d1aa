package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/screener/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over HTTP",
	Long:  "Starts the JSON/SSE API for a browser front-end; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	w, closeLog, err := logWriter(os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := setupLogger(debug, w)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	jobs, err := loadJobs(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		return err
	}
	logger.Info("catalog loaded", "source", cfg.Catalog.Source, "jobs", len(jobs))

	deps, err := startSession(ctx, cfg, jobs, httpClient, logger)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		return err
	}
	defer deps.ctrl.Close()

	srv := server.New(deps.ctrl, deps.notifier, logger)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
