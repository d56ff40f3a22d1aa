package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive screener (TUI)",
	Long:  "Loads the job catalog, then opens the full-screen session: pick a job, add resumes, review analyses and chat.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	// Any log output on the terminal corrupts the alt screen.
	w, closeLog, err := logWriter(io.Discard)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	jobs, err := tui.RunLoader(ctx, "Loading job catalog", func(ctx context.Context) ([]model.JobDescription, error) {
		return loadJobs(ctx, cfg, httpClient, logger)
	})
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		return err
	}
	logger.Info("catalog loaded", "source", cfg.Catalog.Source, "jobs", len(jobs))

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	deps, err := startSession(sessCtx, cfg, jobs, httpClient, logger)
	if err != nil {
		logger.Error("failed to start session", "error", err)
		return err
	}
	defer deps.ctrl.Close()

	if err := tui.Run(ctx, deps.ctrl, deps.files, deps.notifier); err != nil {
		logger.Error("tui error", "error", err)
		return err
	}
	return nil
}
