package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/resume"
	"github.com/amishk599/screener/internal/session"
	"github.com/amishk599/screener/internal/timeline"
	"github.com/amishk599/screener/internal/tui"
)

var (
	analyzeJobID string
	analyzeShare bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [location...]",
	Short: "Analyze resumes against a job and print the results",
	Long: "Analyzes every resume found at the given files, globs, directories or s3:// prefixes " +
		"(default: resumes.paths from config) against one job. Without --job a picker is shown.",
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJobID, "job", "", "job id to analyze against")
	analyzeCmd.Flags().BoolVar(&analyzeShare, "share", false, "share each successful analysis through the configured notifier")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	w, closeLog, err := logWriter(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := setupLogger(debug, w)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	locations := args
	if len(locations) == 0 {
		locations = cfg.Resumes.Paths
	}
	if len(locations) == 0 {
		return errors.New("no resume locations given and resumes.paths is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	jobs, err := tui.RunLoader(ctx, "Loading job catalog", func(ctx context.Context) ([]model.JobDescription, error) {
		return loadJobs(ctx, cfg, httpClient, logger)
	})
	if err != nil {
		return err
	}

	job, ok := model.FindJob(jobs, analyzeJobID)
	if !ok {
		if analyzeJobID != "" {
			return fmt.Errorf("job %q not in catalog", analyzeJobID)
		}
		job, ok, err = tui.RunJobPicker(jobs)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	// Resume paths come from the arguments, not config.
	sessCfg := *cfg
	sessCfg.Resumes.Paths = nil
	sessCfg.Resumes.Watch = ""
	deps, err := startSession(ctx, &sessCfg, jobs, httpClient, logger)
	if err != nil {
		return err
	}
	defer deps.ctrl.Close()

	files, err := resume.ListAll(ctx, deps.files, locations)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No resumes found.")
		return nil
	}

	events, cancel, err := deps.ctrl.Subscribe()
	if err != nil {
		return err
	}
	defer cancel()

	if err := deps.ctrl.SelectJob(job.ID); err != nil {
		return err
	}
	if err := deps.ctrl.UploadFiles(files); err != nil {
		return err
	}

	fmt.Printf("Analyzing %d resume(s) against %q\n\n", len(files), job.Title)
	failed := 0
	for _, f := range files {
		if err := deps.ctrl.SelectFile(f.ID); err != nil {
			return err
		}
		result, err := tui.RunLoader(ctx, "Analyzing "+f.Name, func(ctx context.Context) (session.AnalysisState, error) {
			return waitAnalysis(ctx, events, f.ID)
		})
		if err != nil {
			return err
		}
		printAnalysis(f, result)
		if result.Status == session.StatusFailure {
			failed++
		}

		if analyzeShare && result.Status == session.StatusSuccess {
			if err := deps.notifier.Notify(ctx, job, f, *result.Analysis); err != nil {
				fmt.Printf("  share failed: %v\n", err)
			}
		}
	}
	fmt.Println(analysisSummary(job, len(files), failed))
	return nil
}

// analysisSummary renders the completed run as a timeline.
func analysisSummary(job model.JobDescription, total, failed int) string {
	return timeline.Render(timeline.FixedSteps(
		"Job selected: "+job.Title,
		fmt.Sprintf("%d resume(s) loaded", total),
		fmt.Sprintf("%d analyzed, %d failed", total-failed, failed),
	))
}

// waitAnalysis blocks until the analysis of fileID finishes.
func waitAnalysis(ctx context.Context, events <-chan session.Event, fileID string) (session.AnalysisState, error) {
	for {
		select {
		case <-ctx.Done():
			return session.AnalysisState{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return session.AnalysisState{}, model.ErrClosed
			}
			a := ev.State.Analysis
			if a.FileID != fileID {
				continue
			}
			if a.Status == session.StatusSuccess || a.Status == session.StatusFailure {
				return a, nil
			}
		}
	}
}

func printAnalysis(f model.UploadedFile, a session.AnalysisState) {
	fmt.Printf("── %s\n", f.Name)
	if a.Status == session.StatusFailure {
		fmt.Printf("  error: %v\n\n", a.Err)
		return
	}
	res := a.Analysis
	p := res.Profile
	fmt.Printf("  %s (%s)", p.Name, p.Initials())
	if p.Designation != "" {
		fmt.Printf(", %s", p.Designation)
	}
	if p.Company != "" {
		fmt.Printf(" at %s", p.Company)
	}
	fmt.Printf(", %d years\n", p.YearsExperience)
	fmt.Printf("  selection %3d%%   risk %3d%%\n", res.SelectionScore, res.RiskScore)
	if res.Feedback != "" {
		fmt.Printf("  %s\n", res.Feedback)
	}
	fmt.Println()
}
