package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job catalog",
	Long:  "Loads the configured catalog source and prints one line per job description.",
	RunE:  runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
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

	jobs, err := loadJobs(context.Background(), cfg, newHTTPClient(), logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	fmt.Printf("%-12s %-40s %-20s %s\n", "ID", "Title", "Company", "Location")
	fmt.Println(strings.Repeat("─", 90))
	for _, j := range jobs {
		fmt.Printf("%-12s %-40s %-20s %s\n", truncate(j.ID, 12), truncate(j.Title, 40), truncate(j.Company, 20), j.Location)
	}

	fmt.Printf("\nTotal: %d jobs (source: %s)\n", len(jobs), cfg.Catalog.Source)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
