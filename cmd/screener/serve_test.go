package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// withFlags points the global flags at dir for one test.
func withFlags(t *testing.T, dir string) string {
	t.Helper()
	log := filepath.Join(dir, "screener.log")
	logFile, cfgPath = log, filepath.Join(dir, "missing.yaml")
	t.Cleanup(func() { logFile, cfgPath = "", "" })
	return log
}

func TestRunServe_ConfigErrorIsReturnedAndLogged(t *testing.T) {
	log := withFlags(t, t.TempDir())

	if err := runServe(serveCmd, nil); err == nil {
		t.Fatal("expected error for missing config")
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "failed to load config") {
		t.Errorf("log file = %q", data)
	}
}

func TestRunJobs_ConfigErrorIsReturned(t *testing.T) {
	withFlags(t, t.TempDir())

	err := runJobs(jobsCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunAnalyze_ConfigErrorIsReturned(t *testing.T) {
	withFlags(t, t.TempDir())

	err := runAnalyze(analyzeCmd, []string{"cv.pdf"})
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Fatalf("err = %v", err)
	}
}
