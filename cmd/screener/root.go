package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/screener/internal/ai"
	"github.com/amishk599/screener/internal/catalog"
	"github.com/amishk599/screener/internal/config"
	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/notifier"
	"github.com/amishk599/screener/internal/ratelimit"
	"github.com/amishk599/screener/internal/resume"
	"github.com/amishk599/screener/internal/session"
)

var (
	cfgPath string
	debug   bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "AI recruitment assistant",
	Long:  "Screener analyses resumes against a job description and lets you chat about each candidate.",
	// Default to `run` so that `screener` with no args opens the TUI.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: SCREENER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (TUI mode discards logs otherwise)")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > SCREENER_CONFIG env var > "./config.yaml".
// A missing ./config.yaml falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("SCREENER_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return config.Default(), nil
			}
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// logWriter returns the --log-file target, or fallback when none is set.
func logWriter(fallback io.Writer) (io.Writer, func(), error) {
	if logFile == "" {
		return fallback, func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.AnalysisNotifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupProvider builds the configured LLM backend wrapped with its rate limiter.
func setupProvider(ctx context.Context, cfg config.AIConfig) (ai.LLMProvider, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var provider ai.LLMProvider
	switch cfg.Provider {
	case "gemini":
		gp, err := ai.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, httpClient)
		if err != nil {
			return nil, err
		}
		provider = gp
	default:
		provider = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient)
	}

	limiter := ratelimit.NewBackendRateLimiter(cfg.MinDelay)
	return ratelimit.NewRateLimitedProvider(provider, limiter), nil
}

// setupAI returns the analysis and chat collaborators. With AI disabled the
// built-in mocks are used.
func setupAI(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.ResumeAnalyzer, model.ChatAssistant, error) {
	if !cfg.AI.Enabled {
		logger.Info("ai disabled, using mock analyzer and assistant")
		return ai.MockAnalyzer{}, ai.MockAssistant{Delay: cfg.Chat.ReplyDelay}, nil
	}

	provider, err := setupProvider(ctx, cfg.AI)
	if err != nil {
		return nil, nil, fmt.Errorf("setup ai provider: %w", err)
	}
	logger.Info("ai enabled", "provider", provider.Name(), "model", cfg.AI.Model)
	return ai.NewLLMResumeAnalyzer(provider, ai.ResumeAnalysisTemplate, logger),
		ai.NewLLMChatAssistant(provider, ai.ChatSystemTemplate, logger),
		nil
}

// setupFiles routes resume locations to the local filesystem or S3.
func setupFiles(ctx context.Context, cfg *config.Config, logger *slog.Logger) (resume.Source, error) {
	src := resume.Sources{Local: resume.NewLocalSource()}
	if cfg.Resumes.S3.Enabled() {
		s3src, err := resume.NewS3Source(ctx, cfg.Resumes.S3, logger)
		if err != nil {
			return nil, fmt.Errorf("setup s3: %w", err)
		}
		src.S3 = s3src
	}
	return src, nil
}

// loadJobs reads the catalog once.
func loadJobs(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ([]model.JobDescription, error) {
	source, closeFn, err := catalog.New(cfg.Catalog, httpClient, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("failed to close catalog", "error", err)
		}
	}()

	jobs, err := source.Jobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return jobs, nil
}

// sessionDeps is everything a running session needs besides the catalog.
type sessionDeps struct {
	ctrl     *session.Controller
	files    resume.Source
	notifier model.AnalysisNotifier
}

// startSession builds the controller, runs it, uploads the configured
// resume paths and starts the directory watcher. The controller stops when
// ctx is cancelled.
func startSession(ctx context.Context, cfg *config.Config, jobs []model.JobDescription, httpClient *http.Client, logger *slog.Logger) (*sessionDeps, error) {
	analyzer, assistant, err := setupAI(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	files, err := setupFiles(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ctrl := session.New(jobs, analyzer, assistant, logger, session.WithRequestTimeout(cfg.AI.Timeout))
	go func() {
		if err := ctrl.Run(ctx); err != nil {
			logger.Error("session stopped", "error", err)
		}
	}()

	if len(cfg.Resumes.Paths) > 0 {
		initial, err := resume.ListAll(ctx, files, cfg.Resumes.Paths)
		if err != nil {
			logger.Warn("failed to list configured resumes", "error", err)
		} else if err := ctrl.UploadFiles(initial); err != nil {
			return nil, err
		}
	}

	if cfg.Resumes.Watch != "" {
		watcher := resume.NewDirWatcher(cfg.Resumes.Watch, files, logger)
		go func() {
			err := watcher.Run(ctx, func(found []model.UploadedFile) {
				if err := ctrl.UploadFiles(found); err != nil {
					logger.Debug("watch upload dropped", "error", err)
				}
			})
			if err != nil {
				logger.Error("resume watcher stopped", "dir", cfg.Resumes.Watch, "error", err)
			}
		}()
		logger.Info("watching resumes", "dir", cfg.Resumes.Watch)
	}

	return &sessionDeps{
		ctrl:     ctrl,
		files:    files,
		notifier: setupNotifier(cfg, httpClient, logger),
	}, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
