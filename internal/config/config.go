package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/screener/internal/model"
)

// Config is the root configuration for screener.
type Config struct {
	Catalog      CatalogConfig
	Resumes      ResumeConfig
	AI           AIConfig
	Chat         ChatConfig
	Notification NotificationConfig
	Server       ServerConfig
}

// CatalogConfig selects where the job catalog comes from.
type CatalogConfig struct {
	Source        string                 // "static", "sqlite", "greenhouse", "lever" or "ashby"
	Jobs          []model.JobDescription // static entries
	SQLitePath    string                 // required for "sqlite"
	BoardToken    string                 // required for board sources
	Company       string                 // display name for board sources
	TitleKeywords []string               // empty = offer every job
	ExcludeTitles []string
	FetchRetries  int
	RetryDelay    time.Duration
}

// ResumeConfig controls how resume files are picked.
type ResumeConfig struct {
	Paths  []string // initial upload: files, globs or directories
	Watch  string   // directory whose listing replaces the upload list on change
	Accept []string // extensions hinted to the user; never enforced at upload
	S3     S3Config
}

// S3Config points at an S3-compatible bucket used by s3:// locations.
type S3Config struct {
	Region    string
	Endpoint  string // custom endpoint for R2/MinIO; empty = AWS
	AccessKey string
	SecretKey string
}

// Enabled reports whether s3:// locations can be resolved.
func (s S3Config) Enabled() bool {
	return s.Region != "" || s.Endpoint != ""
}

// AIConfig controls the analysis and chat backends. When disabled, the
// built-in mock analyzer and assistant are used.
type AIConfig struct {
	Enabled  bool
	Provider string        // "openai" or "gemini"
	BaseURL  string        // openai only, defaults to https://api.openai.com/v1
	Model    string        // model identifier, e.g. "gpt-4o-mini"
	APIKey   string        // expanded from env var by Load
	Timeout  time.Duration // per-request timeout
	MinDelay time.Duration // minimum gap between requests to the same backend
}

// ChatConfig controls the mock assistant.
type ChatConfig struct {
	ReplyDelay time.Duration
}

// NotificationConfig controls where shared analyses go.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// DefaultJobs is the catalog used when no source is configured.
var DefaultJobs = []model.JobDescription{
	{ID: "1", Title: "Senior Software Engineer"},
	{ID: "2", Title: "Product Manager"},
	{ID: "3", Title: "UX Designer"},
	{ID: "4", Title: "Data Scientist"},
}

// DefaultAccept lists the resume extensions hinted by the file prompt.
var DefaultAccept = []string{".pdf", ".doc", ".docx"}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Catalog      rawCatalogConfig   `yaml:"catalog"`
	Resumes      rawResumeConfig    `yaml:"resumes"`
	AI           rawAIConfig        `yaml:"ai"`
	Chat         rawChatConfig      `yaml:"chat"`
	Notification NotificationConfig `yaml:"notification"`
	Server       ServerConfig       `yaml:"server"`
}

type rawCatalogConfig struct {
	Source        string       `yaml:"source"`
	Jobs          []rawJobSpec `yaml:"jobs"`
	SQLitePath    string       `yaml:"sqlite_path"`
	BoardToken    string       `yaml:"board_token"`
	Company       string       `yaml:"company"`
	TitleKeywords []string     `yaml:"title_keywords"`
	ExcludeTitles []string     `yaml:"exclude_titles"`
	FetchRetries  *int         `yaml:"fetch_retries"`
	RetryDelay    string       `yaml:"retry_delay"`
}

type rawJobSpec struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

type rawResumeConfig struct {
	Paths  []string    `yaml:"paths"`
	Watch  string      `yaml:"watch"`
	Accept []string    `yaml:"accept"`
	S3     rawS3Config `yaml:"s3"`
}

type rawS3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
	MinDelay string `yaml:"min_delay"`
}

type rawChatConfig struct {
	ReplyDelay string `yaml:"reply_delay"`
}

// Default returns the configuration used when no config file exists:
// the built-in catalog, mock AI and log notifications.
func Default() *Config {
	cfg, err := parse(rawConfig{})
	if err != nil {
		// The zero raw config only uses defaults, which always parse.
		panic(err)
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := parse(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(raw rawConfig) (*Config, error) {
	var err error

	source := strings.ToLower(raw.Catalog.Source)
	if source == "" {
		source = "static"
	}

	jobs := make([]model.JobDescription, 0, len(raw.Catalog.Jobs))
	for _, j := range raw.Catalog.Jobs {
		jobs = append(jobs, model.JobDescription{
			ID:          j.ID,
			Title:       j.Title,
			Company:     j.Company,
			Location:    j.Location,
			Description: j.Description,
			URL:         j.URL,
			Source:      "static",
		})
	}
	if source == "static" && len(jobs) == 0 {
		jobs = append(jobs, DefaultJobs...)
	}

	fetchRetries := 2 // default
	if raw.Catalog.FetchRetries != nil {
		fetchRetries = *raw.Catalog.FetchRetries
	}

	retryDelay := 5 * time.Second // default
	if raw.Catalog.RetryDelay != "" {
		retryDelay, err = time.ParseDuration(raw.Catalog.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("parse catalog.retry_delay %q: %w", raw.Catalog.RetryDelay, err)
		}
	}

	accept := raw.Resumes.Accept
	if len(accept) == 0 {
		accept = DefaultAccept
	}

	aiTimeout := 60 * time.Second // default
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiMinDelay := time.Duration(0)
	if raw.AI.MinDelay != "" {
		aiMinDelay, err = time.ParseDuration(raw.AI.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse ai.min_delay %q: %w", raw.AI.MinDelay, err)
		}
	}

	provider := strings.ToLower(raw.AI.Provider)
	if provider == "" {
		provider = "openai"
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" && provider == "openai" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	aiModel := raw.AI.Model
	if aiModel == "" {
		switch provider {
		case "openai":
			aiModel = defaultOpenAIModel
		case "gemini":
			aiModel = defaultGeminiModel
		}
	}

	replyDelay := 1 * time.Second // default, matches the mock assistant
	if raw.Chat.ReplyDelay != "" {
		replyDelay, err = time.ParseDuration(raw.Chat.ReplyDelay)
		if err != nil {
			return nil, fmt.Errorf("parse chat.reply_delay %q: %w", raw.Chat.ReplyDelay, err)
		}
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}

	server := raw.Server
	if server.Addr == "" {
		server.Addr = "127.0.0.1:8080"
	}

	return &Config{
		Catalog: CatalogConfig{
			Source:        source,
			Jobs:          jobs,
			SQLitePath:    raw.Catalog.SQLitePath,
			BoardToken:    raw.Catalog.BoardToken,
			Company:       raw.Catalog.Company,
			TitleKeywords: raw.Catalog.TitleKeywords,
			ExcludeTitles: raw.Catalog.ExcludeTitles,
			FetchRetries:  fetchRetries,
			RetryDelay:    retryDelay,
		},
		Resumes: ResumeConfig{
			Paths:  raw.Resumes.Paths,
			Watch:  raw.Resumes.Watch,
			Accept: accept,
			S3: S3Config{
				Region:    raw.Resumes.S3.Region,
				Endpoint:  raw.Resumes.S3.Endpoint,
				AccessKey: raw.Resumes.S3.AccessKey,
				SecretKey: raw.Resumes.S3.SecretKey,
			},
		},
		AI: AIConfig{
			Enabled:  raw.AI.Enabled,
			Provider: provider,
			BaseURL:  aiBaseURL,
			Model:    aiModel,
			APIKey:   raw.AI.APIKey,
			Timeout:  aiTimeout,
			MinDelay: aiMinDelay,
		},
		Chat:         ChatConfig{ReplyDelay: replyDelay},
		Notification: notification,
		Server:       server,
	}, nil
}

func validate(cfg *Config) error {
	switch cfg.Catalog.Source {
	case "static":
		seen := make(map[string]bool)
		for _, j := range cfg.Catalog.Jobs {
			if j.ID == "" {
				return fmt.Errorf("catalog.jobs: every job needs an id (title %q)", j.Title)
			}
			if seen[j.ID] {
				return fmt.Errorf("catalog.jobs: duplicate id %q", j.ID)
			}
			seen[j.ID] = true
		}
	case "sqlite":
		if cfg.Catalog.SQLitePath == "" {
			return fmt.Errorf("catalog.sqlite_path is required when source is \"sqlite\"")
		}
	case "greenhouse", "lever", "ashby":
		if cfg.Catalog.BoardToken == "" {
			return fmt.Errorf("catalog.board_token is required when source is %q", cfg.Catalog.Source)
		}
	default:
		return fmt.Errorf("catalog.source %q is not supported", cfg.Catalog.Source)
	}

	if cfg.Catalog.FetchRetries < 0 {
		return fmt.Errorf("catalog.fetch_retries must not be negative, got %d", cfg.Catalog.FetchRetries)
	}

	if cfg.Chat.ReplyDelay < 0 {
		return fmt.Errorf("chat.reply_delay must not be negative, got %v", cfg.Chat.ReplyDelay)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	} else if cfg.Notification.Type != "log" {
		return fmt.Errorf("notification.type %q is not supported", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		switch cfg.AI.Provider {
		case "openai":
			if cfg.AI.BaseURL == "" {
				return fmt.Errorf("ai.base_url is required for the openai provider")
			}
		case "gemini":
		default:
			return fmt.Errorf("ai.provider %q is not supported", cfg.AI.Provider)
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
