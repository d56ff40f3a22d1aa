package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/screener/internal/model"
)

// Ensure SlackNotifier implements model.AnalysisNotifier.
var _ model.AnalysisNotifier = (*SlackNotifier)(nil)

// SlackNotifier posts shared analyses to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the analysis as one Block Kit message. A 429 is retried once
// after the Retry-After delay.
func (s *SlackNotifier) Notify(ctx context.Context, job model.JobDescription, file model.UploadedFile, a model.Analysis) error {
	body, err := json.Marshal(buildPayload(job, file, a))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	if status == http.StatusTooManyRequests {
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return fmt.Errorf("slack retry cancelled: %w", ctx.Err())
		case <-time.After(retryAfter):
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", status)
		}
		s.logger.Info("slack message sent", "candidate", a.Profile.Name, "job", job.Title, "retried", true)
		return nil
	}

	if status != http.StatusOK {
		return fmt.Errorf("slack returned %d", status)
	}
	s.logger.Info("slack message sent", "candidate", a.Profile.Name, "job", job.Title)
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, model.ParseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string          `json:"type"`
	Text      *slackText      `json:"text,omitempty"`
	Fields    []slackText     `json:"fields,omitempty"`
	Accessory *slackAccessory `json:"accessory,omitempty"`
	Elements  []slackElement  `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackAccessory struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
	AltText  string `json:"alt_text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage shares a dummy analysis to verify the integration works.
func SendTestMessage(ctx context.Context, n model.AnalysisNotifier) error {
	job := model.JobDescription{
		ID:    "test-001",
		Title: "Test Notification",
		URL:   "https://example.com/jobs/test",
	}
	file := model.UploadedFile{ID: "test-file", Name: "test-resume.pdf"}
	a := model.Analysis{
		Profile: model.CandidateProfile{
			Name:            "Test Candidate",
			Designation:     "Integration Tester",
			Company:         "Screener",
			YearsExperience: 1,
		},
		SelectionScore: 100,
		RiskScore:      0,
		Feedback:       "Integration verified.",
	}
	return n.Notify(ctx, job, file, a)
}

// scoreBar renders a percentage as ten blocks.
func scoreBar(pct int) string {
	filled := (pct + 5) / 10
	bar := make([]rune, 10)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}

func buildPayload(job model.JobDescription, file model.UploadedFile, a model.Analysis) slackPayload {
	p := a.Profile

	profileText := fmt.Sprintf("*%s*\n%s", p.Name, p.Designation)
	if p.Company != "" {
		profileText += " at " + p.Company
	}
	profileText += fmt.Sprintf("\n%d years experience", p.YearsExperience)

	profile := slackBlock{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: profileText},
	}
	if p.AvatarURL != "" {
		profile.Accessory = &slackAccessory{Type: "image", ImageURL: p.AvatarURL, AltText: p.Name}
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "📋 " + p.Name + ": " + job.Title},
		},
		profile,
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Selection:*\n`%s` %d%%", scoreBar(a.SelectionScore), a.SelectionScore)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Risk:*\n`%s` %d%%", scoreBar(a.RiskScore), a.RiskScore)},
			},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*AI Feedback:*\n" + a.Feedback},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Resume:*\n" + file.Name},
				{Type: "mrkdwn", Text: "*Job ID:*\n" + job.ID},
			},
		},
	}

	if job.URL != "" {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Posting"},
					URL:   job.URL,
					Style: "primary",
				},
			},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	return slackPayload{Blocks: blocks}
}
