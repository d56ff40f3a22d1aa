package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/screener/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	Content     string             `json:"content"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseSource lists open postings of a Greenhouse board as job descriptions.
type GreenhouseSource struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseSource creates a source for a Greenhouse board.
func NewGreenhouseSource(boardToken string, companyName string, client *http.Client) *GreenhouseSource {
	return &GreenhouseSource{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

// Jobs fetches the board with full content so the analyzer has a description.
func (s *GreenhouseSource) Jobs(ctx context.Context) ([]model.JobDescription, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, s.boardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.boardToken, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.boardToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", s.boardToken, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.boardToken, err)
	}

	jobs := make([]model.JobDescription, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		jobs = append(jobs, model.JobDescription{
			ID:          fmt.Sprintf("%d", gj.ID),
			Title:       gj.Title,
			Company:     s.companyName,
			Location:    gj.Location.Name,
			Description: extractText(gj.Content),
			URL:         gj.AbsoluteURL,
			Source:      "greenhouse",
		})
	}

	return jobs, nil
}
