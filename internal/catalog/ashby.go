package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/screener/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	JobURL           string `json:"jobUrl"`
	DescriptionPlain string `json:"descriptionPlain"`
	DescriptionHTML  string `json:"descriptionHtml"`
	IsListed         bool   `json:"isListed"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbySource lists the listed postings of an Ashby job board.
type AshbySource struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewAshbySource creates a source for an Ashby job board.
func NewAshbySource(boardToken string, companyName string, client *http.Client) *AshbySource {
	return &AshbySource{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

// Jobs implements model.JobSource. Unlisted postings are skipped.
func (s *AshbySource) Jobs(ctx context.Context) ([]model.JobDescription, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, s.boardToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", s.boardToken, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", s.boardToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("ashby fetch for %s: unexpected status %d", s.boardToken, resp.StatusCode),
		}
	}

	var ashbyResp ashbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ashbyResp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", s.boardToken, err)
	}

	jobs := make([]model.JobDescription, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}
		id := aj.ID
		if id == "" {
			id = aj.JobURL
		}
		desc := aj.DescriptionPlain
		if desc == "" {
			desc = extractText(aj.DescriptionHTML)
		}
		jobs = append(jobs, model.JobDescription{
			ID:          id,
			Title:       aj.Title,
			Company:     s.companyName,
			Location:    aj.Location,
			Description: desc,
			URL:         aj.JobURL,
			Source:      "ashby",
		})
	}

	return jobs, nil
}
