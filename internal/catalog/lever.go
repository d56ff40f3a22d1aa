package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/screener/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever posting.
type leverCategories struct {
	Team         string   `json:"team"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverList is one titled section of a Lever posting body.
type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"`
}

// leverJob represents a single posting in the Lever API response.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Description      string          `json:"description"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Lists            []leverList     `json:"lists"`
	Categories       leverCategories `json:"categories"`
	HostedURL        string          `json:"hostedUrl"`
}

// LeverSource lists open postings of a Lever company as job descriptions.
type LeverSource struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverSource creates a source for a Lever company.
func NewLeverSource(companySlug string, companyName string, client *http.Client) *LeverSource {
	return &LeverSource{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

// Jobs fetches every posting of the company.
func (s *LeverSource) Jobs(ctx context.Context) ([]model.JobDescription, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, s.companySlug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", s.companySlug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", s.companySlug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("lever fetch for %s: unexpected status %d", s.companySlug, resp.StatusCode),
		}
	}

	var leverJobs []leverJob
	if err := json.NewDecoder(resp.Body).Decode(&leverJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", s.companySlug, err)
	}

	jobs := make([]model.JobDescription, 0, len(leverJobs))
	for _, lj := range leverJobs {
		// Prefer allLocations if available.
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		jobs = append(jobs, model.JobDescription{
			ID:          lj.ID,
			Title:       lj.Text,
			Company:     s.companyName,
			Location:    location,
			Description: leverDescription(lj),
			URL:         lj.HostedURL,
			Source:      "lever",
		})
	}

	return jobs, nil
}

// leverDescription joins the intro with the requirement lists.
func leverDescription(lj leverJob) string {
	intro := lj.DescriptionPlain
	if intro == "" {
		intro = extractText(lj.Description)
	}
	parts := []string{strings.TrimSpace(intro)}
	for _, l := range lj.Lists {
		if body := extractText(l.Content); body != "" {
			parts = append(parts, l.Text+": "+body)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
