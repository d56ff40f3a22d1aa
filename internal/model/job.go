package model

import "context"

// JobDescription is one entry of the read-only job catalog.
type JobDescription struct {
	ID          string `json:"id"`                    // catalog identifier
	Title       string `json:"title"`                 // display title
	Company     string `json:"company,omitempty"`     // hiring company, if known
	Location    string `json:"location,omitempty"`    // location string
	Description string `json:"description,omitempty"` // plain-text body, optional
	URL         string `json:"url,omitempty"`         // posting link
	Source      string `json:"source,omitempty"`      // catalog source name
}

// JobSource returns the ordered job catalog. Queried once at load.
type JobSource interface {
	Jobs(ctx context.Context) ([]JobDescription, error)
}

// JobFilter decides whether a catalog entry is offered to the user.
type JobFilter interface {
	Match(job JobDescription) bool
}

// FindJob returns the catalog entry with the given id.
func FindJob(jobs []JobDescription, id string) (JobDescription, bool) {
	for _, j := range jobs {
		if j.ID == id {
			return j, true
		}
	}
	return JobDescription{}, false
}
