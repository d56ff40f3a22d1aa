package filter

import (
	"strings"

	"github.com/amishk599/screener/internal/model"
)

// TitleFilter offers catalog entries whose title contains any of the include
// keywords and none of the exclude keywords. Matching is case-insensitive.
// An empty include list is treated as "match all".
type TitleFilter struct {
	include []string
	exclude []string
}

// NewTitleFilter returns a case-insensitive substring filter over job titles.
func NewTitleFilter(include, exclude []string) *TitleFilter {
	return &TitleFilter{include: include, exclude: exclude}
}

// Match reports whether the job should be offered.
func (f *TitleFilter) Match(job model.JobDescription) bool {
	titleLower := strings.ToLower(job.Title)

	for _, kw := range f.exclude {
		if strings.Contains(titleLower, strings.ToLower(kw)) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}
	for _, kw := range f.include {
		if strings.Contains(titleLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Apply returns the jobs that match, preserving catalog order.
func Apply(f model.JobFilter, jobs []model.JobDescription) []model.JobDescription {
	out := make([]model.JobDescription, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}
