package catalog

import (
	"context"

	"github.com/amishk599/screener/internal/model"
)

// StaticSource serves a fixed list, typically from the config file.
type StaticSource struct {
	jobs []model.JobDescription
}

// NewStaticSource copies jobs and tags entries without a source as "static".
func NewStaticSource(jobs []model.JobDescription) *StaticSource {
	cp := make([]model.JobDescription, len(jobs))
	for i, j := range jobs {
		if j.Source == "" {
			j.Source = "static"
		}
		cp[i] = j
	}
	return &StaticSource{jobs: cp}
}

// Jobs returns a copy of the list.
func (s *StaticSource) Jobs(_ context.Context) ([]model.JobDescription, error) {
	out := make([]model.JobDescription, len(s.jobs))
	copy(out, s.jobs)
	return out, nil
}
