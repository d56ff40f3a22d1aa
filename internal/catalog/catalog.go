// Package catalog provides the read-only job description catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/amishk599/screener/internal/config"
	"github.com/amishk599/screener/internal/filter"
	"github.com/amishk599/screener/internal/model"
	"github.com/amishk599/screener/internal/retry"
)

// New builds the job source described by cfg. Board sources are wrapped with
// retry; every source is wrapped with the title filter. The returned close
// func releases the SQLite handle and is a no-op for other sources.
func New(cfg config.CatalogConfig, client *http.Client, logger *slog.Logger) (model.JobSource, func() error, error) {
	var (
		src     model.JobSource
		closeFn = func() error { return nil }
	)

	switch cfg.Source {
	case "", "static":
		src = NewStaticSource(cfg.Jobs)
	case "sqlite":
		s, err := NewSQLiteSource(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.SeedIfEmpty(context.Background(), cfg.Jobs); err != nil {
			s.Close()
			return nil, nil, err
		}
		src, closeFn = s, s.Close
	case "greenhouse":
		src = retry.NewRetrySource(NewGreenhouseSource(cfg.BoardToken, cfg.Company, client),
			cfg.FetchRetries, cfg.RetryDelay, logger.With("source", "greenhouse"))
	case "lever":
		src = retry.NewRetrySource(NewLeverSource(cfg.BoardToken, cfg.Company, client),
			cfg.FetchRetries, cfg.RetryDelay, logger.With("source", "lever"))
	case "ashby":
		src = retry.NewRetrySource(NewAshbySource(cfg.BoardToken, cfg.Company, client),
			cfg.FetchRetries, cfg.RetryDelay, logger.With("source", "ashby"))
	default:
		return nil, nil, fmt.Errorf("unsupported catalog source %q", cfg.Source)
	}

	if len(cfg.TitleKeywords) > 0 || len(cfg.ExcludeTitles) > 0 {
		src = &FilteredSource{inner: src, filter: filter.NewTitleFilter(cfg.TitleKeywords, cfg.ExcludeTitles)}
	}
	return src, closeFn, nil
}

// FilteredSource drops catalog entries the filter rejects, keeping order.
type FilteredSource struct {
	inner  model.JobSource
	filter model.JobFilter
}

// NewFilteredSource wraps inner with f.
func NewFilteredSource(inner model.JobSource, f model.JobFilter) *FilteredSource {
	return &FilteredSource{inner: inner, filter: f}
}

// Jobs implements model.JobSource.
func (s *FilteredSource) Jobs(ctx context.Context) ([]model.JobDescription, error) {
	jobs, err := s.inner.Jobs(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(s.filter, jobs), nil
}
