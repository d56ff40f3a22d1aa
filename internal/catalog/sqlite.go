package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amishk599/screener/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads job descriptions from a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource opens (or creates) a SQLite database at dbPath and ensures the
// job_descriptions table exists.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS job_descriptions (
		id          TEXT PRIMARY KEY,
		position    INTEGER NOT NULL DEFAULT 0,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL DEFAULT ''
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating job_descriptions table: %w", err)
	}

	return &SQLiteSource{db: db}, nil
}

// Jobs returns every row ordered by position, then id.
func (s *SQLiteSource) Jobs(ctx context.Context) ([]model.JobDescription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, company, location, description, url
		   FROM job_descriptions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("querying job descriptions: %w", err)
	}
	defer rows.Close()

	var jobs []model.JobDescription
	for rows.Next() {
		j := model.JobDescription{Source: "sqlite"}
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.URL); err != nil {
			return nil, fmt.Errorf("scanning job description: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading job descriptions: %w", err)
	}
	return jobs, nil
}

// Put inserts or replaces jobs, using slice order as position.
func (s *SQLiteSource) Put(ctx context.Context, jobs []model.JobDescription) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO job_descriptions (id, position, title, company, location, description, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, j := range jobs {
		if _, err := stmt.ExecContext(ctx, j.ID, i, j.Title, j.Company, j.Location, j.Description, j.URL); err != nil {
			return fmt.Errorf("storing job %s: %w", j.ID, err)
		}
	}
	return tx.Commit()
}

// IsEmpty returns true if the job_descriptions table has no entries.
func (s *SQLiteSource) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM job_descriptions").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking if catalog is empty: %w", err)
	}
	return count == 0, nil
}

// SeedIfEmpty stores jobs only when the table has no rows yet.
func (s *SQLiteSource) SeedIfEmpty(ctx context.Context, jobs []model.JobDescription) error {
	empty, err := s.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty || len(jobs) == 0 {
		return nil
	}
	return s.Put(ctx, jobs)
}

// Close closes the underlying database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
