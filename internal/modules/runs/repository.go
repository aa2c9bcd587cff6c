package runs

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository handles run-history persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a run-history repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "runs").Logger(),
	}
}

// Create inserts a new run row, assigning its ID and creation time.
func (r *Repository) Create(run *Run) (*Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO simulation_runs (
			id, created_at, months, paths, seed, config_json,
			success_rate, median_net_worth, pessimistic_p5, optimistic_p95
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(
		query,
		run.ID,
		run.CreatedAt.Format(timeLayout),
		run.Months,
		run.Paths,
		run.Seed,
		run.ConfigJSON,
		run.SuccessRate,
		run.MedianNetWorth,
		run.Pessimistic,
		run.Optimistic,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// GetRecent returns the most recent runs, newest first.
func (r *Repository) GetRecent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, created_at, months, paths, seed, config_json,
		       success_rate, median_net_worth, pessimistic_p5, optimistic_p95
		FROM simulation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(
			&run.ID,
			&createdAt,
			&run.Months,
			&run.Paths,
			&run.Seed,
			&run.ConfigJSON,
			&run.SuccessRate,
			&run.MedianNetWorth,
			&run.Pessimistic,
			&run.Optimistic,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// DeleteOlderThan removes runs created before the cutoff and returns the
// number of rows deleted.
func (r *Repository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM simulation_runs WHERE created_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Pruned old runs")
	}

	return deleted, nil
}
