package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ugrc/geocode-cli/internal/models"
)

// NewDatabase opens a pgx connection pool and verifies it with a ping.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// SaveOutcome records one processed row for the given run. Coordinate and
// score columns are NULL for non-success outcomes, mirroring the artifact.
func (r *Repository) SaveOutcome(ctx context.Context, runID string, outcome models.Outcome) error {
	query := `
		INSERT INTO geocode_results (run_id, row_id, status, score, x, y, match_address, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	var score, x, y *float64
	var matchAddress string
	if outcome.Candidate != nil {
		score, x, y = &outcome.Candidate.Score, &outcome.Candidate.X, &outcome.Candidate.Y
		matchAddress = outcome.Candidate.MatchAddress
	}

	_, err := r.db.Exec(ctx, query,
		runID, outcome.ID, string(outcome.Status), score, x, y, matchAddress, outcome.Message)
	if err != nil {
		return fmt.Errorf("failed to insert geocode result: %w", err)
	}

	r.log.DebugContext(ctx, "Recorded geocode result", "run", runID, "row", outcome.ID, "status", outcome.Status)

	return nil
}

// RunSummary returns the per-status row counts recorded for one run.
func (r *Repository) RunSummary(ctx context.Context, runID string) (map[models.Status]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM geocode_results
		WHERE run_id = $1
		GROUP BY status;
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summary: %w", err)
	}
	defer rows.Close()

	summary := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var count int
		if errScan := rows.Scan(&status, &count); errScan != nil {
			return nil, fmt.Errorf("failed to scan run summary row: %w", errScan)
		}
		summary[models.Status(status)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return summary, nil
}
