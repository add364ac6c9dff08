package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ugrc/geocode-cli/internal/models"
)

// Database is the subset of pgxpool.Pool the repository needs, kept small so
// tests can substitute a pgxmock pool.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is the outcome persistence contract consumed by the batch engine.
type Interface interface {
	SaveOutcome(ctx context.Context, runID string, outcome models.Outcome) error
	RunSummary(ctx context.Context, runID string) (map[models.Status]int, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
