package repository_test

import (
	"log/slog"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ugrc/geocode-cli/internal/models"
	"github.com/ugrc/geocode-cli/internal/repository"
)

const insertOutcomeQuery = `
		INSERT INTO geocode_results (run_id, row_id, status, score, x, y, match_address, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

const runSummaryQuery = `
		SELECT status, COUNT(*)
		FROM geocode_results
		WHERE run_id = $1
		GROUP BY status;
	`

func TestSaveOutcome(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success - matched outcome", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		outcome := models.Outcome{
			ID:     "42",
			Status: models.StatusMatched,
			Candidate: &models.Candidate{
				X: 425046.4843, Y: 4514424.973, Score: 100, MatchAddress: "UTAH STATE CAPITOL",
			},
		}

		mock.ExpectExec(regexp.QuoteMeta(insertOutcomeQuery)).
			WithArgs("run-1", "42", "matched",
				&outcome.Candidate.Score, &outcome.Candidate.X, &outcome.Candidate.Y,
				"UTAH STATE CAPITOL", "").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.SaveOutcome(ctx, "run-1", outcome))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - failed outcome stores null coordinates", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		outcome := models.Outcome{ID: "7", Status: models.StatusNotFound, Message: "no candidates"}

		mock.ExpectExec(regexp.QuoteMeta(insertOutcomeQuery)).
			WithArgs("run-1", "7", "not_found",
				(*float64)(nil), (*float64)(nil), (*float64)(nil), "", "no candidates").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.SaveOutcome(ctx, "run-1", outcome))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(insertOutcomeQuery)).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(assert.AnError)

		err = repo.SaveOutcome(ctx, "run-1", models.Outcome{ID: "1", Status: models.StatusError})

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to insert geocode result")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunSummary(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(runSummaryQuery)).
			WithArgs("run-1").
			WillReturnRows(
				pgxmock.NewRows([]string{"status", "count"}).
					AddRow("matched", 12).
					AddRow("not_found", 3),
			)

		summary, err := repo.RunSummary(ctx, "run-1")

		require.NoError(t, err)
		assert.Equal(t, map[models.Status]int{
			models.StatusMatched:  12,
			models.StatusNotFound: 3,
		}, summary)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(runSummaryQuery)).
			WithArgs("run-1").
			WillReturnError(assert.AnError)

		summary, err := repo.RunSummary(ctx, "run-1")

		require.Nil(t, summary)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to query run summary")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(runSummaryQuery)).
			WithArgs("run-1").
			WillReturnRows(
				pgxmock.NewRows([]string{"status", "count"}).AddRow("matched", "not_a_number"),
			)

		summary, err := repo.RunSummary(ctx, "run-1")

		require.Nil(t, summary)
		require.Error(t, err)
		require.ErrorContains(t, err, "failed to scan run summary row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
