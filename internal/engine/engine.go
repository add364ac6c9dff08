// Package engine runs batches of address rows through the geocoding client
// and records every outcome, successful or not, in the result artifact.
package engine

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/ugrc/geocode-cli/internal/cleansing"
	"github.com/ugrc/geocode-cli/internal/geocoding"
	"github.com/ugrc/geocode-cli/internal/metrics"
	"github.com/ugrc/geocode-cli/internal/models"
	"github.com/ugrc/geocode-cli/internal/output"
	"github.com/ugrc/geocode-cli/internal/repository"
)

// DefaultFailThreshold is the number of consecutive non-success outcomes that
// aborts a run. Continuous, not cumulative: a single match resets the count,
// so sparse bad addresses scattered through a large batch never trip it,
// while a dead key or a service outage does.
const DefaultFailThreshold = 25

// ErrContinuousFailThreshold aborts a run whose failures cluster. The rows
// already processed, including the one that tripped the threshold, remain in
// the artifact.
var ErrContinuousFailThreshold = errors.New("continuous fail threshold exceeded")

// Engine processes rows sequentially: one request in flight, outcomes written
// in input order.
type Engine struct {
	log           *slog.Logger         // Logger for logging engine activities
	client        geocoding.Geocoder   // Client for the remote geocoding service
	metrics       *metrics.Metrics     // Metrics for tracking batch progress
	repo          repository.Interface // Optional outcome persistence, may be nil
	failThreshold int                  // Consecutive failures that abort the run
}

// NewEngine creates a batch engine. repo may be nil when outcome persistence
// is not configured; failThreshold falls back to DefaultFailThreshold when
// not positive.
func NewEngine(
	log *slog.Logger,
	client geocoding.Geocoder,
	appMetrics *metrics.Metrics,
	repo repository.Interface,
	failThreshold int,
) *Engine {
	if failThreshold <= 0 {
		failThreshold = DefaultFailThreshold
	}

	return &Engine{
		log:           log,
		client:        client,
		metrics:       appMetrics,
		repo:          repo,
		failThreshold: failThreshold,
	}
}

// Execute geocodes every row from rows and writes one artifact record per
// row, returning the artifact path. rows is pulled lazily, so it may be an
// unbounded producer.
//
// The key is validated before any row is consumed or any file created. A
// per-row failure is recorded as data and the run continues; the run itself
// fails only on ErrContinuousFailThreshold or an artifact write error, and
// in both cases the rows already written stay on disk.
func (e *Engine) Execute(
	ctx context.Context,
	apiKey string,
	rows iter.Seq[models.Row],
	outputDir string,
) (string, error) {
	if err := geocoding.ValidateAPIKey(apiKey); err != nil {
		return "", err
	}

	writer, err := output.NewWriter(outputDir)
	if err != nil {
		return "", err
	}
	defer writer.Close()

	runID := writer.Path()
	processed := 0
	failures := 0

	e.log.InfoContext(ctx, "Batch started", "artifact", runID, "fail_threshold", e.failThreshold)

	for row := range rows {
		street := cleansing.Street(row.Street)
		zone := cleansing.Zone(row.Zone)

		startTime := time.Now()
		candidate, geocodeErr := e.client.Geocode(ctx, street, zone)
		e.metrics.RequestSeconds.Observe(time.Since(startTime).Seconds())

		outcome := classify(row.ID, candidate, geocodeErr)
		processed++

		if outcome.Status == models.StatusMatched {
			failures = 0
		} else {
			failures++
			e.metrics.APIErrors.Inc()
			e.log.DebugContext(ctx, "Row failed",
				"row", row.ID, "status", outcome.Status, "message", outcome.Message, "failures", failures)
		}

		e.metrics.RowsProcessed.WithLabelValues(string(outcome.Status)).Inc()
		e.metrics.ContinuousFailures.Set(float64(failures))

		// The row is written before the threshold check so the failing row
		// itself is always visible in the artifact.
		if err = writer.Write(outcome); err != nil {
			return "", err
		}

		if e.repo != nil {
			if repoErr := e.repo.SaveOutcome(ctx, runID, outcome); repoErr != nil {
				e.log.ErrorContext(ctx, "Could not persist outcome", "row", row.ID, "error", repoErr)
			}
		}

		if failures >= e.failThreshold {
			e.log.ErrorContext(ctx, "Aborting batch",
				"consecutive_failures", failures, "processed", processed)
			return "", fmt.Errorf("%w: %d consecutive failures after %d rows",
				ErrContinuousFailThreshold, failures, processed)
		}
	}

	if err = writer.Close(); err != nil {
		return "", err
	}

	e.log.InfoContext(ctx, "Batch finished", "processed", processed, "artifact", runID)

	return writer.Path(), nil
}

// classify converts the client's result into the tagged outcome recorded for
// the row. No error crosses the row boundary: everything becomes data.
func classify(id string, candidate *models.Candidate, err error) models.Outcome {
	if err == nil {
		return models.Outcome{ID: id, Status: models.StatusMatched, Candidate: candidate}
	}

	var noCandidate *geocoding.NoCandidateError
	if errors.As(err, &noCandidate) {
		return models.Outcome{ID: id, Status: models.StatusNotFound, Message: noCandidate.Message}
	}

	if errors.Is(err, geocoding.ErrMalformedRequest) {
		return models.Outcome{ID: id, Status: models.StatusBadRequest, Message: err.Error()}
	}

	return models.Outcome{ID: id, Status: models.StatusError, Message: err.Error()}
}
