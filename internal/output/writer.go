// Package output persists batch outcomes to a CSV artifact.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ugrc/geocode-cli/internal/models"
)

// columns defines the ordered artifact columns. score, x and y are empty for
// non-success rows; message is empty for success rows.
var columns = []string{
	"id",
	"score",
	"x",
	"y",
	"locator",
	"match_address",
	"input_address",
	"standardized_address",
	"address_grid",
	"message",
}

// Writer appends one record per processed row to a CSV artifact. Every Write
// flushes, so a run that aborts mid-batch still leaves a valid, truncated but
// parseable file behind.
type Writer struct {
	file   *os.File
	writer *csv.Writer
	path   string
	closed bool
}

// NewWriter creates a timestamped artifact in dir and writes the header row.
func NewWriter(dir string) (*Writer, error) {
	path := filepath.Join(dir, fmt.Sprintf("geocoding_results_%d.csv", time.Now().Unix()))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create result artifact: %w", err)
	}

	writer := csv.NewWriter(file)
	if err = writer.Write(columns); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write artifact header: %w", err)
	}

	writer.Flush()
	if err = writer.Error(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to flush artifact header: %w", err)
	}

	return &Writer{file: file, writer: writer, path: path}, nil
}

// Path returns the artifact's location on disk.
func (w *Writer) Path() string {
	return w.path
}

// Write appends one outcome record and flushes it to disk.
func (w *Writer) Write(outcome models.Outcome) error {
	record := make([]string, len(columns))
	record[0] = outcome.ID

	if outcome.Candidate != nil {
		record[1] = strconv.FormatFloat(outcome.Candidate.Score, 'f', -1, 64)
		record[2] = strconv.FormatFloat(outcome.Candidate.X, 'f', -1, 64)
		record[3] = strconv.FormatFloat(outcome.Candidate.Y, 'f', -1, 64)
		record[4] = outcome.Candidate.Locator
		record[5] = outcome.Candidate.MatchAddress
		record[6] = outcome.Candidate.InputAddress
		record[7] = outcome.Candidate.StandardizedAddress
		record[8] = outcome.Candidate.AddressGrid
	}

	record[9] = outcome.Message

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write result row: %w", err)
	}

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush result row: %w", err)
	}

	return nil
}

// Close flushes and closes the artifact. Idempotent: a second call is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.writer.Flush()
	flushErr := w.writer.Error()

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close result artifact: %w", err)
	}

	if flushErr != nil {
		return fmt.Errorf("failed to flush result artifact: %w", flushErr)
	}

	return nil
}
