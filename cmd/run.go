package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ugrc/geocode-cli/internal/config"
	"github.com/ugrc/geocode-cli/internal/engine"
	"github.com/ugrc/geocode-cli/internal/geocoding"
	"github.com/ugrc/geocode-cli/internal/metrics"
	"github.com/ugrc/geocode-cli/internal/models"
	"github.com/ugrc/geocode-cli/internal/repository"
)

var (
	runInput  string
	runOutput string
	runAPIKey string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Geocode a CSV of address rows into a result artifact",
	Long: `Reads rows of (id, street, zone) from the input CSV, geocodes them one at a
time in input order, and writes one artifact record per row. The input is
streamed, so arbitrarily large files are fine. An optional header row with an
"id" first column is skipped.

Examples:
  # Geocode addresses.csv into the current directory
  geocode-cli run --input addresses.csv

  # Write the artifact somewhere else and override the configured key
  geocode-cli run --input addresses.csv --output /tmp/results --api-key agrc-example`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg := config.MustLoad()
		logger := setupLogger(cfg.Env)

		apiKey := runAPIKey
		if apiKey == "" {
			apiKey = cfg.APIKey
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		appMetrics := metrics.NewMetrics(reg)

		if cfg.MetricsPort > 0 {
			go startMonitoringServer(ctx, logger, reg, cfg.MetricsPort)
		}

		var repo repository.Interface
		if cfg.Database.Host != "" {
			dtb, err := repository.NewDatabase(
				cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
			)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer dtb.Close()

			repo = repository.NewRepository(dtb, logger)
		}

		source, err := openRows(runInput)
		if err != nil {
			return err
		}
		defer source.Close()

		client := geocoding.NewClient(cfg.BaseURL, apiKey, cfg.RateLimit, logger)
		eng := engine.NewEngine(logger, client, appMetrics, repo, cfg.FailThreshold)

		path, err := eng.Execute(ctx, apiKey, source.Rows(), runOutput)
		if err != nil {
			return err
		}

		if readErr := source.Err(); readErr != nil {
			logger.WarnContext(ctx, "Input ended early", "error", readErr)
		}

		if repo != nil {
			summary, sumErr := repo.RunSummary(ctx, path)
			if sumErr != nil {
				logger.WarnContext(ctx, "Could not read run summary", "error", sumErr)
			} else {
				logger.InfoContext(ctx, "Run summary", "by_status", summary)
			}
		}

		cmd.Println(path)

		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "CSV file of (id, street, zone) rows")
	runCmd.Flags().StringVar(&runOutput, "output", ".", "directory the result artifact is written to")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "API key, overrides GEOCODE_API_KEY")
	_ = runCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(runCmd)
}

// rowSource streams (id, street, zone) rows out of a CSV file. Any read error
// ends the sequence and is reported through Err, because an iter.Seq cannot
// yield one itself.
type rowSource struct {
	file    *os.File
	reader  *csv.Reader
	readErr error
}

func openRows(path string) (*rowSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 3

	return &rowSource{file: file, reader: reader}, nil
}

// Rows returns a lazy sequence over the file; rows are read as they are pulled.
func (s *rowSource) Rows() iter.Seq[models.Row] {
	return func(yield func(models.Row) bool) {
		first := true

		for {
			record, err := s.reader.Read()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.readErr = err
				}
				return
			}

			// Tolerate an exported header row.
			if first && strings.EqualFold(record[0], "id") {
				first = false
				continue
			}
			first = false

			if !yield(models.Row{ID: record[0], Street: record[1], Zone: record[2]}) {
				return
			}
		}
	}
}

// Err reports the read error that ended the sequence, if any.
func (s *rowSource) Err() error {
	return s.readErr
}

func (s *rowSource) Close() error {
	return s.file.Close()
}

// startMonitoringServer starts an HTTP server that provides health check and
// metrics endpoints for long-running batches. It listens on the specified
// port and logs the server's status and any errors encountered.
func startMonitoringServer(ctx context.Context, log *slog.Logger, reg *prometheus.Registry, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}
