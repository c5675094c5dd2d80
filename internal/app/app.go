// Package app wires configuration, engine, driver and reporting into a single
// benchmark run.
package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/arkilian/readbench/internal/bench"
	"github.com/arkilian/readbench/internal/config"
	"github.com/arkilian/readbench/internal/engine"
	benchErrors "github.com/arkilian/readbench/internal/errors"
	"github.com/arkilian/readbench/internal/observability"
	"github.com/arkilian/readbench/internal/report"
	"github.com/arkilian/readbench/internal/server"
	"github.com/arkilian/readbench/internal/storage"
)

const publishTimeout = 30 * time.Second

// App manages one benchmark run.
type App struct {
	cfg    *config.Config
	stdout io.Writer

	// Shared resources
	engine        engine.Engine
	metrics       *observability.Metrics
	metricsServer *server.MetricsServer
	storage       storage.ObjectStorage
}

// New creates a new App with the given configuration. Level summaries are
// written to stdout.
func New(cfg *config.Config, stdout io.Writer) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg.Engine, engine.Options{
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		stdout:  stdout,
		engine:  eng,
		metrics: observability.NewMetrics(eng.Name()),
	}, nil
}

// Metrics returns the collectors fed by the run.
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Run prepares the dataset, sweeps levels until one fails or the ceiling is
// reached, and writes and publishes the run report when configured. An early
// halt is a normal outcome; only setup, report and publish failures are
// returned as errors.
func (a *App) Run(ctx context.Context) (*report.RunReport, error) {
	if err := a.initSharedResources(ctx); err != nil {
		return nil, err
	}
	defer a.stopMetricsServer()

	started := time.Now()

	log.Printf("Preparing dataset: engine=%s, path=%s", a.engine.Name(), a.cfg.Path)
	if err := a.engine.PrepareDataset(ctx, a.cfg.Path); err != nil {
		return nil, err
	}

	checksum, rows, err := a.verifyDataset(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Dataset ready: %d rows, checksum=%08x", rows, checksum)

	run := report.NewRunReport(report.Meta{
		Engine:          a.engine.Name(),
		Path:            a.cfg.Path,
		MaxConnections:  a.cfg.MaxConnections,
		Step:            a.cfg.Step,
		DatasetChecksum: checksum,
		DatasetRows:     rows,
	}, started)

	driver := bench.NewDriver(a.engine, report.NewTextReporter(a.stdout), a.metrics)
	sweep := driver.Sweep(ctx, bench.Options{
		Path:           a.cfg.Path,
		MaxConnections: a.cfg.MaxConnections,
		Step:           a.cfg.Step,
	})
	run.Complete(sweep, time.Now())

	if sweep.Interrupted {
		log.Printf("Sweep interrupted after %d levels", len(sweep.Levels))
	}
	log.Printf("Sweep finished: levels=%d, max_sustained=%d, halted=%t",
		len(sweep.Levels), run.MaxSustained, sweep.Halted)

	if err := a.writeReport(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// initSharedResources initializes report storage and the metrics endpoint.
func (a *App) initSharedResources(ctx context.Context) error {
	var err error

	switch a.cfg.Storage.Type {
	case config.StorageNone:
	case config.StorageLocal:
		a.storage, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case config.StorageS3:
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		s3Cfg.UsePathStyle = a.cfg.Storage.S3.UsePathStyle
		a.storage, err = storage.NewS3Storage(ctx, a.cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return benchErrors.NewConfigError(benchErrors.CodeInvalidConfig,
			fmt.Sprintf("unsupported storage type: %s", a.cfg.Storage.Type))
	}
	if err != nil {
		return benchErrors.NewStorageError(benchErrors.CodeUploadFailed, "failed to initialize storage", err)
	}
	if a.storage != nil {
		log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)
		if a.cfg.Storage.Type == config.StorageS3 {
			log.Printf("S3 Config: Bucket=%s, Region=%s, Endpoint=%s",
				a.cfg.Storage.S3.Bucket, a.cfg.Storage.S3.Region, a.cfg.Storage.S3.Endpoint)
		}
	}

	if a.cfg.Metrics.Addr != "" {
		srv := server.NewMetricsServer(a.metrics.Handler())
		if err := srv.Start(a.cfg.Metrics.Addr); err != nil {
			return benchErrors.Wrap(benchErrors.ErrCategoryInternal, benchErrors.CodeMetricsFailed,
				"failed to start metrics server", err)
		}
		a.metricsServer = srv
		log.Printf("Metrics server listening on %s", srv.Addr())
	}

	return nil
}

// verifyDataset reads the seeded table back and checks it against the
// sample rows.
func (a *App) verifyDataset(ctx context.Context) (uint32, int, error) {
	checksum, rows, err := a.engine.Checksum(ctx, a.cfg.Path)
	if err != nil {
		return 0, 0, benchErrors.NewSetupError(benchErrors.CodeVerifyFailed, "failed to read back dataset", err)
	}

	want := engine.ChecksumRows(engine.SampleRows)
	if rows != len(engine.SampleRows) || checksum != want {
		return 0, 0, benchErrors.NewSetupError(benchErrors.CodeVerifyFailed,
			fmt.Sprintf("dataset mismatch: %d rows with checksum %08x, want %d rows with checksum %08x",
				rows, checksum, len(engine.SampleRows), want), nil)
	}
	return checksum, rows, nil
}

// writeReport writes the run report locally and publishes it when storage
// is configured.
func (a *App) writeReport(ctx context.Context, run *report.RunReport) error {
	if a.cfg.Report.Path == "" {
		return nil
	}

	written, err := run.WriteFile(a.cfg.Report.Path, a.cfg.Report.Compress)
	if err != nil {
		return benchErrors.NewInternalError("failed to write run report", err)
	}
	log.Printf("Run report written: %s", written)

	if !a.cfg.PublishReports() || a.storage == nil {
		return nil
	}

	// An interrupted sweep still publishes what it measured.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	objectPath := run.ObjectPath(a.cfg.Report.Compress)
	if err := storage.Publish(ctx, a.storage, written, objectPath); err != nil {
		return err
	}
	log.Printf("Run report published: type=%s, object=%s", a.cfg.Storage.Type, objectPath)
	return nil
}

func (a *App) stopMetricsServer() {
	if a.metricsServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}
	a.metricsServer = nil
}
