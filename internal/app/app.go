// Package app wires ingest, the tide engine, exporters, the run archive and
// the REST server together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/controllers/restserver"
	"github.com/chrissnell/remotetide/internal/export"
	"github.com/chrissnell/remotetide/internal/ingest"
	"github.com/chrissnell/remotetide/internal/storage/sqlite"
	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/config"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
	now    func() time.Time
}

// Report describes one completed processing run
type Report struct {
	RunID      string
	Sources    []string
	Result     *tide.Result
	Statistics []tide.StatRow
	Outputs    []string
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Process reads every input, runs the engine over the merged series and
// writes the configured outputs. A *tide.EmptyInputError means there was
// nothing to process.
func (a *App) Process(ctx context.Context, inputs []string) (*Report, error) {
	pipeline, err := tide.NewPipeline(a.cfg.EngineConfig(), a.logger)
	if err != nil {
		return nil, err
	}

	readers, sources, err := a.readers(inputs)
	if err != nil {
		return nil, err
	}
	if len(readers) == 0 {
		return nil, &tide.EmptyInputError{Reason: "no input files or database configured"}
	}

	// an unreadable source contributes nothing; the run continues without it
	var (
		series []tide.Series
		loaded []string
	)
	for i, reader := range readers {
		s, err := reader.Read(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.logger.Warnf("error processing %s, skipping it: %v", sources[i], err)
			continue
		}
		a.logger.Infof("read %d sample(s) from %s", len(s), sources[i])
		series = append(series, s)
		loaded = append(loaded, sources[i])
	}
	if len(series) == 0 {
		return nil, &tide.EmptyInputError{Sources: len(readers), Reason: "no source could be read"}
	}

	result, err := pipeline.Run(series...)
	if err != nil {
		return nil, err
	}

	table := export.NewTable(result, a.cfg.Inputs.ValueColumn, a.lunarRows(result)...)
	report := &Report{
		Sources:    loaded,
		Result:     result,
		Statistics: table.Statistics,
	}

	for _, w := range a.writers() {
		if err := w.writer.Write(ctx, table); err != nil {
			return nil, fmt.Errorf("error writing %s: %w", w.path, err)
		}
		a.logger.Infof("wrote %s", w.path)
		report.Outputs = append(report.Outputs, w.path)
	}

	if a.cfg.Archive.Path != "" {
		report.RunID, err = a.archive(ctx, report, pipeline.Config())
		if err != nil {
			return nil, err
		}
	}

	a.logger.Infow("processing complete",
		"samples", len(result.Series),
		"peaks", len(result.Extrema.Peaks),
		"troughs", len(result.Extrema.Troughs),
		"filter", result.FilterName,
		"run_id", report.RunID)

	return report, nil
}

// Serve runs the REST server over the run archive and blocks until a
// shutdown signal arrives or ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	if a.cfg.Archive.Path == "" {
		return errors.New("serving requires an archive path")
	}

	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	archive, err := sqlite.Open(ctx, a.cfg.Archive.Path, a.logger)
	if err != nil {
		return err
	}
	defer archive.Close()

	ctrl, err := restserver.NewController(ctx, &wg, archive, a.cfg.RESTServer, a.logger)
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	a.logger.Info("Application started successfully")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	cancel()

	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}

// readers builds one reader per input path plus the database reader when
// one is configured
func (a *App) readers(inputs []string) ([]ingest.Reader, []string, error) {
	opts, err := a.ingestOptions()
	if err != nil {
		return nil, nil, err
	}

	var (
		readers []ingest.Reader
		sources []string
	)
	for _, path := range inputs {
		r, err := ingest.ForPath(path, opts, a.logger)
		if err != nil {
			return nil, nil, err
		}
		readers = append(readers, r)
		sources = append(sources, path)
	}

	if ts := a.cfg.TimescaleDB; ts != nil && ts.ConnectionString != "" {
		tsOpts, err := timescaleOptions(ts)
		if err != nil {
			return nil, nil, err
		}
		readers = append(readers, ingest.NewTimescaleReader(tsOpts, a.logger))
		sources = append(sources, "timescaledb:"+ts.Table)
	}

	return readers, sources, nil
}

func (a *App) ingestOptions() (ingest.Options, error) {
	in := a.cfg.Inputs
	opts := ingest.Options{
		Sheet:       in.Sheet,
		HeaderRow:   in.HeaderRow,
		TimeColumn:  in.TimeColumn,
		ValueColumn: in.ValueColumn,
		TimeFormat:  in.TimeFormat,
	}
	if in.Location != "" {
		loc, err := time.LoadLocation(in.Location)
		if err != nil {
			return opts, fmt.Errorf("invalid inputs.location %q: %w", in.Location, err)
		}
		opts.Location = loc
	}
	return opts, nil
}

func timescaleOptions(ts *config.TimescaleDBData) (ingest.TimescaleOptions, error) {
	opts := ingest.TimescaleOptions{
		ConnectionString: ts.ConnectionString,
		Table:            ts.Table,
		TimeColumn:       ts.TimeColumn,
		ValueColumn:      ts.ValueColumn,
		StationColumn:    ts.StationColumn,
		Station:          ts.Station,
	}

	var err error
	if ts.Start != "" {
		if opts.Start, err = time.Parse(time.RFC3339, ts.Start); err != nil {
			return opts, fmt.Errorf("invalid timescaledb.start: %w", err)
		}
	}
	if ts.End != "" {
		if opts.End, err = time.Parse(time.RFC3339, ts.End); err != nil {
			return opts, fmt.Errorf("invalid timescaledb.end: %w", err)
		}
	}
	return opts, nil
}

type namedWriter struct {
	path   string
	writer export.Writer
}

func (a *App) writers() []namedWriter {
	var writers []namedWriter
	out := a.cfg.Output
	if out.XLSXPath != "" {
		writers = append(writers, namedWriter{
			path: out.XLSXPath,
			writer: &export.XLSXWriter{
				Path:            out.XLSXPath,
				DataSheet:       out.DataSheet,
				StatisticsSheet: out.StatisticsSheet,
			},
		})
	}
	if out.CSVPath != "" {
		writers = append(writers, namedWriter{
			path:   out.CSVPath,
			writer: &export.CSVWriter{Path: out.CSVPath},
		})
	}
	return writers
}

func (a *App) archive(ctx context.Context, report *Report, cfg tide.Config) (string, error) {
	archive, err := sqlite.Open(ctx, a.cfg.Archive.Path, a.logger)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	id, err := archive.SaveRun(ctx, sqlite.RunRecord{
		Sources:    report.Sources,
		Config:     cfg,
		Result:     report.Result,
		Statistics: report.Statistics,
		CreatedAt:  a.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("error archiving run: %w", err)
	}
	a.logger.Infof("archived run %s in %s", id, a.cfg.Archive.Path)
	return id, nil
}
