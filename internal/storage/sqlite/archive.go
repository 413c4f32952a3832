// Package sqlite archives processed tide runs in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrRunNotFound is returned for an unknown run id
var ErrRunNotFound = errors.New("run not found")

// Archive stores runs and their annotated series
type Archive struct {
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
}

// RunRecord is one pipeline run to be archived
type RunRecord struct {
	Sources []string
	Config  tide.Config
	Result  *tide.Result

	// Statistics is the reported table, including any annotation rows
	Statistics []tide.StatRow

	CreatedAt time.Time
}

// RunSummary describes an archived run
type RunSummary struct {
	ID                   string        `json:"id"`
	CreatedAt            time.Time     `json:"created_at"`
	Sources              []string      `json:"sources"`
	Filter               string        `json:"filter"`
	Samples              int           `json:"samples"`
	Dropped              int           `json:"dropped"`
	Peaks                int           `json:"peaks"`
	Troughs              int           `json:"troughs"`
	MeanHighTideInterval *float64      `json:"mean_high_tide_interval_hours,omitempty"`
	MeanLowTideInterval  *float64      `json:"mean_low_tide_interval_hours,omitempty"`
	MaxHighTide          *tide.Extreme `json:"max_high_tide,omitempty"`
	MinLowTide           *tide.Extreme `json:"min_low_tide,omitempty"`
	Failures             []string      `json:"failures,omitempty"`
}

// Run is a summary plus the configuration and statistics table
type Run struct {
	RunSummary
	Config     StoredConfig   `json:"config"`
	Statistics []tide.StatRow `json:"statistics"`
}

// StoredConfig is the JSON form of tide.Config. An unset trough floor
// is stored as null because JSON has no infinity.
type StoredConfig struct {
	FilterStrategy          string          `json:"filter_strategy"`
	SamplingIntervalMinutes float64         `json:"sampling_interval_minutes"`
	BandLowPeriodHours      float64         `json:"band_low_period_hours"`
	BandHighPeriodHours     float64         `json:"band_high_period_hours"`
	WindowSize              int             `json:"window_size"`
	PolyOrder               int             `json:"poly_order"`
	MinExtremaSpacing       int             `json:"min_extrema_spacing_samples"`
	TroughFloor             *float64        `json:"trough_floor"`
	UnitConversion          *tide.Converter `json:"unit_conversion,omitempty"`
	NoExtremumLabel         string          `json:"no_extremum_label"`
	PlateauPeaks            bool            `json:"plateau_peaks"`
	CadencePolicy           string          `json:"cadence_policy"`
	CadenceTolerance        float64         `json:"cadence_tolerance"`
	StatisticsChannel       string          `json:"statistics_channel"`
}

// NewStoredConfig converts a pipeline configuration for storage
func NewStoredConfig(c tide.Config) StoredConfig {
	sc := StoredConfig{
		FilterStrategy:          string(c.Filter.Strategy),
		SamplingIntervalMinutes: c.Filter.SamplingIntervalMinutes,
		BandLowPeriodHours:      c.Filter.BandLowPeriodHours,
		BandHighPeriodHours:     c.Filter.BandHighPeriodHours,
		WindowSize:              c.Filter.WindowSize,
		PolyOrder:               c.Filter.PolyOrder,
		MinExtremaSpacing:       c.MinExtremaSpacing,
		UnitConversion:          c.Conversion,
		NoExtremumLabel:         c.NoExtremumLabel,
		PlateauPeaks:            c.PlateauPeaks,
		CadencePolicy:           string(c.CadencePolicy),
		CadenceTolerance:        c.CadenceTolerance,
		StatisticsChannel:       string(c.StatisticsChannel),
	}
	if !math.IsInf(c.TroughFloor, 0) {
		floor := c.TroughFloor
		sc.TroughFloor = &floor
	}
	return sc
}

// DSN is the data source name for the archive at path. Foreign keys are
// enabled in the DSN so every pooled connection enforces them.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)"
}

// Open opens (creating if needed) the archive at path
func Open(ctx context.Context, path string, logger *zap.SugaredLogger) (*Archive, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// one writer at a time; the REST server only reads
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if err := Migrator(db, logger).MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive schema: %w", err)
	}

	logger.Debugf("opened run archive %s", path)
	return &Archive{db: db, path: path, logger: logger}, nil
}

// Migrator returns a migrator over the archive schema embedded in the binary
func Migrator(db *sql.DB, logger *zap.SugaredLogger) *migrate.Migrator {
	schema, _ := fs.Sub(migrations, "migrations")
	return migrate.NewMigrator(db, migrate.NewFSProvider(schema, migrate.DefaultMigrationTable), logger)
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveRun stores a run with its annotated series and returns the new run id
func (a *Archive) SaveRun(ctx context.Context, rec RunRecord) (string, error) {
	if rec.Result == nil {
		return "", fmt.Errorf("no result to archive")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Statistics == nil {
		rec.Statistics = rec.Result.StatisticsTable()
	}

	id := uuid.NewString()
	result := rec.Result
	stats := result.Stats

	sources, err := json.Marshal(nonNil(rec.Sources))
	if err != nil {
		return "", err
	}
	config, err := json.Marshal(NewStoredConfig(rec.Config))
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	failures := make([]string, len(stats.Failures))
	for i, f := range stats.Failures {
		failures[i] = f.Error()
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return "", err
	}
	statistics, err := json.Marshal(rec.Statistics)
	if err != nil {
		return "", fmt.Errorf("failed to encode statistics: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	maxValue, maxTime := extremeColumns(stats.MaxHighTide)
	minValue, minTime := extremeColumns(stats.MinLowTide)

	_, err = tx.ExecContext(ctx, insertRunSQL,
		id, rec.CreatedAt.UnixNano(), string(sources), result.FilterName, string(config),
		len(result.Series), result.Dropped, len(result.Extrema.Peaks), len(result.Extrema.Troughs),
		nullFloat(stats.MeanHighTideInterval), nullFloat(stats.MeanLowTideInterval),
		maxValue, maxTime, minValue, minTime,
		string(failuresJSON), string(statistics),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSampleSQL)
	if err != nil {
		return "", fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range result.Rows() {
		var converted sql.NullFloat64
		if row.HasConverted {
			converted = sql.NullFloat64{Float64: row.Converted, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i, row.Time.UnixNano(), row.Raw, converted, row.Filtered, row.Label); err != nil {
			return "", fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	a.logger.Infof("archived run %s (%d samples)", id, len(result.Series))
	return id, nil
}

// ListRuns returns the most recent runs first
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := a.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var s RunSummary
		if err := scanSummary(rows, &s); err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

// GetRun returns one run or ErrRunNotFound
func (a *Archive) GetRun(ctx context.Context, id string) (*Run, error) {
	var (
		run        Run
		config     string
		statistics string
	)

	row := a.db.QueryRowContext(ctx, getRunSQL, id)
	if err := scanSummary(row, &run.RunSummary, &config, &statistics); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(config), &run.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config of run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(statistics), &run.Statistics); err != nil {
		return nil, fmt.Errorf("failed to decode statistics of run %s: %w", id, err)
	}
	return &run, nil
}

// GetSeries returns the annotated series of a run or ErrRunNotFound
func (a *Archive) GetSeries(ctx context.Context, id string) ([]tide.Row, error) {
	var count int
	if err := a.db.QueryRowContext(ctx, runExistsSQL, id).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to look up run %s: %w", id, err)
	}
	if count == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := a.db.QueryContext(ctx, getSeriesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	series := []tide.Row{}
	for rows.Next() {
		var (
			row       tide.Row
			ts        int64
			converted sql.NullFloat64
		)
		if err := rows.Scan(&ts, &row.Raw, &converted, &row.Filtered, &row.Label); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		row.Time = time.Unix(0, ts).UTC()
		if converted.Valid {
			row.Converted = converted.Float64
			row.HasConverted = true
		}
		series = append(series, row)
	}
	return series, rows.Err()
}

// DeleteRun removes a run and its samples
func (a *Archive) DeleteRun(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, deleteRunSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, s *RunSummary, extra ...any) error {
	var (
		createdAt          int64
		sources, failures  string
		meanHigh, meanLow  sql.NullFloat64
		maxValue, minValue sql.NullFloat64
		maxTime, minTime   sql.NullInt64
	)

	dest := []any{
		&s.ID, &createdAt, &sources, &s.Filter, &s.Samples, &s.Dropped, &s.Peaks, &s.Troughs,
		&meanHigh, &meanLow, &maxValue, &maxTime, &minValue, &minTime, &failures,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("failed to scan run: %w", err)
	}

	s.CreatedAt = time.Unix(0, createdAt).UTC()
	if err := json.Unmarshal([]byte(sources), &s.Sources); err != nil {
		return fmt.Errorf("failed to decode sources of run %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(failures), &s.Failures); err != nil {
		return fmt.Errorf("failed to decode failures of run %s: %w", s.ID, err)
	}
	s.MeanHighTideInterval = floatPtr(meanHigh)
	s.MeanLowTideInterval = floatPtr(meanLow)
	s.MaxHighTide = extremeFrom(maxValue, maxTime)
	s.MinLowTide = extremeFrom(minValue, minTime)
	return nil
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func extremeColumns(e *tide.Extreme) (sql.NullFloat64, sql.NullInt64) {
	if e == nil {
		return sql.NullFloat64{}, sql.NullInt64{}
	}
	return nullFloat(e.Value), sql.NullInt64{Int64: e.Time.UnixNano(), Valid: true}
}

func extremeFrom(value sql.NullFloat64, ts sql.NullInt64) *tide.Extreme {
	if !value.Valid || !ts.Valid {
		return nil
	}
	return &tide.Extreme{Value: value.Float64, Time: time.Unix(0, ts.Int64).UTC()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
