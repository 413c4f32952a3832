package ingest

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/tide"
)

// TimescaleOptions selects one gauge channel from a hypertable
type TimescaleOptions struct {
	ConnectionString string
	Table            string
	TimeColumn       string
	ValueColumn      string

	// StationColumn and Station restrict rows to one gauge when Station is set
	StationColumn string
	Station       string

	// Start and End bound the read to [Start, End); zero values are open
	Start time.Time
	End   time.Time
}

// TimescaleReader reads samples from TimescaleDB
type TimescaleReader struct {
	opts   TimescaleOptions
	logger *zap.SugaredLogger
}

// NewTimescaleReader creates a reader, filling unset column names with
// time, value and station
func NewTimescaleReader(opts TimescaleOptions, logger *zap.SugaredLogger) *TimescaleReader {
	if opts.TimeColumn == "" {
		opts.TimeColumn = "time"
	}
	if opts.ValueColumn == "" {
		opts.ValueColumn = "value"
	}
	if opts.StationColumn == "" {
		opts.StationColumn = "station"
	}
	return &TimescaleReader{opts: opts, logger: nopIfNil(logger)}
}

func (r *TimescaleReader) Read(ctx context.Context) (tide.Series, error) {
	pool, err := pgxpool.New(ctx, r.opts.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	query, args := r.query()
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	series, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tide.Sample, error) {
		var sample tide.Sample
		var value *float64
		if err := row.Scan(&sample.Time, &value); err != nil {
			return sample, err
		}
		// NULL readings become NaN and are dropped by the pipeline
		sample.Value = nanIfNil(value)
		return sample, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	r.logger.Debugf("%s: read %d sample(s)", r.opts.Table, len(series))
	return tide.Series(series), nil
}

// query builds the parameterized SELECT for the configured channel
func (r *TimescaleReader) query() (string, []any) {
	var (
		where []string
		args  []any
	)
	timeCol := pgx.Identifier{r.opts.TimeColumn}.Sanitize()

	if r.opts.Station != "" {
		args = append(args, r.opts.Station)
		where = append(where, fmt.Sprintf("%s = $%d", pgx.Identifier{r.opts.StationColumn}.Sanitize(), len(args)))
	}
	if !r.opts.Start.IsZero() {
		args = append(args, r.opts.Start)
		where = append(where, fmt.Sprintf("%s >= $%d", timeCol, len(args)))
	}
	if !r.opts.End.IsZero() {
		args = append(args, r.opts.End)
		where = append(where, fmt.Sprintf("%s < $%d", timeCol, len(args)))
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s", timeCol,
		pgx.Identifier{r.opts.ValueColumn}.Sanitize(),
		pgx.Identifier(strings.Split(r.opts.Table, ".")).Sanitize())
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + timeCol

	return query, args
}

func nanIfNil(value *float64) float64 {
	if value == nil {
		return math.NaN()
	}
	return *value
}
