package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/tide"
)

// CSVReader reads a comma-separated gauge export
type CSVReader struct {
	path   string
	opts   Options
	logger *zap.SugaredLogger
}

// NewCSVReader creates a reader for the CSV file at path
func NewCSVReader(path string, opts Options, logger *zap.SugaredLogger) *CSVReader {
	return &CSVReader{path: path, opts: opts, logger: nopIfNil(logger)}
}

func (r *CSVReader) Read(ctx context.Context) (tide.Series, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", r.path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, ok := locateHeader(rows, r.opts)
	if !ok {
		return nil, &HeaderNotFoundError{Source: r.path, TimeColumn: r.opts.TimeColumn, ValueColumn: r.opts.ValueColumn}
	}

	parser := newRowParser(r.opts, l)
	series := parser.parse(rows)
	parser.report(r.logger, r.path, len(series))
	return series, nil
}
