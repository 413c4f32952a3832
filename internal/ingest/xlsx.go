package ingest

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/tide"
)

// XLSXReader reads a gauge export workbook
type XLSXReader struct {
	path   string
	opts   Options
	logger *zap.SugaredLogger
}

// NewXLSXReader creates a reader for the workbook at path
func NewXLSXReader(path string, opts Options, logger *zap.SugaredLogger) *XLSXReader {
	return &XLSXReader{path: path, opts: opts, logger: nopIfNil(logger)}
}

// Read loads the configured sheet, or the first sheet carrying both
// columns when the configured one is missing
func (r *XLSXReader) Read(ctx context.Context) (tide.Series, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, name := range sheetCandidates(f.GetSheetList(), r.opts.Sheet) {
		// raw values keep date cells as serial numbers
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", name, r.path, err)
		}

		l, ok := locateHeader(rows, r.opts)
		if !ok {
			continue
		}
		if name != r.opts.Sheet {
			r.logger.Infof("%s: no usable sheet %q, reading %q", r.path, r.opts.Sheet, name)
		}

		parser := newRowParser(r.opts, l)
		parser.parseSerial = func(serial float64) (time.Time, error) {
			return excelize.ExcelDateToTime(serial, false)
		}
		series := parser.parse(rows)
		parser.report(r.logger, r.path, len(series))
		return series, nil
	}

	return nil, &HeaderNotFoundError{Source: r.path, TimeColumn: r.opts.TimeColumn, ValueColumn: r.opts.ValueColumn}
}

// sheetCandidates orders sheets with preferred first, when present, and
// the rest in workbook order
func sheetCandidates(sheets []string, preferred string) []string {
	candidates := make([]string, 0, len(sheets))
	if slices.Contains(sheets, preferred) {
		candidates = append(candidates, preferred)
	}
	for _, name := range sheets {
		if name != preferred {
			candidates = append(candidates, name)
		}
	}
	return candidates
}
