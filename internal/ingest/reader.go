// Package ingest reads tide gauge exports into tide.Series values.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/remotetide/internal/tide"
)

// Reader produces one source series for the pipeline
type Reader interface {
	Read(ctx context.Context) (tide.Series, error)
}

// Options maps the columns of a tabular export onto samples
type Options struct {
	// Sheet is the preferred worksheet; XLSX only
	Sheet string

	// HeaderRow is the 1-based row holding the column names. When that row
	// does not carry both columns the first row that does is used.
	HeaderRow int

	TimeColumn  string
	ValueColumn string

	// TimeFormat forces a single Go layout for timestamp cells
	TimeFormat string

	// Location applies to timestamps without a zone; UTC when nil
	Location *time.Location
}

// HeaderNotFoundError reports that no row names both configured columns
type HeaderNotFoundError struct {
	Source      string
	TimeColumn  string
	ValueColumn string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("%s: no header row names both %q and %q", e.Source, e.TimeColumn, e.ValueColumn)
}

// Layouts tried in order for text timestamps
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/06 15:04",
	"2006/01/02 15:04:05",
}

// ForPath picks a reader from the file extension
func ForPath(path string, opts Options, logger *zap.SugaredLogger) (Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewXLSXReader(path, opts, logger), nil
	case ".csv", ".txt":
		return NewCSVReader(path, opts, logger), nil
	default:
		return nil, fmt.Errorf("unsupported input format %q for %s", filepath.Ext(path), path)
	}
}

// column positions resolved from a header row
type layout struct {
	headerIndex int
	timeIndex   int
	valueIndex  int
}

// locateHeader finds the header row, preferring the configured 1-based row
func locateHeader(rows [][]string, opts Options) (layout, bool) {
	if opts.HeaderRow > 0 && opts.HeaderRow <= len(rows) {
		if l, ok := matchHeader(rows[opts.HeaderRow-1], opts); ok {
			l.headerIndex = opts.HeaderRow - 1
			return l, true
		}
	}
	for i, row := range rows {
		if l, ok := matchHeader(row, opts); ok {
			l.headerIndex = i
			return l, true
		}
	}
	return layout{}, false
}

func matchHeader(row []string, opts Options) (layout, bool) {
	l := layout{timeIndex: -1, valueIndex: -1}
	for i, cell := range row {
		name := strings.TrimSpace(cell)
		switch {
		case strings.EqualFold(name, opts.TimeColumn) && l.timeIndex < 0:
			l.timeIndex = i
		case strings.EqualFold(name, opts.ValueColumn) && l.valueIndex < 0:
			l.valueIndex = i
		}
	}
	return l, l.timeIndex >= 0 && l.valueIndex >= 0
}

// rowParser converts data rows to samples and counts the ones it skips
type rowParser struct {
	opts     Options
	layout   layout
	location *time.Location

	// parseSerial, when set, handles spreadsheet serial date numbers
	parseSerial func(float64) (time.Time, error)

	skipped   int
	firstSkip string
}

func newRowParser(opts Options, l layout) *rowParser {
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	return &rowParser{opts: opts, layout: l, location: location}
}

// parse converts the rows following the header. Blank rows are ignored;
// rows with an unreadable timestamp or value are skipped and counted.
func (p *rowParser) parse(rows [][]string) tide.Series {
	series := make(tide.Series, 0, len(rows))
	for i := p.layout.headerIndex + 1; i < len(rows); i++ {
		row := rows[i]
		rawTime := cell(row, p.layout.timeIndex)
		rawValue := cell(row, p.layout.valueIndex)
		if rawTime == "" && rawValue == "" {
			continue
		}

		ts, err := p.parseTime(rawTime)
		if err != nil {
			p.skip(i, err)
			continue
		}
		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			p.skip(i, fmt.Errorf("value %q is not a number", rawValue))
			continue
		}
		series = append(series, tide.Sample{Time: ts, Value: value})
	}
	return series
}

func (p *rowParser) skip(rowIndex int, err error) {
	if p.skipped == 0 {
		p.firstSkip = fmt.Sprintf("row %d: %v", rowIndex+1, err)
	}
	p.skipped++
}

func (p *rowParser) parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	if p.opts.TimeFormat != "" {
		return time.ParseInLocation(p.opts.TimeFormat, raw, p.location)
	}
	if p.parseSerial != nil {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			t, err := p.parseSerial(serial)
			if err != nil {
				return time.Time{}, err
			}
			// serial dates carry no zone and float rounding noise
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), p.location)
			return t.Round(time.Second), nil
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, p.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q matches no known layout", raw)
}

func (p *rowParser) report(logger *zap.SugaredLogger, source string, kept int) {
	if p.skipped > 0 {
		logger.Warnf("%s: skipped %d unreadable row(s), first at %s", source, p.skipped, p.firstSkip)
	}
	logger.Debugf("%s: read %d sample(s)", source, kept)
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func nopIfNil(logger *zap.SugaredLogger) *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}
