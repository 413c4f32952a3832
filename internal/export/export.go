// Package export writes processed tide runs to spreadsheet and CSV files.
package export

import (
	"context"
	"time"

	"github.com/chrissnell/remotetide/internal/tide"
)

// TimeLayout is used for every timestamp written as text
const TimeLayout = "2006-01-02 15:04:05"

// Column headings of the annotated series table
const (
	HeadingTime      = "Date"
	HeadingConverted = "Converted"
	HeadingFiltered  = "Filtered"
	HeadingExtrema   = "Extrema"
)

// Table is everything an exporter writes for one run
type Table struct {
	Rows       []tide.Row
	Statistics []tide.StatRow

	// ValueHeading names the raw value column, e.g. "Current (mA)"
	ValueHeading string
}

// Writer persists a processed run
type Writer interface {
	Write(ctx context.Context, table Table) error
}

// NewTable builds the exported tables of a pipeline result. Extra
// statistic rows are appended after the engine's own.
func NewTable(result *tide.Result, valueHeading string, extra ...tide.StatRow) Table {
	return Table{
		Rows:         result.Rows(),
		Statistics:   append(result.StatisticsTable(), extra...),
		ValueHeading: valueHeading,
	}
}

func (t Table) hasConverted() bool {
	return len(t.Rows) > 0 && t.Rows[0].HasConverted
}

func (t Table) headings() []string {
	headings := []string{HeadingTime, t.ValueHeading}
	if t.hasConverted() {
		headings = append(headings, HeadingConverted)
	}
	return append(headings, HeadingFiltered, HeadingExtrema)
}

var statisticsHeadings = []string{"Statistic", "Value", "Time", "Note"}

// statisticValue is the number of a statistic, its text when it has no
// number, or "unavailable"
func statisticValue(row tide.StatRow) any {
	switch {
	case !row.Available:
		return "unavailable"
	case row.Text != "" && row.Time.IsZero():
		return row.Text
	default:
		return row.Value
	}
}

func statisticTime(row tide.StatRow) (time.Time, bool) {
	return row.Time, row.Available && !row.Time.IsZero()
}
