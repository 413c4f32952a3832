package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func gaugeOptions() Options {
	return Options{
		Sheet:       "R73157 RFCURRENT - Data",
		HeaderRow:   7,
		TimeColumn:  "Date",
		ValueColumn: "Current (mA)",
	}
}

// writeGaugeWorkbook saves a workbook laid out like a logger export: six
// metadata rows, the header on row 7, then one reading every 5 minutes
func writeGaugeWorkbook(t *testing.T, sheet string, values []any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for i := 1; i <= 6; i++ {
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", i), fmt.Sprintf("metadata %d", i)))
	}
	require.NoError(t, f.SetSheetRow(sheet, "A7", &[]any{"Date", "Current (mA)", "Battery (V)"}))

	for i, v := range values {
		row := 8 + i
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", row), start.Add(time.Duration(i)*5*time.Minute)))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("B%d", row), v))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("C%d", row), 12.6))
	}

	path := filepath.Join(t.TempDir(), "gauge.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXReaderRead(t *testing.T) {
	path := writeGaugeWorkbook(t, "R73157 RFCURRENT - Data", []any{4.5, 5.25, 6.0, 7.125})

	series, err := NewXLSXReader(path, gaugeOptions(), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 4)

	for i, sample := range series {
		assert.True(t, sample.Time.Equal(start.Add(time.Duration(i)*5*time.Minute)),
			"row %d: got time %s", i, sample.Time)
	}
	assert.Equal(t, []float64{4.5, 5.25, 6.0, 7.125}, series.Values())
}

func TestXLSXReaderSheetFallback(t *testing.T) {
	path := writeGaugeWorkbook(t, "Export", []any{1.0, 2.0})

	series, err := NewXLSXReader(path, gaugeOptions(), nil).Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestSheetCandidates(t *testing.T) {
	sheets := []string{"Summary", "R73157 RFCURRENT - Data", "Notes"}

	assert.Equal(t,
		[]string{"R73157 RFCURRENT - Data", "Summary", "Notes"},
		sheetCandidates(sheets, "R73157 RFCURRENT - Data"),
		"the configured sheet is tried first and only once")
	assert.Equal(t, sheets, sheetCandidates(sheets, "Export"))
	assert.Empty(t, sheetCandidates(nil, "Export"))
}

func TestXLSXReaderSkipsUnreadableRows(t *testing.T) {
	path := writeGaugeWorkbook(t, "R73157 RFCURRENT - Data", []any{1.0, "sensor fault", 3.0})

	series, err := NewXLSXReader(path, gaugeOptions(), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{1.0, 3.0}, series.Values())
	assert.True(t, series[1].Time.Equal(start.Add(10*time.Minute)))
}

func TestXLSXReaderHeaderNotFound(t *testing.T) {
	opts := gaugeOptions()
	opts.ValueColumn = "Level (m)"
	path := writeGaugeWorkbook(t, "R73157 RFCURRENT - Data", []any{1.0})

	_, err := NewXLSXReader(path, opts, nil).Read(context.Background())
	var notFound *HeaderNotFoundError
	assert.True(t, errors.As(err, &notFound), "got %v", err)
}

func TestXLSXReaderMissingFile(t *testing.T) {
	_, err := NewXLSXReader(filepath.Join(t.TempDir(), "none.xlsx"), gaugeOptions(), nil).Read(context.Background())
	assert.Error(t, err)
}

func TestCSVReaderRead(t *testing.T) {
	doc := "Logger,R73157\n" +
		"Date,Current (mA)\n" +
		"2024-03-01 00:00:00,4.5\n" +
		"2024-03-01 00:05:00,5.5\n" +
		"\n" +
		"2024-03-01 00:10:00,n/a\n" +
		"not a date,6.5\n" +
		"2024-03-01T00:15:00Z,7.5\n"
	path := filepath.Join(t.TempDir(), "gauge.csv")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	// the configured header row is wrong; the reader finds row 2 instead
	series, err := NewCSVReader(path, gaugeOptions(), nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, []float64{4.5, 5.5, 7.5}, series.Values())
	assert.True(t, series[2].Time.Equal(start.Add(15*time.Minute)))
}

func TestCSVReaderLocationAndFormat(t *testing.T) {
	doc := "date,level\n01.03.2024 01:00,2.0\n"
	path := filepath.Join(t.TempDir(), "gauge.csv")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	opts := Options{
		TimeColumn:  "date",
		ValueColumn: "level",
		TimeFormat:  "02.01.2006 15:04",
		Location:    time.FixedZone("CET", 3600),
	}
	series, err := NewCSVReader(path, opts, nil).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.True(t, series[0].Time.Equal(start), "got %s", series[0].Time)
}

func TestForPath(t *testing.T) {
	r, err := ForPath("data/gauge.XLSX", gaugeOptions(), nil)
	require.NoError(t, err)
	assert.IsType(t, &XLSXReader{}, r)

	r, err = ForPath("gauge.csv", gaugeOptions(), nil)
	require.NoError(t, err)
	assert.IsType(t, &CSVReader{}, r)

	_, err = ForPath("gauge.ods", gaugeOptions(), nil)
	assert.Error(t, err)
}

func TestTimescaleQuery(t *testing.T) {
	tests := []struct {
		name  string
		opts  TimescaleOptions
		query string
		args  int
	}{
		{
			name:  "whole table",
			opts:  TimescaleOptions{Table: "tide_readings"},
			query: `SELECT "time", "value" FROM "tide_readings" ORDER BY "time"`,
		},
		{
			name: "station and bounds",
			opts: TimescaleOptions{
				Table:       "gauges.readings",
				ValueColumn: "current_ma",
				Station:     "R73157",
				Start:       start,
				End:         start.Add(48 * time.Hour),
			},
			query: `SELECT "time", "current_ma" FROM "gauges"."readings" WHERE "station" = $1 AND "time" >= $2 AND "time" < $3 ORDER BY "time"`,
			args:  3,
		},
		{
			name:  "open end",
			opts:  TimescaleOptions{Table: "tide_readings", Start: start},
			query: `SELECT "time", "value" FROM "tide_readings" WHERE "time" >= $1 ORDER BY "time"`,
			args:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := NewTimescaleReader(tt.opts, nil).query()
			assert.Equal(t, tt.query, query)
			assert.Len(t, args, tt.args)
		})
	}
}
