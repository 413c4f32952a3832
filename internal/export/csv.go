package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CSVWriter writes the annotated series to Path and the statistics to a
// sibling file with a _stats suffix
type CSVWriter struct {
	Path string
}

// StatisticsPath returns the file the statistics table is written to
func (w *CSVWriter) StatisticsPath() string {
	ext := filepath.Ext(w.Path)
	return strings.TrimSuffix(w.Path, ext) + "_stats" + ext
}

func (w *CSVWriter) Write(ctx context.Context, table Table) error {
	converted := table.hasConverted()

	err := writeCSV(w.Path, table.headings(), len(table.Rows), func(i int) []string {
		row := table.Rows[i]
		record := []string{row.Time.Format(TimeLayout), formatFloat(row.Raw)}
		if converted {
			record = append(record, formatFloat(row.Converted))
		}
		return append(record, formatFloat(row.Filtered), row.Label)
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return writeCSV(w.StatisticsPath(), statisticsHeadings, len(table.Statistics), func(i int) []string {
		row := table.Statistics[i]
		record := []string{row.Name, "", "", row.Note}
		switch v := statisticValue(row).(type) {
		case float64:
			record[1] = formatFloat(v)
		case string:
			record[1] = v
		}
		if ts, ok := statisticTime(row); ok {
			record[2] = ts.Format(TimeLayout)
		}
		return record
	})
}

func writeCSV(path string, header []string, n int, record func(int) []string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
	}()

	if err := encodeCSV(file, header, n, record); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func encodeCSV(w io.Writer, header []string, n int, record func(int) []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(record(i)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
