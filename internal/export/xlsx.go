package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes the annotated series and the statistics to one workbook
type XLSXWriter struct {
	Path            string
	DataSheet       string
	StatisticsSheet string
}

func (w *XLSXWriter) Write(ctx context.Context, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.DataSheet); err != nil {
		return fmt.Errorf("failed to name sheet %q: %w", w.DataSheet, err)
	}

	dateFormat := "yyyy-mm-dd hh:mm:ss"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	if err := w.writeData(ctx, f, table, dateStyle); err != nil {
		return err
	}
	if err := w.writeStatistics(f, table, dateStyle); err != nil {
		return err
	}

	if err := f.SaveAs(w.Path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.Path, err)
	}
	return nil
}

func (w *XLSXWriter) writeData(ctx context.Context, f *excelize.File, table Table, dateStyle int) error {
	sw, err := f.NewStreamWriter(w.DataSheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", w.DataSheet, err)
	}
	if err := sw.SetColWidth(1, 1, 20); err != nil {
		return err
	}

	headings := table.headings()
	header := make([]any, len(headings))
	for i, h := range headings {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	converted := table.hasConverted()
	for i, row := range table.Rows {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		values := []any{excelize.Cell{StyleID: dateStyle, Value: row.Time}, row.Raw}
		if converted {
			values = append(values, row.Converted)
		}
		values = append(values, row.Filtered, row.Label)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return sw.Flush()
}

func (w *XLSXWriter) writeStatistics(f *excelize.File, table Table, dateStyle int) error {
	if _, err := f.NewSheet(w.StatisticsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", w.StatisticsSheet, err)
	}

	header := make([]any, len(statisticsHeadings))
	for i, h := range statisticsHeadings {
		header[i] = h
	}
	if err := f.SetSheetRow(w.StatisticsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write statistics header: %w", err)
	}

	for i, row := range table.Statistics {
		r := i + 2
		if err := f.SetCellValue(w.StatisticsSheet, fmt.Sprintf("A%d", r), row.Name); err != nil {
			return err
		}
		if err := f.SetCellValue(w.StatisticsSheet, fmt.Sprintf("B%d", r), statisticValue(row)); err != nil {
			return err
		}
		if ts, ok := statisticTime(row); ok {
			cell := fmt.Sprintf("C%d", r)
			if err := f.SetCellValue(w.StatisticsSheet, cell, ts); err != nil {
				return err
			}
			if err := f.SetCellStyle(w.StatisticsSheet, cell, cell, dateStyle); err != nil {
				return err
			}
		}
		if row.Note != "" {
			if err := f.SetCellValue(w.StatisticsSheet, fmt.Sprintf("D%d", r), row.Note); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(w.StatisticsSheet, "A", "A", 34)
}
