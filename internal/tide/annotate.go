package tide

import (
	"fmt"
	"time"
)

// Row is one line of the annotated series table
type Row struct {
	Time         time.Time `json:"time"`
	Raw          float64   `json:"raw"`
	Converted    float64   `json:"converted,omitempty"`
	HasConverted bool      `json:"-"`
	Filtered     float64   `json:"filtered"`
	Label        string    `json:"label"`
}

// StatRow is one line of the statistics table. Unavailable rows carry the
// failure reason in Note.
type StatRow struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value,omitempty"`
	Time      time.Time `json:"time,omitempty"`
	Text      string    `json:"text,omitempty"`
	Available bool      `json:"available"`
	Note      string    `json:"note,omitempty"`
}

// Labels returns the extrema label of every sample
func (r *Result) Labels() []string {
	labels := make([]string, len(r.Series))
	for i := range labels {
		labels[i] = r.NoExtremumLabel
	}
	for _, idx := range r.Extrema.Peaks {
		labels[idx] = LabelMax
	}
	for _, idx := range r.Extrema.Troughs {
		labels[idx] = LabelMin
	}
	return labels
}

// Rows returns the annotated series table
func (r *Result) Rows() []Row {
	labels := r.Labels()
	rows := make([]Row, len(r.Series))
	for i, sample := range r.Series {
		rows[i] = Row{
			Time:     sample.Time,
			Raw:      sample.Value,
			Filtered: r.Filtered[i],
			Label:    labels[i],
		}
		if r.Converted != nil {
			rows[i].Converted = r.Converted[i]
			rows[i].HasConverted = true
		}
	}
	return rows
}

// StatisticsTable returns the statistics rows in reporting order
func (r *Result) StatisticsTable() []StatRow {
	s := r.Stats

	rows := []StatRow{
		{Name: "Mean high tide interval (hours)", Value: s.MeanHighTideInterval, Available: s.HasMeanHighTideInterval()},
		{Name: "Mean low tide interval (hours)", Value: s.MeanLowTideInterval, Available: s.HasMeanLowTideInterval()},
		extremeRow("Max high tide", s.MaxHighTide),
		extremeRow("Min valid low tide", s.MinLowTide),
	}

	for i, statistic := range []string{StatMeanHighTideInterval, StatMeanLowTideInterval, StatMaxHighTide, StatMinLowTide} {
		if err := s.FailureFor(statistic); err != nil {
			rows[i].Note = err.Error()
			rows[i].Value = 0
		}
	}

	return rows
}

func extremeRow(name string, e *Extreme) StatRow {
	if e == nil {
		return StatRow{Name: name}
	}
	return StatRow{
		Name:      name,
		Value:     e.Value,
		Time:      e.Time,
		Text:      fmt.Sprintf("%g at %s", e.Value, e.Time.Format("2006-01-02 15:04:05")),
		Available: true,
	}
}
