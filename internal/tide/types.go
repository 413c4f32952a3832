// Package tide implements the tidal signal processing engine: merging sensor
// series, denoising them, detecting high/low tide extrema and deriving tidal
// statistics.
package tide

import (
	"math"
	"time"
)

// Sample represents a single time/value measurement
type Sample struct {
	Time  time.Time
	Value float64
}

// Series is a sequence of samples, non-decreasing by time once merged
type Series []Sample

// Values returns the value channel of the series
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, sample := range s {
		values[i] = sample.Value
	}
	return values
}

// Times returns the timestamps of the series
func (s Series) Times() []time.Time {
	times := make([]time.Time, len(s))
	for i, sample := range s {
		times[i] = sample.Time
	}
	return times
}

// FilteredSeries pairs a series with its denoised values. Filtered[i]
// corresponds to Series[i].
type FilteredSeries struct {
	Series   Series
	Filtered []float64
}

// ExtremaSet holds ascending indices of local maxima (Peaks) and local
// minima (Troughs) into a FilteredSeries
type ExtremaSet struct {
	Peaks   []int
	Troughs []int
}

// Extreme is a value observed at a point in time
type Extreme struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// TidalStats summarizes the detected tidal cycle. Interval means are in hours
// and are NaN when unavailable; the extremes are nil when unavailable. The
// reason for every unavailable statistic is listed in Failures.
type TidalStats struct {
	MeanHighTideInterval float64
	MeanLowTideInterval  float64
	MaxHighTide          *Extreme
	MinLowTide           *Extreme
	Failures             []error
}

// HasMeanHighTideInterval reports whether the high-tide interval was computed
func (s TidalStats) HasMeanHighTideInterval() bool {
	return !math.IsNaN(s.MeanHighTideInterval)
}

// HasMeanLowTideInterval reports whether the low-tide interval was computed
func (s TidalStats) HasMeanLowTideInterval() bool {
	return !math.IsNaN(s.MeanLowTideInterval)
}
