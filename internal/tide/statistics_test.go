package tide

import (
	"errors"
	"math"
	"testing"
	"time"
)

func hourly(values []float64) Series {
	series := make(Series, len(values))
	for i, v := range values {
		series[i] = Sample{Time: testStart.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return series
}

func TestComputeStatisticsMeanInterval(t *testing.T) {
	// Peaks at hours 0, 12 and 24; troughs at 6, 18 and 30
	values := make([]float64, 31)
	series := hourly(values)
	set := ExtremaSet{Peaks: []int{0, 12, 24}, Troughs: []int{6, 18, 30}}

	stats := ComputeStatistics(series, set, math.Inf(-1))

	if stats.MeanHighTideInterval != 12.0 {
		t.Errorf("expected mean high tide interval 12.0, got %v", stats.MeanHighTideInterval)
	}
	if stats.MeanLowTideInterval != 12.0 {
		t.Errorf("expected mean low tide interval 12.0, got %v", stats.MeanLowTideInterval)
	}
	if err := stats.Err(); err != nil {
		t.Errorf("unexpected failures: %v", err)
	}
}

func TestComputeStatisticsUnevenIntervals(t *testing.T) {
	series := make(Series, 4)
	for i, minutes := range []int{0, 745, 1490, 2250} {
		series[i] = Sample{Time: testStart.Add(time.Duration(minutes) * time.Minute)}
	}
	set := ExtremaSet{Peaks: []int{0, 1, 2, 3}, Troughs: []int{0, 3}}

	stats := ComputeStatistics(series, set, math.Inf(-1))

	if math.Abs(stats.MeanHighTideInterval-12.5) > 1e-12 {
		t.Errorf("expected 12.5 hours, got %v", stats.MeanHighTideInterval)
	}
	if math.Abs(stats.MeanLowTideInterval-37.5) > 1e-12 {
		t.Errorf("expected 37.5 hours, got %v", stats.MeanLowTideInterval)
	}
}

func TestComputeStatisticsTroughFloor(t *testing.T) {
	values := []float64{0, -5, 0, -2, 0, -6, 0}
	series := hourly(values)
	set := ExtremaSet{Peaks: []int{2, 4}, Troughs: []int{1, 3, 5}}

	tests := []struct {
		name     string
		floor    float64
		expected float64
		index    int
	}{
		{name: "floor excludes deep troughs", floor: -4, expected: -2, index: 3},
		{name: "low floor keeps all troughs", floor: -10, expected: -6, index: 5},
		{name: "floor is inclusive", floor: -5, expected: -5, index: 1},
		{name: "no floor", floor: math.Inf(-1), expected: -6, index: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStatistics(series, set, tt.floor)
			if stats.MinLowTide == nil {
				t.Fatalf("expected a min low tide, got failures %v", stats.Failures)
			}
			if stats.MinLowTide.Value != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, stats.MinLowTide.Value)
			}
			if !stats.MinLowTide.Time.Equal(series[tt.index].Time) {
				t.Errorf("expected time %s, got %s", series[tt.index].Time, stats.MinLowTide.Time)
			}
		})
	}
}

func TestComputeStatisticsNoValidTrough(t *testing.T) {
	series := hourly([]float64{0, -5, 0, -2, 0, -6, 0})
	set := ExtremaSet{Peaks: []int{2, 4}, Troughs: []int{1, 3, 5}}

	stats := ComputeStatistics(series, set, -1)

	if stats.MinLowTide != nil {
		t.Errorf("expected no min low tide, got %+v", stats.MinLowTide)
	}
	var noTrough *NoValidTroughError
	if !errors.As(stats.Err(), &noTrough) {
		t.Fatalf("expected NoValidTroughError, got %v", stats.Err())
	}
	if noTrough.Troughs != 3 || noTrough.Floor != -1 {
		t.Errorf("unexpected error details: %+v", noTrough)
	}

	// The remaining statistics are still computed
	if !stats.HasMeanHighTideInterval() || !stats.HasMeanLowTideInterval() || stats.MaxHighTide == nil {
		t.Errorf("expected other statistics to be available: %+v", stats)
	}
}

func TestComputeStatisticsMaxHighTide(t *testing.T) {
	series := hourly([]float64{0, 3, 0, 7, 0, 7, 0, 2, 0})
	set := ExtremaSet{Peaks: []int{1, 3, 5, 7}}

	stats := ComputeStatistics(series, set, math.Inf(-1))

	if stats.MaxHighTide == nil {
		t.Fatalf("expected a max high tide")
	}
	if stats.MaxHighTide.Value != 7 {
		t.Errorf("expected 7, got %v", stats.MaxHighTide.Value)
	}
	if !stats.MaxHighTide.Time.Equal(series[3].Time) {
		t.Errorf("ties should resolve to the first peak, got %s", stats.MaxHighTide.Time)
	}
}

func TestComputeStatisticsInsufficientData(t *testing.T) {
	series := hourly([]float64{0, 4, 0, -3, 0})

	tests := []struct {
		name        string
		set         ExtremaSet
		unavailable []string
	}{
		{
			name:        "single extremum of each kind",
			set:         ExtremaSet{Peaks: []int{1}, Troughs: []int{3}},
			unavailable: []string{StatMeanHighTideInterval, StatMeanLowTideInterval},
		},
		{
			name: "no extrema",
			set:  ExtremaSet{},
			unavailable: []string{
				StatMeanHighTideInterval, StatMeanLowTideInterval, StatMaxHighTide, StatMinLowTide,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStatistics(series, tt.set, math.Inf(-1))

			if len(stats.Failures) != len(tt.unavailable) {
				t.Fatalf("expected %d failures, got %d: %v", len(tt.unavailable), len(stats.Failures), stats.Failures)
			}
			for _, name := range tt.unavailable {
				if stats.FailureFor(name) == nil {
					t.Errorf("expected a failure for %s", name)
				}
			}

			var insufficient *InsufficientDataError
			if !errors.As(stats.Err(), &insufficient) {
				t.Errorf("expected InsufficientDataError in %v", stats.Err())
			}
			if stats.HasMeanHighTideInterval() || stats.HasMeanLowTideInterval() {
				t.Errorf("intervals should be unavailable, got %v and %v",
					stats.MeanHighTideInterval, stats.MeanLowTideInterval)
			}
		})
	}
}

func TestComputeStatisticsIgnoresOutOfRangeIndices(t *testing.T) {
	series := hourly([]float64{0, 4, 0, 5, 0})
	set := ExtremaSet{Peaks: []int{1, 3, 42}, Troughs: []int{-1, 2}}

	stats := ComputeStatistics(series, set, math.Inf(-1))

	if stats.MeanHighTideInterval != 2 {
		t.Errorf("expected 2 hours, got %v", stats.MeanHighTideInterval)
	}
	if stats.MinLowTide == nil || stats.MinLowTide.Value != 0 {
		t.Errorf("expected min low tide 0, got %+v", stats.MinLowTide)
	}
}
