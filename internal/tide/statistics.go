package tide

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Statistic names used in failures and in the statistics table
const (
	StatMeanHighTideInterval = "mean high tide interval"
	StatMeanLowTideInterval  = "mean low tide interval"
	StatMaxHighTide          = "max high tide"
	StatMinLowTide           = "min valid low tide"
)

// ComputeStatistics derives the tidal statistics of series at the detected
// extrema. Troughs below floor are ignored for the minimum low tide. A
// statistic that cannot be computed is left unavailable and its reason is
// appended to Failures; the others are still computed.
func ComputeStatistics(series Series, set ExtremaSet, floor float64) TidalStats {
	stats := TidalStats{
		MeanHighTideInterval: math.NaN(),
		MeanLowTideInterval:  math.NaN(),
	}

	peaks := validIndices(set.Peaks, len(series))
	troughs := validIndices(set.Troughs, len(series))

	if mean, ok := meanIntervalHours(series, peaks); ok {
		stats.MeanHighTideInterval = mean
	} else {
		stats.Failures = append(stats.Failures, &InsufficientDataError{
			Statistic: StatMeanHighTideInterval,
			Kind:      KindPeak,
			Found:     len(peaks),
			Required:  2,
		})
	}

	if mean, ok := meanIntervalHours(series, troughs); ok {
		stats.MeanLowTideInterval = mean
	} else {
		stats.Failures = append(stats.Failures, &InsufficientDataError{
			Statistic: StatMeanLowTideInterval,
			Kind:      KindTrough,
			Found:     len(troughs),
			Required:  2,
		})
	}

	if len(peaks) == 0 {
		stats.Failures = append(stats.Failures, &InsufficientDataError{
			Statistic: StatMaxHighTide,
			Kind:      KindPeak,
			Found:     0,
			Required:  1,
		})
	} else {
		best := peaks[0]
		for _, idx := range peaks[1:] {
			if series[idx].Value > series[best].Value {
				best = idx
			}
		}
		stats.MaxHighTide = &Extreme{Value: series[best].Value, Time: series[best].Time}
	}

	best := -1
	for _, idx := range troughs {
		v := series[idx].Value
		if v < floor {
			continue
		}
		if best < 0 || v < series[best].Value {
			best = idx
		}
	}
	if best < 0 {
		stats.Failures = append(stats.Failures, &NoValidTroughError{Floor: floor, Troughs: len(troughs)})
	} else {
		stats.MinLowTide = &Extreme{Value: series[best].Value, Time: series[best].Time}
	}

	return stats
}

// Err joins the statistic failures, or returns nil when every statistic
// was computed
func (s TidalStats) Err() error {
	return errors.Join(s.Failures...)
}

// FailureFor returns the failure recorded for the named statistic, if any
func (s TidalStats) FailureFor(statistic string) error {
	for _, err := range s.Failures {
		var insufficient *InsufficientDataError
		if errors.As(err, &insufficient) && insufficient.Statistic == statistic {
			return err
		}
		var noTrough *NoValidTroughError
		if errors.As(err, &noTrough) && statistic == StatMinLowTide {
			return err
		}
	}
	return nil
}

// meanIntervalHours averages the time between successive extrema
func meanIntervalHours(series Series, indices []int) (float64, bool) {
	if len(indices) < 2 {
		return 0, false
	}

	times := make([]time.Time, len(indices))
	for i, idx := range indices {
		times[i] = series[idx].Time
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	intervals := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		intervals[i-1] = times[i].Sub(times[i-1]).Hours()
	}

	return stat.Mean(intervals, nil), true
}

func validIndices(indices []int, n int) []int {
	valid := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < n {
			valid = append(valid, idx)
		}
	}
	return valid
}
