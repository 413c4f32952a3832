package tide

import "sort"

// DetectOptions controls extrema detection
type DetectOptions struct {
	// MinSpacing is the minimum index distance between two extrema of the
	// same kind. Values below 1 behave as 1.
	MinSpacing int

	// Plateaus lets a flat top (or bottom) count as one extremum located at
	// the middle of the plateau. With the default strict rule a plateau is
	// never an extremum.
	Plateaus bool
}

// Detect finds peaks and troughs in values. A trough is a peak of the negated
// series, so the two sets are always disjoint.
func Detect(values []float64, opts DetectOptions) ExtremaSet {
	negated := make([]float64, len(values))
	for i, v := range values {
		negated[i] = -v
	}

	return ExtremaSet{
		Peaks:   findPeaks(values, opts),
		Troughs: findPeaks(negated, opts),
	}
}

func findPeaks(values []float64, opts DetectOptions) []int {
	candidates := localMaxima(values, opts.Plateaus)
	return suppressClosePeaks(candidates, values, opts.MinSpacing)
}

// localMaxima returns the ascending indices of strict local maxima, excluding
// both endpoints
func localMaxima(values []float64, plateaus bool) []int {
	n := len(values)
	peaks := []int{}

	for i := 1; i < n-1; i++ {
		if !(values[i-1] < values[i]) {
			continue
		}

		ahead := i + 1
		if plateaus {
			for ahead < n-1 && values[ahead] == values[i] {
				ahead++
			}
		}

		if values[ahead] < values[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead - 1
		}
	}

	return peaks
}

// suppressClosePeaks keeps the highest peak of every group closer than
// minSpacing samples. Peaks are visited from highest to lowest, equal values
// in index order, and each kept peak removes its close neighbours.
func suppressClosePeaks(peaks []int, values []float64, minSpacing int) []int {
	if minSpacing <= 1 || len(peaks) < 2 {
		return peaks
	}

	order := make([]int, len(peaks))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[peaks[order[a]]] > values[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for k := range keep {
		keep[k] = true
	}

	for _, k := range order {
		if !keep[k] {
			continue
		}
		for j := k - 1; j >= 0 && peaks[k]-peaks[j] < minSpacing; j-- {
			keep[j] = false
		}
		for j := k + 1; j < len(peaks) && peaks[j]-peaks[k] < minSpacing; j++ {
			keep[j] = false
		}
	}

	kept := make([]int, 0, len(peaks))
	for k, idx := range peaks {
		if keep[k] {
			kept = append(kept, idx)
		}
	}
	return kept
}
