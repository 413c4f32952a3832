package tide

import (
	"math"
	"sort"
)

// Merge combines per-source series into one series sorted by time.
// Samples sharing a timestamp keep the order they had in the concatenation
// of sources. Nothing is deduplicated and the inputs are not modified.
func Merge(sources ...Series) (Series, error) {
	total := 0
	for _, src := range sources {
		total += len(src)
	}
	if total == 0 {
		return nil, &EmptyInputError{Sources: len(sources)}
	}

	merged := make(Series, 0, total)
	for _, src := range sources {
		merged = append(merged, src...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})

	return merged, nil
}

// DropNonFinite returns a copy of the series without NaN or infinite values
// along with the number of samples removed
func DropNonFinite(series Series) (Series, int) {
	cleaned := make(Series, 0, len(series))
	for _, sample := range series {
		if math.IsNaN(sample.Value) || math.IsInf(sample.Value, 0) {
			continue
		}
		cleaned = append(cleaned, sample)
	}
	return cleaned, len(series) - len(cleaned)
}
