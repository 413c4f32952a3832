package tide

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// BandPassFilter is an ideal band-pass filter applied by masking the Fourier
// spectrum of the series and transforming it back. Frequencies are in cycles
// per minute.
type BandPassFilter struct {
	IntervalMinutes float64
	LowFreq         float64
	HighFreq        float64
}

// NewBandPassFilter creates a filter keeping periods between lowPeriodHours
// and highPeriodHours (inclusive) for a series sampled every intervalMinutes
func NewBandPassFilter(intervalMinutes, lowPeriodHours, highPeriodHours float64) (*BandPassFilter, error) {
	if !(intervalMinutes > 0) || math.IsInf(intervalMinutes, 0) {
		return nil, &InvalidParameterError{
			Parameter: "sampling_interval_minutes",
			Value:     intervalMinutes,
			Reason:    "must be a positive number of minutes",
		}
	}
	if !(lowPeriodHours > 0) || math.IsInf(lowPeriodHours, 0) {
		return nil, &InvalidParameterError{
			Parameter: "band_low_period_hours",
			Value:     lowPeriodHours,
			Reason:    "must be a positive number of hours",
		}
	}
	if !(highPeriodHours >= lowPeriodHours) || math.IsInf(highPeriodHours, 0) {
		return nil, &InvalidParameterError{
			Parameter: "band_high_period_hours",
			Value:     highPeriodHours,
			Reason:    "must be finite and not shorter than band_low_period_hours",
		}
	}

	return &BandPassFilter{
		IntervalMinutes: intervalMinutes,
		LowFreq:         1 / (highPeriodHours * 60),
		HighFreq:        1 / (lowPeriodHours * 60),
	}, nil
}

// Name returns the strategy name
func (b *BandPassFilter) Name() string {
	return string(FilterTypeBandpass)
}

// Apply zeroes every spectral coefficient outside [LowFreq, HighFreq] and
// reconstructs the real signal with a single inverse transform
func (b *BandPassFilter) Apply(values []float64) ([]float64, error) {
	n := len(values)
	if n == 0 {
		return []float64{}, nil
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, values)

	for i := range coeffs {
		// Freq is in cycles per sample
		freq := math.Abs(fft.Freq(i)) / b.IntervalMinutes
		if freq < b.LowFreq || freq > b.HighFreq {
			coeffs[i] = 0
		}
	}

	// Sequence is unnormalized
	filtered := fft.Sequence(nil, coeffs)
	scale := 1 / float64(n)
	for i := range filtered {
		filtered[i] *= scale
	}

	return filtered, nil
}
