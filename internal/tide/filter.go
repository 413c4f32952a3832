package tide

// Filter denoises a value channel. Implementations return a slice of the same
// length as the input with indices aligned to it.
type Filter interface {
	// Name identifies the strategy in logs and exported metadata
	Name() string

	// Apply returns the filtered values without modifying the input
	Apply(values []float64) ([]float64, error)
}

// FilterType identifies the filtering strategy
type FilterType string

const (
	// FilterTypeBandpass keeps the tidal frequency band of the spectrum
	FilterTypeBandpass FilterType = "bandpass"

	// FilterTypePolynomial uses Savitzky-Golay local polynomial regression
	FilterTypePolynomial FilterType = "polynomial"
)

// FilterConfig selects a filtering strategy and its parameters
type FilterConfig struct {
	Strategy FilterType

	// SamplingIntervalMinutes is the cadence assumed by the band-pass filter
	SamplingIntervalMinutes float64

	// BandLowPeriodHours and BandHighPeriodHours bound the tidal periods
	// kept by the band-pass filter (e.g. 4 and 12)
	BandLowPeriodHours  float64
	BandHighPeriodHours float64

	// WindowSize (odd, in samples) and PolyOrder drive polynomial smoothing
	WindowSize int
	PolyOrder  int
}

// NewFilter builds the filter selected by cfg.Strategy
func NewFilter(cfg FilterConfig) (Filter, error) {
	switch cfg.Strategy {
	case FilterTypeBandpass:
		return NewBandPassFilter(cfg.SamplingIntervalMinutes, cfg.BandLowPeriodHours, cfg.BandHighPeriodHours)
	case FilterTypePolynomial:
		return NewPolynomialFilter(cfg.WindowSize, cfg.PolyOrder)
	default:
		return nil, &InvalidParameterError{
			Parameter: "filter_strategy",
			Value:     cfg.Strategy,
			Reason:    `must be "bandpass" or "polynomial"`,
		}
	}
}
