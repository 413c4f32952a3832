package tide

import (
	"math"
	"time"
)

// Extrema labels written to the annotated series
const (
	LabelMax = "Max"
	LabelMin = "Min"
)

// StatisticsChannel selects which values the extreme statistics are read from
type StatisticsChannel string

const (
	// ChannelObserved uses the raw (or unit-converted) measurements
	ChannelObserved StatisticsChannel = "observed"

	// ChannelFiltered uses the denoised values
	ChannelFiltered StatisticsChannel = "filtered"
)

// Config holds every tunable of a pipeline run
type Config struct {
	Filter FilterConfig

	// MinExtremaSpacing is the minimum distance in samples between two
	// extrema of the same kind (144 samples is 12 hours at 5 minutes)
	MinExtremaSpacing int

	// TroughFloor excludes troughs below it from the minimum low tide
	TroughFloor float64

	// Conversion is applied to raw values before filtering when set
	Conversion *Converter

	// NoExtremumLabel marks annotated rows that are neither peak nor trough
	NoExtremumLabel string

	PlateauPeaks      bool
	CadencePolicy     CadencePolicy
	CadenceTolerance  float64
	StatisticsChannel StatisticsChannel
}

// DefaultConfig returns the settings used for 5-minute tide gauge exports
func DefaultConfig() Config {
	return Config{
		Filter: FilterConfig{
			Strategy:                FilterTypeBandpass,
			SamplingIntervalMinutes: 5,
			BandLowPeriodHours:      4,
			BandHighPeriodHours:     12,
			WindowSize:              25,
			PolyOrder:               3,
		},
		MinExtremaSpacing: 144,
		TroughFloor:       math.Inf(-1),
		NoExtremumLabel:   "None",
		CadencePolicy:     CadenceWarn,
		CadenceTolerance:  0.5,
		StatisticsChannel: ChannelObserved,
	}
}

// SamplingInterval returns the assumed cadence as a duration
func (c Config) SamplingInterval() time.Duration {
	return time.Duration(c.Filter.SamplingIntervalMinutes * float64(time.Minute))
}

// Validate checks the configuration without building a filter
func (c Config) Validate() error {
	if !(c.Filter.SamplingIntervalMinutes > 0) {
		return &InvalidParameterError{
			Parameter: "sampling_interval_minutes",
			Value:     c.Filter.SamplingIntervalMinutes,
			Reason:    "must be a positive number of minutes",
		}
	}
	if c.Filter.WindowSize < 1 {
		return &InvalidParameterError{
			Parameter: "window_size",
			Value:     c.Filter.WindowSize,
			Reason:    "must be at least 1",
		}
	}
	if c.MinExtremaSpacing < 1 {
		return &InvalidParameterError{
			Parameter: "min_extrema_spacing_samples",
			Value:     c.MinExtremaSpacing,
			Reason:    "must be at least 1",
		}
	}
	if math.IsNaN(c.TroughFloor) {
		return &InvalidParameterError{
			Parameter: "trough_floor",
			Value:     c.TroughFloor,
			Reason:    "must be a number",
		}
	}
	if c.Conversion != nil {
		if math.IsNaN(c.Conversion.Scale) || math.IsInf(c.Conversion.Scale, 0) ||
			math.IsNaN(c.Conversion.Offset) || math.IsInf(c.Conversion.Offset, 0) {
			return &InvalidParameterError{
				Parameter: "unit_conversion",
				Value:     *c.Conversion,
				Reason:    "scale and offset must be finite",
			}
		}
	}
	if c.NoExtremumLabel == LabelMax || c.NoExtremumLabel == LabelMin {
		return &InvalidParameterError{
			Parameter: "no_extremum_label",
			Value:     c.NoExtremumLabel,
			Reason:    "must differ from the extrema labels",
		}
	}
	switch c.CadencePolicy {
	case CadenceWarn, CadenceReject:
	default:
		return &InvalidParameterError{
			Parameter: "cadence_policy",
			Value:     c.CadencePolicy,
			Reason:    `must be "warn" or "reject"`,
		}
	}
	if !(c.CadenceTolerance >= 0) {
		return &InvalidParameterError{
			Parameter: "cadence_tolerance",
			Value:     c.CadenceTolerance,
			Reason:    "must not be negative",
		}
	}
	switch c.StatisticsChannel {
	case ChannelObserved, ChannelFiltered:
	default:
		return &InvalidParameterError{
			Parameter: "statistics_channel",
			Value:     c.StatisticsChannel,
			Reason:    `must be "observed" or "filtered"`,
		}
	}
	return nil
}
