package tide

import (
	"fmt"

	"go.uber.org/zap"
)

// Pipeline runs merge, cleaning, conversion, filtering, extrema detection and
// statistics over a batch of per-source series
type Pipeline struct {
	cfg    Config
	filter Filter
	logger *zap.SugaredLogger
}

// Result holds everything produced by one pipeline run. Converted is nil when
// no unit conversion is configured. Every slice is index-aligned with Series.
type Result struct {
	Series    Series
	Converted []float64
	Filtered  []float64
	Extrema   ExtremaSet
	Stats     TidalStats
	Cadence   CadenceReport
	Dropped   int

	FilterName      string
	NoExtremumLabel string
}

// NewPipeline validates cfg and builds its filter
func NewPipeline(cfg Config, logger *zap.SugaredLogger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filter, err := NewFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:    cfg,
		filter: filter,
		logger: logger,
	}, nil
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Run processes the given sources. Merge, cleaning, cadence and filter
// failures abort the run; statistics failures are reported in Result.Stats.
func (p *Pipeline) Run(sources ...Series) (*Result, error) {
	merged, err := Merge(sources...)
	if err != nil {
		return nil, err
	}

	cleaned, dropped := DropNonFinite(merged)
	if dropped > 0 {
		p.logger.Warnf("dropped %d non-finite sample(s) of %d", dropped, len(merged))
	}
	if len(cleaned) == 0 {
		return nil, &EmptyInputError{Sources: len(sources), Reason: "every sample is non-finite"}
	}

	p.logger.Debugf("merged %d samples from %d source(s), %s to %s",
		len(cleaned), len(sources),
		cleaned[0].Time.Format("2006-01-02 15:04"),
		cleaned[len(cleaned)-1].Time.Format("2006-01-02 15:04"))

	cadence := CheckCadence(cleaned, p.cfg.SamplingInterval(), p.cfg.CadenceTolerance)
	if !cadence.Regular() {
		if p.cfg.CadencePolicy == CadenceReject {
			return nil, cadence.Err()
		}
		p.logger.Warnf("%d of %d sampling step(s) deviate from the %s cadence (largest gap %s)",
			cadence.Irregular, cadence.Steps, cadence.Interval, cadence.MaxGap)
	}

	result := &Result{
		Series:          cleaned,
		Cadence:         cadence,
		Dropped:         dropped,
		FilterName:      p.filter.Name(),
		NoExtremumLabel: p.cfg.NoExtremumLabel,
	}

	observed := cleaned
	if p.cfg.Conversion != nil {
		observed = p.cfg.Conversion.Apply(cleaned)
		result.Converted = observed.Values()
	}

	filtered, err := p.filter.Apply(observed.Values())
	if err != nil {
		return nil, fmt.Errorf("%s filter failed: %w", p.filter.Name(), err)
	}
	result.Filtered = filtered

	result.Extrema = Detect(filtered, DetectOptions{
		MinSpacing: p.cfg.MinExtremaSpacing,
		Plateaus:   p.cfg.PlateauPeaks,
	})
	p.logger.Debugf("detected %d peak(s) and %d trough(s) with %s filter",
		len(result.Extrema.Peaks), len(result.Extrema.Troughs), p.filter.Name())

	statsSeries := observed
	if p.cfg.StatisticsChannel == ChannelFiltered {
		statsSeries = make(Series, len(observed))
		for i, sample := range observed {
			statsSeries[i] = Sample{Time: sample.Time, Value: filtered[i]}
		}
	}

	result.Stats = ComputeStatistics(statsSeries, result.Extrema, p.cfg.TroughFloor)
	for _, failure := range result.Stats.Failures {
		p.logger.Warnf("statistic unavailable: %v", failure)
	}

	return result, nil
}
