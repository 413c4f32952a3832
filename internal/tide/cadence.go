package tide

import (
	"math"
	"time"
)

// CadencePolicy decides what happens when the sampling cadence is irregular
type CadencePolicy string

const (
	// CadenceWarn logs irregular sampling and processes the series as is
	CadenceWarn CadencePolicy = "warn"

	// CadenceReject fails the run with an IrregularSamplingError
	CadenceReject CadencePolicy = "reject"
)

// CadenceReport describes how closely a series follows its expected cadence
type CadenceReport struct {
	Interval       time.Duration
	Steps          int
	Irregular      int
	MaxGap         time.Duration
	FirstIrregular time.Time
}

// Regular reports whether every step matched the expected cadence
func (r CadenceReport) Regular() bool {
	return r.Irregular == 0
}

// CheckCadence counts the steps of series whose spacing differs from interval
// by more than tolerance*interval. Duplicate timestamps count as irregular.
func CheckCadence(series Series, interval time.Duration, tolerance float64) CadenceReport {
	report := CadenceReport{Interval: interval}
	if len(series) < 2 {
		return report
	}

	allowed := tolerance * float64(interval)
	for i := 1; i < len(series); i++ {
		step := series[i].Time.Sub(series[i-1].Time)
		report.Steps++
		if step > report.MaxGap {
			report.MaxGap = step
		}
		if step <= 0 || math.Abs(float64(step-interval)) > allowed {
			if report.Irregular == 0 {
				report.FirstIrregular = series[i].Time
			}
			report.Irregular++
		}
	}

	return report
}

// Err returns an IrregularSamplingError for an irregular report
func (r CadenceReport) Err() error {
	if r.Regular() {
		return nil
	}
	return &IrregularSamplingError{
		Interval:  r.Interval,
		Irregular: r.Irregular,
		MaxGap:    r.MaxGap,
		FirstAt:   r.FirstIrregular,
	}
}
