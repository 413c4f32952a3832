package tide

import (
	"fmt"
	"time"
)

// EmptyInputError is returned when there is no usable data to process.
// Callers treat it as "no work" rather than a failure.
type EmptyInputError struct {
	Sources int
	Reason  string
}

func (e *EmptyInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("no usable data in %d source(s): %s", e.Sources, e.Reason)
	}
	return fmt.Sprintf("no usable data in %d source(s)", e.Sources)
}

// InvalidParameterError is returned when the engine is configured with a
// value it cannot run with
type InvalidParameterError struct {
	Parameter string
	Value     any
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Parameter, e.Value, e.Reason)
}

// ExtremaKind names one of the two extrema sets
type ExtremaKind string

const (
	KindPeak   ExtremaKind = "peak"
	KindTrough ExtremaKind = "trough"
)

// InsufficientDataError marks a statistic that could not be computed because
// too few extrema of a kind were detected
type InsufficientDataError struct {
	Statistic string
	Kind      ExtremaKind
	Found     int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s unavailable: found %d %s(s), need at least %d",
		e.Statistic, e.Found, e.Kind, e.Required)
}

// NoValidTroughError marks the minimum low tide as unavailable because no
// trough reached the validity floor
type NoValidTroughError struct {
	Floor   float64
	Troughs int
}

func (e *NoValidTroughError) Error() string {
	return fmt.Sprintf("min low tide unavailable: none of %d trough(s) at or above floor %g", e.Troughs, e.Floor)
}

// IrregularSamplingError is returned by the reject cadence policy
type IrregularSamplingError struct {
	Interval  time.Duration
	Irregular int
	MaxGap    time.Duration
	FirstAt   time.Time
}

func (e *IrregularSamplingError) Error() string {
	return fmt.Sprintf("%d sampling step(s) deviate from the %s cadence (first at %s, largest gap %s)",
		e.Irregular, e.Interval, e.FirstAt.Format(time.RFC3339), e.MaxGap)
}
