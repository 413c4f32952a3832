package tide

import (
	"math"
	"testing"
	"time"
)

var testStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// sineValues returns amplitude*sin(2πi/periodSamples) for i in [0, n)
func sineValues(n int, periodSamples, amplitude float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(i)/periodSamples)
	}
	return out
}

// seriesOf builds a series sampled every 5 minutes from testStart
func seriesOf(values []float64) Series {
	series := make(Series, len(values))
	for i, v := range values {
		series[i] = Sample{Time: testStart.Add(time.Duration(i) * 5 * time.Minute), Value: v}
	}
	return series
}

func maxAbs(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if math.Abs(v) > m {
			m = math.Abs(v)
		}
	}
	return m
}

func requireNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > eps {
			t.Fatalf("index %d: got %v, want %v (eps %v)", i, got[i], want[i], eps)
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
