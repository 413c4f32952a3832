package lunar

import (
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
)

// elongationError is the angular distance between an elongation and a target
func elongationError(elongation, target float64) float64 {
	d := math.Mod(math.Abs(elongation-target), 360)
	return math.Min(d, 360-d)
}

func TestCalculatePrincipalPhases(t *testing.T) {
	tests := []struct {
		name              string
		time              time.Time
		expectedPhaseName string
		elongation        float64
		illuminationRange [2]float64 // min, max
		isWaxing          bool
	}{
		{
			// Jan 21, 2023 20:53 UTC
			name:              "new moon",
			time:              time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC),
			expectedPhaseName: "New Moon",
			elongation:        0,
			illuminationRange: [2]float64{0, 0.01},
		},
		{
			// Jan 28, 2023 15:19 UTC
			name:              "first quarter",
			time:              time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC),
			expectedPhaseName: "First Quarter",
			elongation:        90,
			illuminationRange: [2]float64{0.45, 0.55},
			isWaxing:          true,
		},
		{
			// Feb 5, 2023 18:29 UTC
			name:              "full moon",
			time:              time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC),
			expectedPhaseName: "Full Moon",
			elongation:        180,
			illuminationRange: [2]float64{0.99, 1},
		},
		{
			// Feb 13, 2023 16:01 UTC
			name:              "third quarter",
			time:              time.Date(2023, 2, 13, 16, 1, 0, 0, time.UTC),
			expectedPhaseName: "Third Quarter",
			elongation:        270,
			illuminationRange: [2]float64{0.45, 0.55},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Calculate(tt.time)

			if result.PhaseName != tt.expectedPhaseName {
				t.Errorf("PhaseName = %q, expected %q", result.PhaseName, tt.expectedPhaseName)
			}
			if e := elongationError(result.Elongation, tt.elongation); e > 0.5 {
				t.Errorf("Elongation = %.3f, expected within 0.5 of %.0f", result.Elongation, tt.elongation)
			}
			if result.Illumination < tt.illuminationRange[0] || result.Illumination > tt.illuminationRange[1] {
				t.Errorf("Illumination = %.3f, expected in range [%.2f, %.2f]",
					result.Illumination, tt.illuminationRange[0], tt.illuminationRange[1])
			}
			// waxing is undefined exactly at new and full
			if tt.elongation == 90 || tt.elongation == 270 {
				if result.IsWaxing != tt.isWaxing {
					t.Errorf("IsWaxing = %v, expected %v", result.IsWaxing, tt.isWaxing)
				}
			}
		})
	}
}

// A high tide annotated at a full moon instant reports a full disk,
// whichever lunation it falls in.
func TestCalculateAtFullMoons(t *testing.T) {
	year := 2024.0
	for k := 0; k < 13; k++ {
		jde := moonphase.Full(year + float64(k)*lunationYears)
		ts := julian.JDToTime(jde)
		result := Calculate(ts)

		if result.PhaseName != "Full Moon" {
			t.Errorf("%s: PhaseName = %q, expected Full Moon", ts, result.PhaseName)
		}
		if result.Illumination < 0.99 {
			t.Errorf("%s: Illumination = %.4f, expected above 0.99", ts, result.Illumination)
		}
		if e := elongationError(result.Elongation, 180); e > 0.2 {
			t.Errorf("%s: Elongation = %.3f, expected within 0.2 of 180", ts, result.Elongation)
		}
	}
}

func TestCalculateBetweenPhases(t *testing.T) {
	// new moon Jan 21, 2023 20:53 UTC
	newMoon := time.Date(2023, 1, 21, 20, 53, 0, 0, time.UTC)

	tests := []struct {
		days     float64
		name     string
		waxing   bool
		minIllum float64
		maxIllum float64
	}{
		{days: 3.5, name: "Waxing Crescent", waxing: true, minIllum: 0.05, maxIllum: 0.45},
		{days: 11, name: "Waxing Gibbous", waxing: true, minIllum: 0.55, maxIllum: 0.99},
		{days: 18.5, name: "Waning Gibbous", minIllum: 0.55, maxIllum: 0.99},
		{days: 26, name: "Waning Crescent", minIllum: 0.05, maxIllum: 0.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newMoon.Add(time.Duration(tt.days * float64(24*time.Hour)))
			result := Calculate(ts)

			if result.PhaseName != tt.name {
				t.Errorf("PhaseName = %q, expected %q", result.PhaseName, tt.name)
			}
			if result.IsWaxing != tt.waxing {
				t.Errorf("IsWaxing = %v, expected %v", result.IsWaxing, tt.waxing)
			}
			if result.Illumination < tt.minIllum || result.Illumination > tt.maxIllum {
				t.Errorf("Illumination = %.3f, expected in range [%.2f, %.2f]",
					result.Illumination, tt.minIllum, tt.maxIllum)
			}
			if math.Abs(result.AgeDays-tt.days) > 2 {
				t.Errorf("AgeDays = %.2f, expected near %.1f", result.AgeDays, tt.days)
			}
		})
	}
}

func TestPhaseName(t *testing.T) {
	tests := []struct {
		elongation float64
		expected   string
	}{
		{0, "New Moon"},
		{5.9, "New Moon"},
		{354.5, "New Moon"},
		{6.1, "Waxing Crescent"},
		{89, "First Quarter"},
		{120, "Waxing Gibbous"},
		{185, "Full Moon"},
		{200, "Waning Gibbous"},
		{276, "Third Quarter"},
		{290, "Waning Crescent"},
	}

	for _, tt := range tests {
		if got := phaseName(tt.elongation); got != tt.expected {
			t.Errorf("phaseName(%.1f) = %q, expected %q", tt.elongation, got, tt.expected)
		}
	}
}

func TestRegime(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected TideRegime
	}{
		{
			// Full moon: Feb 5, 2023 18:29 UTC
			name:     "full moon",
			time:     time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC),
			expected: RegimeSpring,
		},
		{
			name:     "two days after new moon",
			time:     time.Date(2023, 1, 23, 20, 0, 0, 0, time.UTC),
			expected: RegimeSpring,
		},
		{
			// First quarter: Jan 28, 2023 15:19 UTC
			name:     "first quarter",
			time:     time.Date(2023, 1, 28, 15, 19, 0, 0, time.UTC),
			expected: RegimeNeap,
		},
		{
			// Third quarter: Feb 13, 2023 16:01 UTC
			name:     "day before third quarter",
			time:     time.Date(2023, 2, 12, 16, 0, 0, 0, time.UTC),
			expected: RegimeNeap,
		},
		{
			name:     "between first quarter and full moon",
			time:     time.Date(2023, 2, 1, 17, 0, 0, 0, time.UTC),
			expected: RegimeIntermediate,
		},
		{
			// New moon: Dec 30, 2024 22:27 UTC, in the previous year
			name:     "across a year boundary",
			time:     time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC),
			expected: RegimeSpring,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Regime(tt.time, 0)
			if info.Regime != tt.expected {
				t.Errorf("Regime = %q, expected %q (%.2f days from syzygy, %.2f from quadrature)",
					info.Regime, tt.expected, info.DaysFromSyzygy, info.DaysFromQuadrature)
			}
		})
	}
}

func TestRegimePhaseInstants(t *testing.T) {
	// Full moon: Feb 5, 2023 18:29 UTC
	full := time.Date(2023, 2, 5, 18, 29, 0, 0, time.UTC)
	info := Regime(full.Add(30*time.Hour), DefaultRegimeWindowDays)

	if diff := info.NearestSyzygy.Sub(full); diff < -10*time.Minute || diff > 10*time.Minute {
		t.Errorf("NearestSyzygy = %s, expected within 10 minutes of %s", info.NearestSyzygy, full)
	}
	if math.Abs(info.DaysFromSyzygy-1.25) > 0.01 {
		t.Errorf("DaysFromSyzygy = %.3f, expected 1.25", info.DaysFromSyzygy)
	}
	if info.Regime != RegimeSpring {
		t.Errorf("Regime = %q, expected spring", info.Regime)
	}
}

func TestRegimeWindow(t *testing.T) {
	// three days after the Feb 5, 2023 full moon
	ts := time.Date(2023, 2, 8, 18, 29, 0, 0, time.UTC)

	if r := Regime(ts, 2.5).Regime; r != RegimeIntermediate {
		t.Errorf("2.5 day window: Regime = %q, expected intermediate", r)
	}
	if r := Regime(ts, 3.5).Regime; r != RegimeSpring {
		t.Errorf("3.5 day window: Regime = %q, expected spring", r)
	}
}
