package lunar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
)

// TideRegime is the position of a time in the spring/neap cycle
type TideRegime string

const (
	// RegimeSpring is close to a new or full moon: the largest tidal range
	RegimeSpring TideRegime = "spring"

	// RegimeNeap is close to a quarter moon: the smallest tidal range
	RegimeNeap TideRegime = "neap"

	RegimeIntermediate TideRegime = "intermediate"
)

// DefaultRegimeWindowDays is the distance from a principal phase that
// still counts as spring or neap
const DefaultRegimeWindowDays = 2.5

// RegimeInfo places a time relative to the nearest principal phases
type RegimeInfo struct {
	Regime TideRegime `json:"regime"`

	// NearestSyzygy is the closest new or full moon
	NearestSyzygy time.Time `json:"nearest_syzygy"`

	// NearestQuadrature is the closest first or third quarter
	NearestQuadrature time.Time `json:"nearest_quadrature"`

	DaysFromSyzygy     float64 `json:"days_from_syzygy"`
	DaysFromQuadrature float64 `json:"days_from_quadrature"`
}

// one lunation expressed in years, used to step between phase estimates
const lunationYears = 1 / 12.3685

// Regime classifies t as spring, neap or intermediate. A non-positive
// window uses DefaultRegimeWindowDays.
func Regime(t time.Time, windowDays float64) RegimeInfo {
	if windowDays <= 0 {
		windowDays = DefaultRegimeWindowDays
	}

	jd := julian.TimeToJD(t.UTC())
	year := decimalYear(t.UTC())

	syzygy, syzygyDays := nearestPhase(jd, year, moonphase.New, moonphase.Full)
	quadrature, quadratureDays := nearestPhase(jd, year, moonphase.First, moonphase.Last)

	info := RegimeInfo{
		Regime:             RegimeIntermediate,
		NearestSyzygy:      julian.JDToTime(syzygy),
		NearestQuadrature:  julian.JDToTime(quadrature),
		DaysFromSyzygy:     syzygyDays,
		DaysFromQuadrature: quadratureDays,
	}

	switch {
	case syzygyDays <= windowDays && syzygyDays <= quadratureDays:
		info.Regime = RegimeSpring
	case quadratureDays <= windowDays:
		info.Regime = RegimeNeap
	}
	return info
}

// nearestPhase returns the Julian day of the phase instant closest to jd
// among the given phase functions, checking the neighbouring lunations too
func nearestPhase(jd, year float64, phases ...func(float64) float64) (float64, float64) {
	best, bestDays := 0.0, math.Inf(1)
	for _, phase := range phases {
		for _, offset := range []float64{-lunationYears, 0, lunationYears} {
			instant := phase(year + offset)
			if days := math.Abs(instant - jd); days < bestDays {
				best, bestDays = instant, days
			}
		}
	}
	return best, bestDays
}

func decimalYear(t time.Time) float64 {
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + t.Sub(start).Hours()/end.Sub(start).Hours()
}
