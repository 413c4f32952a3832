// Package lunar annotates instants with the moon's phase, built on the
// Meeus lunar and solar position series, and classifies the spring/neap
// tidal regime from the instants of the principal lunar phases.
package lunar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/solar"
)

// SynodicMonth is the mean length of a lunation in days
const SynodicMonth = 29.530588853

// kmPerAU converts the solar radius vector to the units of the lunar distance
const kmPerAU = 149597870.7

// principalWidth is the half-width in degrees of elongation within which
// a phase is named after the nearest principal phase. The moon gains about
// 12.2 degrees on the sun per day, so this is roughly half a day either side.
const principalWidth = 6.0

// MoonPhase describes the moon at one instant
type MoonPhase struct {
	Phase        float64 `json:"phase"`        // fraction of the lunation [0,1): 0=new, 0.5=full
	Elongation   float64 `json:"elongation"`   // moon minus sun ecliptic longitude, degrees [0,360)
	Illumination float64 `json:"illumination"` // illuminated fraction of the disk [0,1]
	AgeDays      float64 `json:"age_days"`     // mean days since new moon [0,SynodicMonth)
	IsWaxing     bool    `json:"is_waxing"`
	PhaseName    string  `json:"phase_name"`
}

// Calculate returns the moon phase at t. Illumination comes from the
// geocentric phase angle, so it is not exactly zero at new moon when the
// moon passes above or below the sun.
func Calculate(t time.Time) MoonPhase {
	jde := julian.TimeToJD(t.UTC())
	T := base.J2000Century(jde)

	moonLon, moonLat, moonDist := moonposition.Position(jde)
	sunLon := solar.ApparentLongitude(T)
	sunDist := solar.Radius(T) * kmPerAU

	elongation := (moonLon - sunLon).Mod1().Deg()
	illumination := base.Illuminated(moonillum.PhaseAngleEcl(moonLon, moonLat, moonDist, sunLon, sunDist))
	phase := elongation / 360

	return MoonPhase{
		Phase:        phase,
		Elongation:   elongation,
		Illumination: illumination,
		AgeDays:      phase * SynodicMonth,
		IsWaxing:     elongation < 180,
		PhaseName:    phaseName(elongation),
	}
}

// phase names in order of elongation, principal phases at even indexes
var phaseNames = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Third Quarter",
	"Waning Crescent",
}

func phaseName(elongation float64) string {
	quarter := math.Round(elongation / 90)
	if math.Abs(elongation-quarter*90) <= principalWidth {
		return phaseNames[int(quarter)%4*2]
	}
	return phaseNames[int(elongation/90)*2+1]
}
