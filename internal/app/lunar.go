package app

import (
	"fmt"

	"github.com/chrissnell/remotetide/internal/tide"
	"github.com/chrissnell/remotetide/pkg/lunar"
)

// Names of the statistics rows added when lunar annotation is enabled
const (
	StatMoonPhase  = "Moon phase at max high tide"
	StatTideRegime = "Tide regime at max high tide"
)

// lunarRows places the max high tide in the lunar cycle. Nothing is added
// unless lunar annotation is enabled.
func (a *App) lunarRows(result *tide.Result) []tide.StatRow {
	if !a.cfg.Lunar.Enabled {
		return nil
	}
	return LunarRows(result.Stats.MaxHighTide, a.cfg.Lunar.RegimeWindowDays)
}

// LunarRows returns the moon phase and spring/neap regime at the time of
// the given extreme, or two unavailable rows when there is none
func LunarRows(high *tide.Extreme, windowDays float64) []tide.StatRow {
	if high == nil {
		note := "no high tide detected"
		return []tide.StatRow{
			{Name: StatMoonPhase, Note: note},
			{Name: StatTideRegime, Note: note},
		}
	}

	phase := lunar.Calculate(high.Time)
	regime := lunar.Regime(high.Time, windowDays)

	return []tide.StatRow{
		{
			Name:      StatMoonPhase,
			Text:      phase.PhaseName,
			Available: true,
			Note:      fmt.Sprintf("%.0f%% illuminated", phase.Illumination*100),
		},
		{
			Name:      StatTideRegime,
			Text:      string(regime.Regime),
			Available: true,
			Note: fmt.Sprintf("%.1f days from new/full moon, %.1f days from quarter",
				regime.DaysFromSyzygy, regime.DaysFromQuadrature),
		},
	}
}
