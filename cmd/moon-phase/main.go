package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/remotetide/pkg/lunar"
)

func main() {
	var timeStr string
	flag.StringVar(&timeStr, "time", "", "UTC time to calculate phase for (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	window := flag.Float64("window", lunar.DefaultRegimeWindowDays, "Days from a principal phase still counted as spring or neap")
	flag.Parse()

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	phase := lunar.Calculate(t)
	regime := lunar.Regime(t, *window)

	fmt.Printf("Moon Phase for %s\n", t.Format(time.RFC3339))
	fmt.Printf("  Phase Name:   %s\n", phase.PhaseName)
	fmt.Printf("  Illumination: %.1f%%\n", phase.Illumination*100)
	fmt.Printf("  Age:          %.1f days\n", phase.AgeDays)
	fmt.Printf("  Tide Regime:  %s\n", regime.Regime)
	fmt.Printf("  Syzygy:       %s (%.1f days)\n", regime.NearestSyzygy.Format(time.RFC3339), regime.DaysFromSyzygy)
	fmt.Printf("  Quadrature:   %s (%.1f days)\n", regime.NearestQuadrature.Format(time.RFC3339), regime.DaysFromQuadrature)
}
