package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelagiclabs/telemetry-simulator/core"
	"github.com/pelagiclabs/telemetry-simulator/model"
)

// Prints pulse-collision probability for growing tag counts, comparing the
// closed-form estimate against Monte-Carlo sampling. Used to pick how many
// co-located tags a delay-range setting can tolerate.
func main() {
	maxTags := flag.Int("max-tags", 10, "evaluate tag counts 1..max-tags")
	burst := flag.Float64("burst", 5.0, "signal burst duration (s)")
	delayMin := flag.Float64("delay-min", 60, "minimum inter-transmission delay (s)")
	delayMax := flag.Float64("delay-max", 180, "maximum inter-transmission delay (s)")
	window := flag.Float64("window", 0, "observation window (s); 0 uses the analytic default")
	samples := flag.Int("samples", 2000, "Monte-Carlo samples per tag count")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	delay := model.DelayRange{Min: *delayMin, Max: *delayMax}
	w := *window
	if w <= 0 {
		w = core.DefaultCollisionWindowCycles * (delay.Mean() + *burst)
	}
	rng := core.NewRand(*seed)

	fmt.Printf("burst=%.1fs delay=[%.0f,%.0f]s window=%.0fs samples=%d\n\n",
		*burst, delay.Min, delay.Max, w, *samples)
	fmt.Printf("%6s %12s %12s\n", "tags", "analytic", "sampled")

	for tags := 1; tags <= *maxTags; tags++ {
		analytic, err := core.CollisionProbabilityAnalyticWindow(tags, *burst, delay, w)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analytic estimate failed: %v\n", err)
			os.Exit(1)
		}
		sampled, err := core.CollisionProbabilityMonteCarlo(rng, tags, *burst, delay, w, *samples)
		if err != nil {
			fmt.Fprintf(os.Stderr, "monte-carlo estimate failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%6d %12.4f %12.4f\n", tags, analytic, sampled)
	}
}
