package core

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

// DefaultCollisionWindowCycles sizes the representative observation window
// for the three-argument analytic estimate: the window spans this many
// expected transmission cycles.
const DefaultCollisionWindowCycles = 60

// CollisionProbabilityAnalytic estimates the probability that at least one
// pairwise burst overlap occurs among numTags co-located transmitters within
// a representative window of DefaultCollisionWindowCycles expected cycles.
// It uses an idealized-independence closed form; see
// CollisionProbabilityAnalyticWindow.
func CollisionProbabilityAnalytic(numTags int, burst float64, delay model.DelayRange) (float64, error) {
	if err := validateCollisionParams(numTags, burst, delay); err != nil {
		return 0, err
	}
	window := DefaultCollisionWindowCycles * (delay.Mean() + burst)
	return CollisionProbabilityAnalyticWindow(numTags, burst, delay, window)
}

// CollisionProbabilityAnalyticWindow is the closed-form path. Each tag emits
// bursts of length b once per expected cycle m = mean(delay)+b. Under
// independence, a given pair of tags accumulates (W/m)·(2b/m) expected
// overlaps over a window W, so with C(n,2) pairs the no-collision probability
// is approximated as exp(-λ) with λ summed over pairs. The approximation is
// good while 2b ≪ m and degrades gracefully toward 1 otherwise.
func CollisionProbabilityAnalyticWindow(numTags int, burst float64, delay model.DelayRange, window float64) (float64, error) {
	if err := validateCollisionParams(numTags, burst, delay); err != nil {
		return 0, err
	}
	if window <= 0 {
		return 0, fmt.Errorf("%w: window must be positive, got %v", ErrValidation, window)
	}
	if numTags == 1 {
		return 0, nil
	}

	m := delay.Mean() + burst
	pairs := float64(numTags) * float64(numTags-1) / 2
	lambda := pairs * (window / m) * (2 * burst / m)
	p := 1 - math.Exp(-lambda)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p, nil
}

// CollisionProbabilityMonteCarlo estimates the same probability by sampling:
// each sample simulates full delay sequences for every tag across the window
// and checks whether any two bursts from different tags overlap in time.
// Slower than the closed form but exact in the limit of many samples.
func CollisionProbabilityMonteCarlo(rng *rand.Rand, numTags int, burst float64, delay model.DelayRange, window float64, samples int) (float64, error) {
	if rng == nil {
		return 0, fmt.Errorf("%w: nil random generator", ErrValidation)
	}
	if err := validateCollisionParams(numTags, burst, delay); err != nil {
		return 0, err
	}
	if window <= 0 {
		return 0, fmt.Errorf("%w: window must be positive, got %v", ErrValidation, window)
	}
	if samples <= 0 {
		return 0, fmt.Errorf("%w: samples must be positive, got %d", ErrValidation, samples)
	}
	if numTags == 1 {
		return 0, nil
	}

	type burstInterval struct {
		start float64
		tag   int
	}

	hits := 0
	for s := 0; s < samples; s++ {
		var bursts []burstInterval
		for tag := 0; tag < numTags; tag++ {
			// Random phase so tags are not artificially synchronized at t=0.
			t := rng.Float64() * (delay.Max + burst)
			for t < window {
				bursts = append(bursts, burstInterval{start: t, tag: tag})
				t += burst + delay.Min + rng.Float64()*(delay.Max-delay.Min)
			}
		}

		sort.Slice(bursts, func(i, j int) bool { return bursts[i].start < bursts[j].start })

		collided := false
		for i := 1; i < len(bursts); i++ {
			prev, cur := bursts[i-1], bursts[i]
			if cur.tag != prev.tag && cur.start < prev.start+burst {
				collided = true
				break
			}
		}
		if collided {
			hits++
		}
	}
	return float64(hits) / float64(samples), nil
}

func validateCollisionParams(numTags int, burst float64, delay model.DelayRange) error {
	if numTags < 1 {
		return fmt.Errorf("%w: num tags must be at least 1, got %d", ErrValidation, numTags)
	}
	if burst <= 0 {
		return fmt.Errorf("%w: burst duration must be positive, got %v", ErrValidation, burst)
	}
	if err := delay.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
