package core

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

// TurnDistribution draws the turning angle (radians) applied to the previous
// heading at each step of a correlated random walk.
type TurnDistribution interface {
	Draw(rng *rand.Rand) float64
}

// NormalTurn draws turning angles from a zero-mean normal distribution.
// Small StdDev produces strong directional persistence.
type NormalTurn struct {
	StdDev float64
}

func (n NormalTurn) Draw(rng *rand.Rand) float64 {
	return rng.NormFloat64() * n.StdDev
}

// UniformTurn draws turning angles uniformly from [-HalfWidth, +HalfWidth].
type UniformTurn struct {
	HalfWidth float64
}

func (u UniformTurn) Draw(rng *rand.Rand) float64 {
	return (rng.Float64()*2 - 1) * u.HalfWidth
}

// DefaultMaxRetries bounds the rejection-sampling loop per step. Exhaustion
// is a hard BoundaryViolationError, never a silently shortened path.
const DefaultMaxRetries = 100

// PathGenerator produces boundary-constrained correlated random walks.
// Each step advances StepLength along the previous heading perturbed by a
// draw from Turn; proposals leaving the region are redrawn up to MaxRetries
// times.
type PathGenerator struct {
	Boundary   BoundaryOracle
	StepLength float64
	NumSteps   int

	// MaxRetries bounds proposal redraws per step; zero means
	// DefaultMaxRetries.
	MaxRetries int

	Turn TurnDistribution

	// InitialHeading fixes the first heading (radians) when non-nil;
	// otherwise it is drawn uniformly from [0, 2π).
	InitialHeading *float64

	// OnRejection, when set, is invoked once per rejected proposal. Used for
	// instrumentation; must be cheap.
	OnRejection func(step int)
}

// Generate runs the walk from start and returns NumSteps+1 path points
// (origin included). Every returned point satisfies the boundary oracle.
func (g *PathGenerator) Generate(rng *rand.Rand, start model.Point) (model.Path, error) {
	if err := g.validate(rng); err != nil {
		return nil, err
	}
	if !g.Boundary.Contains(start) {
		return nil, &BoundaryViolationError{
			Step:      0,
			Attempted: start,
			Reason:    "start point outside permitted region",
		}
	}

	retries := g.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	segOracle, hasSegments := g.Boundary.(SegmentOracle)

	heading := rng.Float64() * 2 * math.Pi
	if g.InitialHeading != nil {
		heading = *g.InitialHeading
	}

	path := make(model.Path, 0, g.NumSteps+1)
	path = append(path, model.PathPoint{Point: start, Step: 0})
	cur := start

	for step := 1; step <= g.NumSteps; step++ {
		accepted := false
		var next model.Point
		var nextHeading float64

		for attempt := 0; attempt < retries; attempt++ {
			nextHeading = heading + g.Turn.Draw(rng)
			next = Advance(cur, nextHeading, g.StepLength)

			ok := g.Boundary.Contains(next)
			if ok && hasSegments {
				ok = segOracle.ContainsSegment(cur, next)
			}
			if ok {
				accepted = true
				break
			}
			if g.OnRejection != nil {
				g.OnRejection(step)
			}
		}
		if !accepted {
			return nil, &BoundaryViolationError{
				Step:      step,
				Attempted: next,
				Reason:    fmt.Sprintf("no valid step found in %d attempts", retries),
			}
		}

		path = append(path, model.PathPoint{Point: next, Step: step})
		cur = next
		heading = nextHeading
	}

	return path, nil
}

func (g *PathGenerator) validate(rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("%w: nil random generator", ErrValidation)
	}
	if g.Boundary == nil {
		return fmt.Errorf("%w: nil boundary oracle", ErrValidation)
	}
	if g.StepLength <= 0 {
		return fmt.Errorf("%w: step length must be positive, got %v", ErrValidation, g.StepLength)
	}
	if g.NumSteps <= 0 {
		return fmt.Errorf("%w: num steps must be positive, got %d", ErrValidation, g.NumSteps)
	}
	if g.Turn == nil {
		return fmt.Errorf("%w: nil turn distribution", ErrValidation)
	}
	return nil
}
