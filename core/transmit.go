package core

import (
	"fmt"
	"math/rand"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

// TransmissionScheduler walks a path at constant velocity and emits discrete
// transmission events with uniformly-random inter-transmission delays.
type TransmissionScheduler struct {
	Spec model.TransmitterSpec
}

// Schedule treats the path as a piecewise-linear trajectory traversed at
// Spec.Velocity. The first transmission happens at time zero at the path
// origin; each following event is delayed by a uniform draw from the delay
// range and positioned by linear interpolation at distance velocity×t,
// clipped to the path end. Emission stops once elapsed time exceeds the time
// to traverse the full path. Output is strictly increasing in elapsed time
// by construction.
func (s *TransmissionScheduler) Schedule(rng *rand.Rand, path model.Path) ([]model.TransmissionEvent, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random generator", ErrValidation)
	}
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrEmptyInput)
	}
	if err := s.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	cursor := newPathCursor(path)
	totalTime := cursor.totalDistance / s.Spec.Velocity

	var events []model.TransmissionEvent
	elapsed := 0.0
	for {
		events = append(events, model.TransmissionEvent{
			ID:            len(events),
			Position:      cursor.positionAt(s.Spec.Velocity * elapsed),
			ElapsedTime:   elapsed,
			BurstDuration: s.Spec.BurstDuration,
		})

		delay := s.Spec.Delay.Min + rng.Float64()*(s.Spec.Delay.Max-s.Spec.Delay.Min)
		elapsed += delay
		if elapsed > totalTime {
			break
		}
	}
	return events, nil
}

// pathCursor interpolates positions along a piecewise-linear path. Queries
// with non-decreasing distances advance an internal segment index, so a full
// schedule costs O(path + events).
type pathCursor struct {
	path          model.Path
	cumulative    []float64
	totalDistance float64
	seg           int
}

func newPathCursor(path model.Path) *pathCursor {
	cum := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		cum[i] = cum[i-1] + Distance(path[i-1].Point, path[i].Point)
	}
	return &pathCursor{
		path:          path,
		cumulative:    cum,
		totalDistance: cum[len(cum)-1],
	}
}

func (c *pathCursor) positionAt(dist float64) model.Point {
	if dist <= 0 || len(c.path) == 1 {
		return c.path[0].Point
	}
	if dist >= c.totalDistance {
		return c.path[len(c.path)-1].Point
	}
	for c.seg < len(c.path)-2 && c.cumulative[c.seg+1] < dist {
		c.seg++
	}
	a := c.path[c.seg]
	b := c.path[c.seg+1]
	segLen := c.cumulative[c.seg+1] - c.cumulative[c.seg]
	if segLen == 0 {
		return a.Point
	}
	t := (dist - c.cumulative[c.seg]) / segLen
	return Lerp(a.Point, b.Point, t)
}
