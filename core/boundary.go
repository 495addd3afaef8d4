package core

import "github.com/pelagiclabs/telemetry-simulator/model"

// BoundaryOracle answers whether a point lies inside the permitted water
// region. The simulation core never owns a geometric representation itself;
// any conforming implementation (polygon test, rasterized cost surface,
// remote service) is substitutable.
type BoundaryOracle interface {
	Contains(p model.Point) bool
}

// SegmentOracle is an optional capability: oracles that can also judge a
// whole segment let the path generator reject steps that would cut across
// land even when both endpoints are in water. When an oracle does not
// implement it, the generator falls back to endpoint containment only.
type SegmentOracle interface {
	ContainsSegment(a, b model.Point) bool
}

// PathFinder is an optional capability for oracles that can produce a
// least-cost in-water route between two points. Implementations return
// ErrNoPath when no route exists.
type PathFinder interface {
	PathBetween(a, b model.Point) (model.Path, error)
}
