package core

import (
	"fmt"
	"math"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

// Distance returns the straight-line distance between two points.
func Distance(a, b model.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Heading returns the direction from a to b in radians.
func Heading(a, b model.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Advance returns the point reached by travelling dist from p along heading.
func Advance(p model.Point, heading, dist float64) model.Point {
	return model.Point{
		X: p.X + dist*math.Cos(heading),
		Y: p.Y + dist*math.Sin(heading),
	}
}

// Lerp returns the point a fraction t of the way from a to b.
func Lerp(a, b model.Point, t float64) model.Point {
	return model.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// segmentsCross reports whether segments p1–p2 and p3–p4 properly intersect.
// Collinear overlap counts as crossing; shared endpoints do not.
func segmentsCross(p1, p2, p3, p4 model.Point) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func cross(a, b, c model.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func onSegment(a, b, p model.Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// PolygonRegion is a BoundaryOracle backed by a simple (non-self-intersecting)
// polygon. It also implements SegmentOracle and a straight-line PathFinder.
type PolygonRegion struct {
	vertices []model.Point
}

// NewPolygonRegion builds a polygon oracle from at least three vertices.
// The polygon is closed implicitly (last vertex connects back to the first).
func NewPolygonRegion(vertices []model.Point) (*PolygonRegion, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrValidation, len(vertices))
	}
	vs := make([]model.Point, len(vertices))
	copy(vs, vertices)
	return &PolygonRegion{vertices: vs}, nil
}

// Contains reports whether p lies inside the polygon, using an even-odd
// ray cast. Points exactly on an edge are treated as inside.
func (r *PolygonRegion) Contains(p model.Point) bool {
	n := len(r.vertices)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := r.vertices[i], r.vertices[j]
		if cross(vi, vj, p) == 0 && onSegment(vi, vj, p) {
			return true
		}
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xCross := (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y) + vi.X
			if p.X < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsSegment reports whether the whole segment a–b stays inside the
// polygon: both endpoints must be inside and the segment must not cross any
// polygon edge.
func (r *PolygonRegion) ContainsSegment(a, b model.Point) bool {
	if !r.Contains(a) || !r.Contains(b) {
		return false
	}
	n := len(r.vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if sharesEndpoint(a, b, r.vertices[i], r.vertices[j]) {
			continue
		}
		if segmentsCross(a, b, r.vertices[i], r.vertices[j]) {
			return false
		}
	}
	return true
}

func sharesEndpoint(a, b, c, d model.Point) bool {
	return a == c || a == d || b == c || b == d
}

// PathBetween returns a two-point straight path when the segment a–b lies
// fully in water, and ErrNoPath otherwise. Routing around land belongs to
// cost-surface oracles supplied by callers.
func (r *PolygonRegion) PathBetween(a, b model.Point) (model.Path, error) {
	if !r.ContainsSegment(a, b) {
		return nil, fmt.Errorf("%w between (%v,%v) and (%v,%v)", ErrNoPath, a.X, a.Y, b.X, b.Y)
	}
	return model.Path{
		{Point: a, Step: 0},
		{Point: b, Step: 1},
	}, nil
}

// CircleRegion is a BoundaryOracle for a circular water body. Useful for
// tests and synthetic design studies.
type CircleRegion struct {
	Center model.Point
	Radius float64
}

// NewCircleRegion builds a circle oracle with a positive radius.
func NewCircleRegion(center model.Point, radius float64) (*CircleRegion, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: circle radius must be positive, got %v", ErrValidation, radius)
	}
	return &CircleRegion{Center: center, Radius: radius}, nil
}

// Contains reports whether p lies inside or on the circle.
func (r *CircleRegion) Contains(p model.Point) bool {
	return Distance(r.Center, p) <= r.Radius
}

// ContainsSegment holds for a convex region whenever both endpoints are inside.
func (r *CircleRegion) ContainsSegment(a, b model.Point) bool {
	return r.Contains(a) && r.Contains(b)
}

// RegionFromDefinition constructs the matching built-in oracle for a
// scenario-file region definition.
func RegionFromDefinition(def model.RegionDefinition) (BoundaryOracle, error) {
	switch def.Type {
	case model.RegionTypeCircle:
		return NewCircleRegion(def.Center, def.Radius)
	case model.RegionTypePolygon:
		return NewPolygonRegion(def.Vertices)
	default:
		return nil, fmt.Errorf("%w: unknown region type %q", ErrValidation, def.Type)
	}
}
