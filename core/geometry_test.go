package core

import (
	"errors"
	"math"
	"testing"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

func mustPolygon(t *testing.T, vertices []model.Point) *PolygonRegion {
	t.Helper()
	region, err := NewPolygonRegion(vertices)
	if err != nil {
		t.Fatalf("NewPolygonRegion: %v", err)
	}
	return region
}

// square returns a convex test region spanning [0,size]×[0,size].
func square(t *testing.T, size float64) *PolygonRegion {
	t.Helper()
	return mustPolygon(t, []model.Point{
		{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
	})
}

// lShape returns a non-convex region: a 10×10 square with the top-right
// 5×5 quadrant removed.
func lShape(t *testing.T) *PolygonRegion {
	t.Helper()
	return mustPolygon(t, []model.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5},
		{X: 5, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 10},
	})
}

func TestDistanceAndHeading(t *testing.T) {
	a := model.Point{X: 0, Y: 0}
	b := model.Point{X: 3, Y: 4}
	if d := Distance(a, b); d != 5 {
		t.Fatalf("Distance = %v, want 5", d)
	}
	if h := Heading(a, model.Point{X: 1, Y: 0}); h != 0 {
		t.Fatalf("Heading east = %v, want 0", h)
	}
	if h := Heading(a, model.Point{X: 0, Y: 1}); math.Abs(h-math.Pi/2) > 1e-12 {
		t.Fatalf("Heading north = %v, want pi/2", h)
	}
}

func TestAdvanceRoundTrip(t *testing.T) {
	p := model.Point{X: 2, Y: 3}
	q := Advance(p, math.Pi/4, math.Sqrt2)
	if math.Abs(q.X-3) > 1e-12 || math.Abs(q.Y-4) > 1e-12 {
		t.Fatalf("Advance = %#v, want (3,4)", q)
	}
}

func TestPolygonContains_Convex(t *testing.T) {
	region := square(t, 10)

	inside := []model.Point{{X: 5, Y: 5}, {X: 0.01, Y: 0.01}, {X: 9.99, Y: 5}}
	for _, p := range inside {
		if !region.Contains(p) {
			t.Fatalf("point %#v should be inside", p)
		}
	}
	outside := []model.Point{{X: -1, Y: 5}, {X: 11, Y: 5}, {X: 5, Y: -0.1}}
	for _, p := range outside {
		if region.Contains(p) {
			t.Fatalf("point %#v should be outside", p)
		}
	}
	// Edge points count as inside.
	if !region.Contains(model.Point{X: 0, Y: 5}) {
		t.Fatalf("edge point should be inside")
	}
}

func TestPolygonContains_NonConvex(t *testing.T) {
	region := lShape(t)

	if !region.Contains(model.Point{X: 2, Y: 8}) {
		t.Fatalf("(2,8) is in the left arm, should be inside")
	}
	if !region.Contains(model.Point{X: 8, Y: 2}) {
		t.Fatalf("(8,2) is in the bottom arm, should be inside")
	}
	if region.Contains(model.Point{X: 8, Y: 8}) {
		t.Fatalf("(8,8) is in the removed quadrant, should be outside")
	}
}

func TestPolygonContainsSegment_CutsCorner(t *testing.T) {
	region := lShape(t)

	// Both endpoints in water but the straight segment crosses the notch.
	a := model.Point{X: 2, Y: 9}
	b := model.Point{X: 9, Y: 2}
	if !region.Contains(a) || !region.Contains(b) {
		t.Fatalf("endpoints should be inside")
	}
	if region.ContainsSegment(a, b) {
		t.Fatalf("segment across the notch should be rejected")
	}
	if !region.ContainsSegment(model.Point{X: 1, Y: 1}, model.Point{X: 4, Y: 4}) {
		t.Fatalf("fully interior segment should be accepted")
	}
}

func TestPolygonPathBetween(t *testing.T) {
	region := lShape(t)

	path, err := region.PathBetween(model.Point{X: 1, Y: 1}, model.Point{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("PathBetween in water: %v", err)
	}
	if len(path) != 2 || path.Origin() != (model.Point{X: 1, Y: 1}) {
		t.Fatalf("unexpected path %#v", path)
	}

	_, err = region.PathBetween(model.Point{X: 2, Y: 9}, model.Point{X: 9, Y: 2})
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("PathBetween across land: got %v, want ErrNoPath", err)
	}
}

func TestCircleRegion(t *testing.T) {
	region, err := NewCircleRegion(model.Point{X: 0, Y: 0}, 10)
	if err != nil {
		t.Fatalf("NewCircleRegion: %v", err)
	}
	if !region.Contains(model.Point{X: 7, Y: 7}) {
		t.Fatalf("(7,7) is within radius 10")
	}
	if region.Contains(model.Point{X: 8, Y: 8}) {
		t.Fatalf("(8,8) is outside radius 10")
	}
	if _, err := NewCircleRegion(model.Point{}, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero radius should be a validation error, got %v", err)
	}
}

func TestRegionFromDefinition(t *testing.T) {
	circle, err := RegionFromDefinition(model.RegionDefinition{
		Type:   model.RegionTypeCircle,
		Center: model.Point{X: 1, Y: 1},
		Radius: 5,
	})
	if err != nil {
		t.Fatalf("circle definition: %v", err)
	}
	if !circle.Contains(model.Point{X: 2, Y: 2}) {
		t.Fatalf("circle oracle misplaced")
	}

	if _, err := RegionFromDefinition(model.RegionDefinition{Type: "hexagon"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown region type should be a validation error, got %v", err)
	}
}
