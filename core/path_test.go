package core

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

func TestPathGenerator_StaysInsideConvexRegion(t *testing.T) {
	region := square(t, 100)
	gen := PathGenerator{
		Boundary:   region,
		StepLength: 3,
		NumSteps:   200,
		Turn:       NormalTurn{StdDev: 0.6},
	}

	path, err := gen.Generate(NewRand(7), model.Point{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(path) != 201 {
		t.Fatalf("path length = %d, want 201", len(path))
	}
	for _, pp := range path {
		if !region.Contains(pp.Point) {
			t.Fatalf("step %d at %#v left the region", pp.Step, pp.Point)
		}
	}
}

func TestPathGenerator_StaysInsideNonConvexRegion(t *testing.T) {
	region := lShape(t)
	gen := PathGenerator{
		Boundary:   region,
		StepLength: 0.5,
		NumSteps:   300,
		Turn:       UniformTurn{HalfWidth: 1.0},
	}

	path, err := gen.Generate(NewRand(11), model.Point{X: 2, Y: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 1; i < len(path); i++ {
		if !region.Contains(path[i].Point) {
			t.Fatalf("step %d at %#v left the region", i, path[i].Point)
		}
		if !region.ContainsSegment(path[i-1].Point, path[i].Point) {
			t.Fatalf("segment %d-%d cuts across land", i-1, i)
		}
	}
}

func TestPathGenerator_StepLengthIsConstant(t *testing.T) {
	region := square(t, 100)
	gen := PathGenerator{
		Boundary:   region,
		StepLength: 2.5,
		NumSteps:   50,
		Turn:       NormalTurn{StdDev: 0.3},
	}

	path, err := gen.Generate(NewRand(3), model.Point{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 1; i < len(path); i++ {
		d := Distance(path[i-1].Point, path[i].Point)
		if math.Abs(d-2.5) > 1e-9 {
			t.Fatalf("step %d length = %v, want 2.5", i, d)
		}
	}
}

func TestPathGenerator_StartOutsideRegionFails(t *testing.T) {
	gen := PathGenerator{
		Boundary:   square(t, 10),
		StepLength: 1,
		NumSteps:   5,
		Turn:       NormalTurn{StdDev: 0.3},
	}

	_, err := gen.Generate(NewRand(1), model.Point{X: 50, Y: 50})
	if !errors.Is(err, ErrBoundaryViolation) {
		t.Fatalf("got %v, want boundary violation", err)
	}
	var bv *BoundaryViolationError
	if !errors.As(err, &bv) {
		t.Fatalf("error %v should carry violation context", err)
	}
	if bv.Step != 0 {
		t.Fatalf("violation step = %d, want 0", bv.Step)
	}
}

// A degenerate (zero-area) polygon accepts its boundary points but rejects
// every possible step, so the retry budget must fail the walk rather than
// loop forever.
func TestPathGenerator_DegenerateRegionExhaustsRetries(t *testing.T) {
	region := mustPolygon(t, []model.Point{
		{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0},
	})
	gen := PathGenerator{
		Boundary:   region,
		StepLength: 1,
		NumSteps:   3,
		MaxRetries: 25,
		Turn:       NormalTurn{StdDev: 1.0},
	}

	_, err := gen.Generate(NewRand(5), model.Point{X: 5, Y: 0})
	if !errors.Is(err, ErrBoundaryViolation) {
		t.Fatalf("got %v, want boundary violation from retry exhaustion", err)
	}
	var bv *BoundaryViolationError
	if !errors.As(err, &bv) {
		t.Fatalf("error %v should carry violation context", err)
	}
	if bv.Step != 1 {
		t.Fatalf("violation step = %d, want 1", bv.Step)
	}
}

func TestPathGenerator_Deterministic(t *testing.T) {
	region := square(t, 100)
	gen := PathGenerator{
		Boundary:   region,
		StepLength: 2,
		NumSteps:   100,
		Turn:       NormalTurn{StdDev: 0.4},
	}

	a, err := gen.Generate(NewRand(42), model.Point{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := gen.Generate(NewRand(42), model.Point{X: 50, Y: 50})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different paths")
	}
}

func TestPathGenerator_FixedInitialHeading(t *testing.T) {
	region := square(t, 1000)
	east := 0.0
	gen := PathGenerator{
		Boundary:       region,
		StepLength:     1,
		NumSteps:       1,
		Turn:           NormalTurn{StdDev: 0}, // no perturbation
		InitialHeading: &east,
	}

	path, err := gen.Generate(NewRand(1), model.Point{X: 500, Y: 500})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got := path[1].Point
	if math.Abs(got.X-501) > 1e-12 || math.Abs(got.Y-500) > 1e-12 {
		t.Fatalf("step with fixed east heading = %#v, want (501,500)", got)
	}
}

func TestPathGenerator_Validation(t *testing.T) {
	region := square(t, 10)
	cases := []struct {
		name string
		gen  PathGenerator
	}{
		{"zero step length", PathGenerator{Boundary: region, StepLength: 0, NumSteps: 5, Turn: NormalTurn{StdDev: 1}}},
		{"negative steps", PathGenerator{Boundary: region, StepLength: 1, NumSteps: -1, Turn: NormalTurn{StdDev: 1}}},
		{"nil boundary", PathGenerator{StepLength: 1, NumSteps: 5, Turn: NormalTurn{StdDev: 1}}},
		{"nil turn distribution", PathGenerator{Boundary: region, StepLength: 1, NumSteps: 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.gen.Generate(NewRand(1), model.Point{X: 5, Y: 5})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestPathGenerator_RejectionCallback(t *testing.T) {
	// A tiny region with a large step forces rejections.
	region, err := NewCircleRegion(model.Point{X: 0, Y: 0}, 3)
	if err != nil {
		t.Fatalf("NewCircleRegion: %v", err)
	}
	rejections := 0
	gen := PathGenerator{
		Boundary:   region,
		StepLength: 2.5,
		NumSteps:   20,
		Turn:       UniformTurn{HalfWidth: math.Pi},
		OnRejection: func(step int) {
			rejections++
		},
	}

	if _, err := gen.Generate(NewRand(9), model.Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rejections == 0 {
		t.Fatalf("expected at least one rejected proposal in a cramped region")
	}
}
