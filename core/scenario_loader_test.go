package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

const fullScenario = `{
  "region": {"type": "circle", "center": {"x": 0, "y": 0}, "radius": 1000},
  "receivers": [
    {"x": -400, "y": 0},
    {"x": 0, "y": 0},
    {"x": 400, "y": 0}
  ],
  "transmissions": [
    {"x": 0, "y": -500, "elapsed_time": 0},
    {"x": 0, "y": -450, "elapsed_time": 12.5}
  ]
}`

func TestLoadScenario_FullFile(t *testing.T) {
	env := NewEnvironment()

	scenario, err := LoadScenario(env, strings.NewReader(fullScenario))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	if !scenario.HasRegion {
		t.Fatalf("region not reported")
	}
	region := env.Region()
	if region == nil || !region.Contains(model.Point{X: 500, Y: 500}) {
		t.Fatalf("circle region not installed")
	}

	receivers := env.Receivers()
	if len(receivers) != 3 {
		t.Fatalf("receiver count = %d, want 3", len(receivers))
	}
	for i, r := range receivers {
		if r.ID != i {
			t.Fatalf("receiver %d has ID %d, want sequential from 0", i, r.ID)
		}
	}
	if receivers[0].Position != (model.Point{X: -400, Y: 0}) {
		t.Fatalf("first receiver at %#v", receivers[0].Position)
	}

	if len(scenario.Transmissions) != 2 {
		t.Fatalf("transmission count = %d, want 2", len(scenario.Transmissions))
	}
	tx := scenario.Transmissions[1]
	if tx.ID != 1 || tx.ElapsedTime != 12.5 || tx.Position != (model.Point{X: 0, Y: -450}) {
		t.Fatalf("second transmission = %#v", tx)
	}
}

func TestLoadScenario_PolygonRegion(t *testing.T) {
	env := NewEnvironment()
	payload := `{
  "region": {"type": "polygon", "vertices": [
    {"x": 0, "y": 0}, {"x": 10, "y": 0}, {"x": 10, "y": 10}, {"x": 0, "y": 10}
  ]}
}`

	scenario, err := LoadScenario(env, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if !scenario.HasRegion {
		t.Fatalf("region not reported")
	}
	if !env.Region().Contains(model.Point{X: 5, Y: 5}) {
		t.Fatalf("polygon region not installed")
	}
	if env.Region().Contains(model.Point{X: 15, Y: 5}) {
		t.Fatalf("polygon region contains exterior point")
	}
}

func TestLoadScenario_NoRegionLeavesEnvironmentAlone(t *testing.T) {
	env := NewEnvironment()

	scenario, err := LoadScenario(env, strings.NewReader(`{"receivers": [{"x": 1, "y": 2}]}`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if scenario.HasRegion {
		t.Fatalf("region reported for region-less file")
	}
	if env.Region() != nil {
		t.Fatalf("region installed from region-less file")
	}
	if env.ReceiverCount() != 1 {
		t.Fatalf("receiver not loaded")
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	if _, err := LoadScenario(nil, strings.NewReader(`{}`)); !errors.Is(err, ErrValidation) {
		t.Fatalf("nil environment: got %v, want validation error", err)
	}

	if _, err := LoadScenario(NewEnvironment(), strings.NewReader(`{not json`)); err == nil {
		t.Fatalf("malformed JSON should fail")
	}

	bad := `{"region": {"type": "hexagon"}}`
	if _, err := LoadScenario(NewEnvironment(), strings.NewReader(bad)); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown region type: got %v, want validation error", err)
	}

	env := NewEnvironment()
	if err := env.AddReceiver(model.Receiver{ID: 0}); err != nil {
		t.Fatalf("add: %v", err)
	}
	clash := `{"receivers": [{"x": 1, "y": 1}]}`
	if _, err := LoadScenario(env, strings.NewReader(clash)); !errors.Is(err, ErrReceiverExists) {
		t.Fatalf("ID clash: got %v, want ErrReceiverExists", err)
	}
}
