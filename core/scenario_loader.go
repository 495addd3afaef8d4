package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

// Scenario summarizes what a scenario file contributed. Mainly useful for
// logging from main().
type Scenario struct {
	HasRegion     bool
	ReceiverIDs   []int
	Transmissions []model.TransmissionEvent
}

// internal JSON shapes - kept unexported so the file format can evolve.
type scenarioJSON struct {
	Region        *regionJSON        `json:"region"`
	Receivers     []receiverJSON     `json:"receivers"`
	Transmissions []transmissionJSON `json:"transmissions"`
}

type regionJSON struct {
	Type     string      `json:"type"` // "circle" | "polygon"
	Center   pointJSON   `json:"center"`
	Radius   float64     `json:"radius"`
	Vertices []pointJSON `json:"vertices"`
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type receiverJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type transmissionJSON struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	ElapsedTime float64 `json:"elapsed_time"`
}

// LoadScenario reads a JSON scenario from r and populates the environment:
// region (when present) and receivers (sequential IDs in file order).
// Externally supplied transmissions are returned for direct feeding into the
// detection simulator. Fails on JSON/structural errors; geometric validity
// is the oracle constructors' concern.
func LoadScenario(env *Environment, r io.Reader) (*Scenario, error) {
	if env == nil {
		return nil, fmt.Errorf("%w: nil environment", ErrValidation)
	}

	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("load scenario: decode failed: %w", err)
	}

	result := &Scenario{}

	if payload.Region != nil {
		def := model.RegionDefinition{
			Type:   model.RegionType(payload.Region.Type),
			Center: model.Point{X: payload.Region.Center.X, Y: payload.Region.Center.Y},
			Radius: payload.Region.Radius,
		}
		for _, v := range payload.Region.Vertices {
			def.Vertices = append(def.Vertices, model.Point{X: v.X, Y: v.Y})
		}
		region, err := RegionFromDefinition(def)
		if err != nil {
			return nil, fmt.Errorf("load scenario: region: %w", err)
		}
		env.SetRegion(region)
		result.HasRegion = true
	}

	for i, rec := range payload.Receivers {
		r := model.Receiver{ID: i, Position: model.Point{X: rec.X, Y: rec.Y}}
		if err := env.AddReceiver(r); err != nil {
			return nil, fmt.Errorf("load scenario: receiver %d: %w", i, err)
		}
		result.ReceiverIDs = append(result.ReceiverIDs, i)
	}

	for i, tx := range payload.Transmissions {
		result.Transmissions = append(result.Transmissions, model.TransmissionEvent{
			ID:          i,
			Position:    model.Point{X: tx.X, Y: tx.Y},
			ElapsedTime: tx.ElapsedTime,
		})
	}

	return result, nil
}
