package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

var (
	ErrReceiverExists   = errors.New("receiver already exists")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrNoRegion         = errors.New("no region configured")
	ErrNoRangeFunc      = errors.New("no detection range function configured")
)

// EnvEventType indicates what kind of change happened in the environment.
type EnvEventType int

const (
	EventReceiversChanged EnvEventType = iota
	EventRegionChanged
)

// EnvEvent is delivered to subscribers after a mutation.
type EnvEvent struct {
	Type          EnvEventType
	ReceiverCount int
}

// Environment is the shared, thread-safe state for a design study: the water
// region, the receiver arrangement, and the detection-range model. A sweep
// reuses one Environment across all its trials so the region is derived only
// once.
type Environment struct {
	mu        sync.RWMutex
	region    BoundaryOracle
	rangeFn   DetectionRangeFunc
	receivers map[int]model.Receiver
	order     []int
	nextID    int

	subs []func(EnvEvent)
}

// NewEnvironment constructs an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		receivers: make(map[int]model.Receiver),
	}
}

// Subscribe registers a callback invoked after every mutation. Callbacks run
// on the mutating goroutine and must not call back into the environment.
func (e *Environment) Subscribe(fn func(EnvEvent)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, fn)
}

// SetRegion installs the boundary oracle.
func (e *Environment) SetRegion(region BoundaryOracle) {
	e.mu.Lock()
	e.region = region
	subs := e.subs
	n := len(e.receivers)
	e.mu.Unlock()

	notify(subs, EnvEvent{Type: EventRegionChanged, ReceiverCount: n})
}

// Region returns the installed boundary oracle, or nil.
func (e *Environment) Region() BoundaryOracle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.region
}

// SetRangeFunc installs the detection-range model.
func (e *Environment) SetRangeFunc(fn DetectionRangeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rangeFn = fn
}

// RangeFunc returns the installed detection-range model, or nil.
func (e *Environment) RangeFunc() DetectionRangeFunc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rangeFn
}

// AddReceiver stores a receiver. Duplicate IDs are rejected.
func (e *Environment) AddReceiver(r model.Receiver) error {
	e.mu.Lock()
	if _, exists := e.receivers[r.ID]; exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrReceiverExists, r.ID)
	}
	e.receivers[r.ID] = r
	e.order = append(e.order, r.ID)
	if r.ID >= e.nextID {
		e.nextID = r.ID + 1
	}
	subs := e.subs
	n := len(e.receivers)
	e.mu.Unlock()

	notify(subs, EnvEvent{Type: EventReceiversChanged, ReceiverCount: n})
	return nil
}

// RemoveReceiver deletes a receiver by ID.
func (e *Environment) RemoveReceiver(id int) error {
	e.mu.Lock()
	if _, exists := e.receivers[id]; !exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrReceiverNotFound, id)
	}
	delete(e.receivers, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	subs := e.subs
	n := len(e.receivers)
	e.mu.Unlock()

	notify(subs, EnvEvent{Type: EventReceiversChanged, ReceiverCount: n})
	return nil
}

// ClearReceivers removes every receiver, e.g. between sweep arrangements.
func (e *Environment) ClearReceivers() {
	e.mu.Lock()
	e.receivers = make(map[int]model.Receiver)
	e.order = nil
	e.nextID = 0
	subs := e.subs
	e.mu.Unlock()

	notify(subs, EnvEvent{Type: EventReceiversChanged, ReceiverCount: 0})
}

// Receivers returns the receivers in insertion order.
func (e *Environment) Receivers() []model.Receiver {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Receiver, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.receivers[id])
	}
	return out
}

// ReceiverCount returns the number of stored receivers.
func (e *Environment) ReceiverCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.receivers)
}

// PlaceReceiverLine places receivers every spacing units from start toward
// end, inclusive of start and of any point landing on end. Returns how many
// receivers were placed; IDs continue from the current sequence.
func (e *Environment) PlaceReceiverLine(start, end model.Point, spacing float64) (int, error) {
	if spacing <= 0 {
		return 0, fmt.Errorf("%w: spacing must be positive, got %v", ErrValidation, spacing)
	}
	length := Distance(start, end)
	if length == 0 {
		return 0, fmt.Errorf("%w: line start and end coincide", ErrValidation)
	}

	heading := Heading(start, end)
	placed := 0
	for d := 0.0; d <= length+1e-9; d += spacing {
		if err := e.AddReceiver(model.Receiver{
			ID:       e.takeID(),
			Position: Advance(start, heading, d),
		}); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

// PlaceReceiverGrid places a cols×rows grid with the given spacings, origin
// at the south-west corner.
func (e *Environment) PlaceReceiverGrid(origin model.Point, dx, dy float64, cols, rows int) (int, error) {
	if dx <= 0 || dy <= 0 {
		return 0, fmt.Errorf("%w: grid spacings must be positive, got dx=%v dy=%v", ErrValidation, dx, dy)
	}
	if cols <= 0 || rows <= 0 {
		return 0, fmt.Errorf("%w: grid dimensions must be positive, got %dx%d", ErrValidation, cols, rows)
	}

	placed := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			err := e.AddReceiver(model.Receiver{
				ID: e.takeID(),
				Position: model.Point{
					X: origin.X + float64(c)*dx,
					Y: origin.Y + float64(r)*dy,
				},
			})
			if err != nil {
				return placed, err
			}
			placed++
		}
	}
	return placed, nil
}

func (e *Environment) takeID() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nextID
}

func notify(subs []func(EnvEvent), ev EnvEvent) {
	for _, fn := range subs {
		fn(ev)
	}
}
