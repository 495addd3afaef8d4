package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

// DetectionRangeFunc maps a non-negative transmitter-to-receiver distance to
// a detection probability in [0,1]. By convention these are monotonic
// non-increasing, but the simulator does not assume monotonicity.
type DetectionRangeFunc func(distance float64) float64

// ConstantRange returns a range function with a fixed detection probability.
func ConstantRange(p float64) DetectionRangeFunc {
	return func(float64) float64 { return p }
}

// StepRange detects with probability one inside radius and zero beyond it.
func StepRange(radius float64) DetectionRangeFunc {
	return func(d float64) float64 {
		if d <= radius {
			return 1
		}
		return 0
	}
}

// LogisticRange is a smooth range model: probability 0.5 at midpoint,
// falling off with the given slope. Typical for fitted acoustic range tests.
func LogisticRange(midpoint, slope float64) DetectionRangeFunc {
	return func(d float64) float64 {
		return 1 / (1 + math.Exp(slope*(d-midpoint)))
	}
}

// DetectionSimulator runs one independent Bernoulli trial per
// (transmission, receiver) pair. Receivers are processed fan-out/fan-in:
// each receiver gets its own generator seeded from Seed and its input index,
// so serial and parallel runs produce bit-identical output.
type DetectionSimulator struct {
	RangeFn DetectionRangeFunc
	Seed    int64

	// Workers caps concurrent receiver workers; values below one mean serial.
	Workers int

	// Progress, when set, is called after each receiver completes with the
	// number of finished receivers and the total. Calls are serialized.
	Progress func(done, total int)
}

// Simulate evaluates every transmission against every receiver and returns
// the successful detections sorted by elapsed time ascending (stable ties).
// Cancelling ctx aborts between receivers with a wrapped context error.
func (s *DetectionSimulator) Simulate(ctx context.Context, transmissions []model.TransmissionEvent, receivers []model.Receiver) ([]model.DetectionRecord, error) {
	if len(transmissions) == 0 {
		return nil, fmt.Errorf("%w: no transmissions", ErrEmptyInput)
	}
	if len(receivers) == 0 {
		return nil, fmt.Errorf("%w: no receivers", ErrEmptyInput)
	}
	if s.RangeFn == nil {
		return nil, fmt.Errorf("%w: nil detection range function", ErrValidation)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(receivers) {
		workers = len(receivers)
	}

	perReceiver := make([][]model.DetectionRecord, len(receivers))
	errs := make([]error, len(receivers))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				records, err := s.evaluateReceiver(transmissions, receivers[idx], DeriveSeed(s.Seed, int64(idx)))
				perReceiver[idx] = records
				errs[idx] = err

				mu.Lock()
				done++
				if s.Progress != nil {
					s.Progress(done, len(receivers))
				}
				mu.Unlock()
			}
		}()
	}
	for idx := range receivers {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("detection simulation cancelled: %w", err)
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var out []model.DetectionRecord
	for _, records := range perReceiver {
		out = append(out, records...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ElapsedTime < out[j].ElapsedTime
	})
	return out, nil
}

func (s *DetectionSimulator) evaluateReceiver(transmissions []model.TransmissionEvent, rec model.Receiver, seed int64) ([]model.DetectionRecord, error) {
	rng := NewRand(seed)
	var records []model.DetectionRecord
	for _, tx := range transmissions {
		d := Distance(rec.Position, tx.Position)
		p := s.RangeFn(d)
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: detection range function returned %v for distance %v", ErrValidation, p, d)
		}
		if rng.Float64() < p {
			records = append(records, model.DetectionRecord{
				TransmissionID:       tx.ID,
				ReceiverID:           rec.ID,
				ReceiverPosition:     rec.Position,
				TransmissionPosition: tx.Position,
				ElapsedTime:          tx.ElapsedTime,
			})
		}
	}
	return records, nil
}
