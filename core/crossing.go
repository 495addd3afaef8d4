package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/pelagiclabs/telemetry-simulator/internal/logging"
	"github.com/pelagiclabs/telemetry-simulator/model"
)

// MetricsRecorder receives instrumentation callbacks from sweeps. Implemented
// by the observability collector; a nil recorder disables instrumentation.
type MetricsRecorder interface {
	TrialCompleted(duration time.Duration, transmissions, detections int)
	PathRejection()
	SetReceiverCount(n int)
}

// TrialOutcome summarizes one simulated crossing.
type TrialOutcome struct {
	Trial         int
	Detected      bool
	Transmissions int
	Detections    int

	// DetectionsPerReceiver counts records per receiver ID; absent IDs had
	// no detections.
	DetectionsPerReceiver map[int]int

	// FirstDetection/LastDetection are elapsed times, valid when Detected.
	FirstDetection float64
	LastDetection  float64
}

// CrossingResult aggregates a batch of trials. When Cancelled, Outcomes
// holds only the trials that completed and the accompanying error carries
// the context cause.
type CrossingResult struct {
	RunID     string
	Requested int
	Completed int
	Cancelled bool

	Outcomes []TrialOutcome

	// Efficiency is the fraction of completed trials detected at least once.
	Efficiency float64
	// MeanDetections/StdDevDetections/MedianDetections summarize the
	// per-trial detection counts over completed trials.
	MeanDetections   float64
	StdDevDetections float64
	MedianDetections float64
}

// CrossingConfig parameterizes one batch of crossing trials.
type CrossingConfig struct {
	Trials int
	Seed   int64
	// Workers caps concurrent trials; below one means serial.
	Workers int

	Start          model.Point
	StepLength     float64
	NumSteps       int
	MaxRetries     int
	Turn           TurnDistribution
	InitialHeading *float64

	Spec model.TransmitterSpec
}

// ReceiverLineSimulator composes path generation, transmission scheduling,
// and detection simulation over repeated independent trials against one
// Environment. The environment's region is derived once and shared by every
// trial.
type ReceiverLineSimulator struct {
	Env      *Environment
	Log      logging.Logger
	Recorder MetricsRecorder
}

// Run executes cfg.Trials independent crossings. Trial seeds derive from
// cfg.Seed, so results are reproducible for any worker count. Cancellation
// is checked between trials; a cancelled run returns the completed outcomes
// together with a wrapped context error.
func (s *ReceiverLineSimulator) Run(ctx context.Context, cfg CrossingConfig) (CrossingResult, error) {
	result := CrossingResult{
		RunID:     uuid.NewString(),
		Requested: cfg.Trials,
	}
	if err := s.validate(cfg); err != nil {
		return result, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	log := s.Log
	if log == nil {
		log = logging.Noop()
	}
	log = log.With(logging.String("run_id", result.RunID))
	log.Debug(ctx, "starting crossing run",
		logging.Int("trials", cfg.Trials),
		logging.Int("receivers", s.Env.ReceiverCount()),
	)

	receivers := s.Env.Receivers()
	region := s.Env.Region()
	rangeFn := s.Env.RangeFunc()

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Trials {
		workers = cfg.Trials
	}

	outcomes := make([]*TrialOutcome, cfg.Trials)
	errs := make([]error, cfg.Trials)

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range jobs {
				if ctx.Err() != nil {
					continue
				}
				outcome, err := s.runTrial(ctx, cfg, trial, region, receivers, rangeFn)
				if err != nil {
					errs[trial] = err
					continue
				}
				outcomes[trial] = outcome
			}
		}()
	}
	for trial := 0; trial < cfg.Trials; trial++ {
		jobs <- trial
	}
	close(jobs)
	wg.Wait()

	for _, o := range outcomes {
		if o != nil {
			result.Outcomes = append(result.Outcomes, *o)
		}
	}
	sort.Slice(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Trial < result.Outcomes[j].Trial
	})
	result.Completed = len(result.Outcomes)
	aggregate(&result)

	if err := ctx.Err(); err != nil {
		result.Cancelled = true
		log.Warn(ctx, "crossing run cancelled",
			logging.Int("completed", result.Completed),
			logging.Int("requested", result.Requested),
		)
		return result, fmt.Errorf("crossing run cancelled after %d/%d trials: %w",
			result.Completed, result.Requested, err)
	}
	for _, err := range errs {
		if err != nil {
			return result, err
		}
	}

	log.Info(ctx, "crossing run finished",
		logging.Int("completed", result.Completed),
		logging.Float64("efficiency", result.Efficiency),
	)
	return result, nil
}

func (s *ReceiverLineSimulator) runTrial(ctx context.Context, cfg CrossingConfig, trial int, region BoundaryOracle, receivers []model.Receiver, rangeFn DetectionRangeFunc) (*TrialOutcome, error) {
	started := time.Now()
	seed := DeriveSeed(cfg.Seed, int64(trial))
	rng := NewRand(seed)

	gen := PathGenerator{
		Boundary:       region,
		StepLength:     cfg.StepLength,
		NumSteps:       cfg.NumSteps,
		MaxRetries:     cfg.MaxRetries,
		Turn:           cfg.Turn,
		InitialHeading: cfg.InitialHeading,
	}
	if s.Recorder != nil {
		gen.OnRejection = func(int) { s.Recorder.PathRejection() }
	}
	path, err := gen.Generate(rng, cfg.Start)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", trial, err)
	}

	sched := TransmissionScheduler{Spec: cfg.Spec}
	transmissions, err := sched.Schedule(rng, path)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", trial, err)
	}

	det := DetectionSimulator{
		RangeFn: rangeFn,
		Seed:    DeriveSeed(seed, int64(cfg.Trials)+1),
	}
	records, err := det.Simulate(ctx, transmissions, receivers)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", trial, err)
	}

	outcome := &TrialOutcome{
		Trial:                 trial,
		Transmissions:         len(transmissions),
		Detections:            len(records),
		DetectionsPerReceiver: make(map[int]int),
	}
	for i, rec := range records {
		outcome.DetectionsPerReceiver[rec.ReceiverID]++
		if i == 0 {
			outcome.Detected = true
			outcome.FirstDetection = rec.ElapsedTime
		}
		outcome.LastDetection = rec.ElapsedTime
	}
	if s.Recorder != nil {
		s.Recorder.TrialCompleted(time.Since(started), len(transmissions), len(records))
	}
	return outcome, nil
}

func (s *ReceiverLineSimulator) validate(cfg CrossingConfig) error {
	if s.Env == nil {
		return fmt.Errorf("%w: nil environment", ErrValidation)
	}
	if cfg.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrValidation, cfg.Trials)
	}
	if s.Env.Region() == nil {
		return ErrNoRegion
	}
	if s.Env.RangeFunc() == nil {
		return ErrNoRangeFunc
	}
	if s.Env.ReceiverCount() == 0 {
		return fmt.Errorf("%w: no receivers placed", ErrEmptyInput)
	}
	if err := cfg.Spec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func aggregate(result *CrossingResult) {
	if result.Completed == 0 {
		return
	}
	counts := make([]float64, 0, result.Completed)
	detected := 0
	for _, o := range result.Outcomes {
		counts = append(counts, float64(o.Detections))
		if o.Detected {
			detected++
		}
	}
	result.Efficiency = float64(detected) / float64(result.Completed)
	result.MeanDetections = stat.Mean(counts, nil)
	result.StdDevDetections = stat.StdDev(counts, nil)

	sort.Float64s(counts)
	result.MedianDetections = stat.Quantile(0.5, stat.Empirical, counts, nil)
}

// LineSpec describes the receiver line swept over by SweepSpacings.
type LineSpec struct {
	Start model.Point
	End   model.Point
}

// SweepPoint pairs one spacing with its crossing result.
type SweepPoint struct {
	Spacing   float64
	Receivers int
	Result    CrossingResult
}

// SweepSpacings answers "what spacing yields the target detection
// probability": for each spacing it re-places the receiver line in the
// shared environment and runs a full crossing batch. The region is never
// re-derived. Cancellation between spacings (or inside a batch) returns the
// partial sweep with a wrapped context error.
func (s *ReceiverLineSimulator) SweepSpacings(ctx context.Context, cfg CrossingConfig, line LineSpec, spacings []float64) ([]SweepPoint, error) {
	if len(spacings) == 0 {
		return nil, fmt.Errorf("%w: no spacings", ErrEmptyInput)
	}
	ctx, log := logging.WithRunLogger(ctx, s.Log)
	log.Info(ctx, "starting spacing sweep", logging.Int("spacings", len(spacings)))

	var points []SweepPoint
	for i, spacing := range spacings {
		if err := ctx.Err(); err != nil {
			log.Warn(ctx, "sweep cancelled",
				logging.Int("completed", i),
				logging.Int("requested", len(spacings)),
			)
			return points, fmt.Errorf("sweep cancelled after %d/%d spacings: %w", i, len(spacings), err)
		}

		s.Env.ClearReceivers()
		placed, err := s.Env.PlaceReceiverLine(line.Start, line.End, spacing)
		if err != nil {
			return points, fmt.Errorf("spacing %v: %w", spacing, err)
		}
		if s.Recorder != nil {
			s.Recorder.SetReceiverCount(placed)
		}

		// Offset the seed so arrangements draw independent randomness while
		// the sweep as a whole stays reproducible.
		batch := cfg
		batch.Seed = DeriveSeed(cfg.Seed, int64(i))

		result, err := s.Run(ctx, batch)
		points = append(points, SweepPoint{Spacing: spacing, Receivers: placed, Result: result})
		if err != nil {
			return points, fmt.Errorf("spacing %v: %w", spacing, err)
		}
		log.Info(ctx, "sweep point finished",
			logging.Float64("spacing", spacing),
			logging.Int("receivers", placed),
			logging.Float64("efficiency", result.Efficiency),
		)
	}
	return points, nil
}
