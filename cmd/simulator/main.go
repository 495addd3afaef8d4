package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pelagiclabs/telemetry-simulator/core"
	"github.com/pelagiclabs/telemetry-simulator/internal/logging"
	"github.com/pelagiclabs/telemetry-simulator/internal/observability"
	"github.com/pelagiclabs/telemetry-simulator/model"
)

func main() {
	scenarioPath := flag.String("scenario", "", "optional JSON scenario file (region + receivers)")
	trials := flag.Int("trials", 100, "number of independent crossing trials")
	seed := flag.Int64("seed", 1, "master random seed")
	workers := flag.Int("workers", 4, "concurrent trial workers")

	stepLength := flag.Float64("step-length", 25, "random-walk step length")
	numSteps := flag.Int("num-steps", 400, "random-walk steps per trial")
	turnStdDev := flag.Float64("turn-sd", 0.35, "turning-angle standard deviation (radians)")

	velocity := flag.Float64("velocity", 1.0, "transmitter velocity (units/s)")
	delayMin := flag.Float64("delay-min", 60, "minimum inter-transmission delay (s)")
	delayMax := flag.Float64("delay-max", 180, "maximum inter-transmission delay (s)")
	burst := flag.Float64("burst", 5.0, "signal burst duration (s)")

	detectionRadius := flag.Float64("detection-radius", 500, "logistic range midpoint")
	rangeSlope := flag.Float64("range-slope", 0.01, "logistic range slope")

	spacings := flag.String("spacings", "", "comma-separated receiver spacings to sweep (replaces scenario receivers)")
	metricsAddr := flag.String("metrics-addr", "", "address for the Prometheus /metrics endpoint (empty disables)")

	flag.Parse()

	ctx := context.Background()
	log := logging.NewFromEnv()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "metrics endpoint up", logging.String("addr", *metricsAddr))
	}

	env := core.NewEnvironment()
	env.Subscribe(func(ev core.EnvEvent) {
		if ev.Type == core.EventReceiversChanged {
			collector.SetReceiverCount(ev.ReceiverCount)
		}
	})

	if *scenarioPath != "" {
		f, err := os.Open(*scenarioPath)
		if err != nil {
			log.Error(ctx, "failed to open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		scenario, err := core.LoadScenario(env, f)
		f.Close()
		if err != nil {
			log.Error(ctx, "failed to load scenario", logging.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info(ctx, "scenario loaded",
			logging.Int("receivers", len(scenario.ReceiverIDs)),
			logging.Int("transmissions", len(scenario.Transmissions)),
		)
	}

	// Default study region when the scenario does not supply one: a circular
	// lake with the crossing line through its middle.
	if env.Region() == nil {
		region, err := core.NewCircleRegion(model.Point{X: 0, Y: 0}, 5000)
		if err != nil {
			panic(err)
		}
		env.SetRegion(region)
	}
	env.SetRangeFunc(core.LogisticRange(*detectionRadius, *rangeSlope))

	sim := &core.ReceiverLineSimulator{
		Env:      env,
		Log:      log,
		Recorder: collector,
	}

	cfg := core.CrossingConfig{
		Trials:     *trials,
		Seed:       *seed,
		Workers:    *workers,
		Start:      model.Point{X: 0, Y: -4000},
		StepLength: *stepLength,
		NumSteps:   *numSteps,
		Turn:       core.NormalTurn{StdDev: *turnStdDev},
		Spec: model.TransmitterSpec{
			Velocity:      *velocity,
			Delay:         model.DelayRange{Min: *delayMin, Max: *delayMax},
			BurstDuration: *burst,
		},
	}

	tracer := otel.Tracer("simulator")
	line := core.LineSpec{
		Start: model.Point{X: -2000, Y: 0},
		End:   model.Point{X: 2000, Y: 0},
	}

	if *spacings != "" {
		values, err := parseSpacings(*spacings)
		if err != nil {
			log.Error(ctx, "bad -spacings", logging.String("error", err.Error()))
			os.Exit(1)
		}

		sweepCtx, span := tracer.Start(ctx, "spacing-sweep",
			trace.WithAttributes(append(trialAttrs(cfg), attribute.Int("sim.spacings", len(values)))...))
		points, err := sim.SweepSpacings(sweepCtx, cfg, line, values)
		span.End()
		if err != nil {
			log.Error(ctx, "sweep failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		printSweep(points)
		return
	}

	if env.ReceiverCount() == 0 {
		if _, err := env.PlaceReceiverLine(line.Start, line.End, 800); err != nil {
			log.Error(ctx, "failed to place receiver line", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}

	runCtx, span := tracer.Start(ctx, "crossing-run", trace.WithAttributes(trialAttrs(cfg)...))
	result, err := sim.Run(runCtx, cfg)
	span.End()
	if err != nil {
		log.Error(ctx, "crossing run failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	printResult(result)
}

func printSweep(points []core.SweepPoint) {
	fmt.Printf("%10s %10s %12s %14s\n", "spacing", "receivers", "efficiency", "mean detects")
	for _, pt := range points {
		fmt.Printf("%10.1f %10d %12.3f %14.2f\n",
			pt.Spacing, pt.Receivers, pt.Result.Efficiency, pt.Result.MeanDetections)
	}
}

func printResult(result core.CrossingResult) {
	fmt.Printf("Run %s: %d/%d trials completed\n", result.RunID, result.Completed, result.Requested)
	fmt.Printf("  detection efficiency: %.3f\n", result.Efficiency)
	fmt.Printf("  detections per trial: mean=%.2f sd=%.2f median=%.1f\n",
		result.MeanDetections, result.StdDevDetections, result.MedianDetections)
}

func parseSpacings(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("spacing %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func trialAttrs(cfg core.CrossingConfig) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("sim.trials", cfg.Trials),
		attribute.Int64("sim.seed", cfg.Seed),
		attribute.Float64("sim.step_length", cfg.StepLength),
	}
}
