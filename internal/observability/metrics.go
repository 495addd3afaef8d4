package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation engine and
// exposes a ready-to-serve /metrics handler. It satisfies the
// core.MetricsRecorder interface so sweeps can drive it directly.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TrialsTotal         prometheus.Counter
	TransmissionsTotal  prometheus.Counter
	DetectionsTotal     prometheus.Counter
	PathRejectionsTotal prometheus.Counter
	TrialDuration       prometheus.Histogram
	ScenarioReceivers   prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Re-registering against the same registry returns the existing collectors.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	trials, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_trials_total",
		Help: "Total number of completed simulation trials.",
	}), "sim_trials_total")
	if err != nil {
		return nil, err
	}
	transmissions, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_transmissions_total",
		Help: "Total number of simulated transmission events.",
	}), "sim_transmissions_total")
	if err != nil {
		return nil, err
	}
	detections, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_detections_total",
		Help: "Total number of successful detection trials.",
	}), "sim_detections_total")
	if err != nil {
		return nil, err
	}
	rejections, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_path_rejections_total",
		Help: "Total number of random-walk step proposals rejected by the boundary.",
	}), "sim_path_rejections_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_trial_duration_seconds",
		Help:    "Wall-clock duration of one simulation trial.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}), "sim_trial_duration_seconds")
	if err != nil {
		return nil, err
	}

	receivers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scenario_receivers",
		Help: "Current number of receivers in the environment.",
	}), "scenario_receivers")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:            gatherer,
		TrialsTotal:         trials,
		TransmissionsTotal:  transmissions,
		DetectionsTotal:     detections,
		PathRejectionsTotal: rejections,
		TrialDuration:       duration,
		ScenarioReceivers:   receivers,
	}, nil
}

// TrialCompleted records one finished trial. Satisfies core.MetricsRecorder.
func (c *SimCollector) TrialCompleted(duration time.Duration, transmissions, detections int) {
	if c == nil {
		return
	}
	c.TrialsTotal.Inc()
	c.TransmissionsTotal.Add(float64(transmissions))
	c.DetectionsTotal.Add(float64(detections))
	c.TrialDuration.Observe(duration.Seconds())
}

// PathRejection records one rejected random-walk proposal.
func (c *SimCollector) PathRejection() {
	if c == nil {
		return
	}
	c.PathRejectionsTotal.Inc()
}

// SetReceiverCount updates the receiver gauge; wired to environment events.
func (c *SimCollector) SetReceiverCount(n int) {
	if c == nil {
		return
	}
	c.ScenarioReceivers.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
