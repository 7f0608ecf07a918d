package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gotrs-io/uismoke/internal/scenario"
)

const namespace = "uismoke"

// RunMetrics records scenario outcomes in its own registry so a run can be
// exported as a node-exporter textfile without a long-lived HTTP endpoint.
type RunMetrics struct {
	registry       *prometheus.Registry
	stepDuration   *prometheus.HistogramVec
	stepResults    *prometheus.CounterVec
	screenshots    prometheus.Counter
	lastRunSuccess prometheus.Gauge
	lastRunTime    prometheus.Gauge
	lastRunSteps   prometheus.Gauge
}

var _ scenario.Observer = (*RunMetrics)(nil)

// NewRunMetrics creates metrics registered on a fresh registry.
func NewRunMetrics(scenarioName string) *RunMetrics {
	labels := prometheus.Labels{"scenario": scenarioName}
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "step_duration_seconds",
			Help:        "Time taken by each scenario step",
			ConstLabels: labels,
			Buckets:     []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"step"}),
		stepResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "step_results_total",
			Help:        "Scenario steps by outcome",
			ConstLabels: labels,
		}, []string{"step", "result"}),
		screenshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "screenshots_total",
			Help:        "Screenshots written",
			ConstLabels: labels,
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_success",
			Help:        "1 if the last run completed, 0 if it failed",
			ConstLabels: labels,
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
		lastRunSteps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_steps_completed",
			Help:        "Steps completed by the last run",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.stepDuration,
		m.stepResults,
		m.screenshots,
		m.lastRunSuccess,
		m.lastRunTime,
		m.lastRunSteps,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *RunMetrics) StepFinished(_ int, step scenario.Step, elapsed time.Duration, err error) {
	name := step.Description()
	m.stepDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	m.stepResults.WithLabelValues(name, resultLabel(err)).Inc()
	if err == nil && step.Screenshot != "" {
		m.screenshots.Inc()
	}
}

func (m *RunMetrics) RunFinished(result *scenario.RunResult, err error) {
	if err == nil && result.State == scenario.StateCompleted {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
	m.lastRunTime.Set(float64(time.Now().Unix()))
	m.lastRunSteps.Set(float64(result.StepsCompleted))
}

// WriteTextfile writes the registry in Prometheus text format. The file is
// replaced atomically.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func resultLabel(err error) string {
	var (
		notFound  *scenario.ElementNotFoundError
		ambiguous *scenario.AmbiguousLocatorError
		timeout   *scenario.TimeoutError
		assertion *scenario.AssertionError
		nav       *scenario.NavigationError
	)
	switch {
	case err == nil:
		return "passed"
	case errors.As(err, &notFound):
		return "element_not_found"
	case errors.As(err, &ambiguous):
		return "ambiguous_locator"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &assertion):
		return "assertion_failed"
	case errors.As(err, &nav):
		return "navigation_failed"
	default:
		return "error"
	}
}
