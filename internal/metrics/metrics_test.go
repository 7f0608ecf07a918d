package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/uismoke/internal/scenario"
)

func TestRunMetrics_RecordsSteps(t *testing.T) {
	m := NewRunMetrics("dashboard")
	steps := scenario.Dashboard()

	m.StepFinished(1, steps[0], 200*time.Millisecond, nil)
	m.StepFinished(2, steps[1], 100*time.Millisecond, nil)
	m.StepFinished(3, steps[2], 50*time.Millisecond, &scenario.StepError{
		Index: 3,
		Err:   &scenario.AssertionError{Locator: scenario.ByText("New Subscription"), Expected: scenario.StateVisible},
	})
	m.RunFinished(&scenario.RunResult{State: scenario.StateFailed, StepsCompleted: 2}, fmt.Errorf("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepResults.WithLabelValues("Dashboard", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepResults.WithLabelValues("Add Subscription dialog", "assertion_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.screenshots))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.lastRunSuccess))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lastRunSteps))
	assert.Equal(t, 3, testutil.CollectAndCount(m.stepDuration))
}

func TestRunMetrics_SuccessfulRun(t *testing.T) {
	m := NewRunMetrics("dashboard")
	m.RunFinished(&scenario.RunResult{State: scenario.StateCompleted, StepsCompleted: 6}, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lastRunSuccess))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.lastRunSteps))
	assert.Positive(t, testutil.ToFloat64(m.lastRunTime))
}

func TestRunMetrics_WriteTextfile(t *testing.T) {
	m := NewRunMetrics("dashboard")
	m.StepFinished(1, scenario.Dashboard()[0], time.Second, nil)
	m.RunFinished(&scenario.RunResult{State: scenario.StateCompleted, StepsCompleted: 1}, nil)

	path := filepath.Join(t.TempDir(), "textfile", "uismoke.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `uismoke_last_run_success{scenario="dashboard"} 1`)
	assert.Contains(t, body, `uismoke_step_results_total{result="passed",scenario="dashboard",step="Dashboard"} 1`)
	assert.Contains(t, body, "uismoke_step_duration_seconds_bucket")
}

func TestResultLabel(t *testing.T) {
	wrap := func(err error) error { return &scenario.StepError{Index: 1, Err: err} }

	tests := []struct {
		err  error
		want string
	}{
		{nil, "passed"},
		{wrap(&scenario.ElementNotFoundError{}), "element_not_found"},
		{wrap(&scenario.AmbiguousLocatorError{}), "ambiguous_locator"},
		{wrap(&scenario.TimeoutError{}), "timeout"},
		{wrap(&scenario.AssertionError{}), "assertion_failed"},
		{wrap(&scenario.NavigationError{}), "navigation_failed"},
		{fmt.Errorf("disk full"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resultLabel(tt.err))
	}
}
