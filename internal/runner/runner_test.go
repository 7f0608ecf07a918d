package runner

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	name     string
	schedule string
	timeout  time.Duration
	runs     int32
	err      error
	deadline time.Time
}

func (f *fakeTask) Name() string { return f.name }
func (f *fakeTask) Schedule() string { return f.schedule }
func (f *fakeTask) Timeout() time.Duration { return f.timeout }

func (f *fakeTask) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runs, 1)
	f.deadline, _ = ctx.Deadline()
	return f.err
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{}, "", 0)
}

func TestTaskRegistry(t *testing.T) {
	registry := NewTaskRegistry()
	require.NoError(t, registry.Register(&fakeTask{name: "b"}))
	require.NoError(t, registry.Register(&fakeTask{name: "a"}))

	err := registry.Register(&fakeTask{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Equal(t, []string{"a", "b"}, registry.Names())

	task, ok := registry.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", task.Name())

	_, ok = registry.Get("missing")
	assert.False(t, ok)
}

func TestRunner_RunNow(t *testing.T) {
	task := &fakeTask{name: "smoke", schedule: "@every 1h", timeout: time.Minute}
	registry := NewTaskRegistry()
	require.NoError(t, registry.Register(task))
	r := NewRunner(registry, quietLogger())

	start := time.Now()
	require.NoError(t, r.RunNow(context.Background(), "smoke"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&task.runs))
	assert.WithinDuration(t, start.Add(time.Minute), task.deadline, 5*time.Second)

	assert.Error(t, r.RunNow(context.Background(), "missing"))
}

func TestRunner_RunNowPropagatesFailure(t *testing.T) {
	task := &fakeTask{name: "smoke", schedule: "@every 1h", timeout: time.Minute, err: errors.New("step 2 failed")}
	registry := NewTaskRegistry()
	require.NoError(t, registry.Register(task))
	r := NewRunner(registry, quietLogger())

	assert.EqualError(t, r.RunNow(context.Background(), "smoke"), "step 2 failed")
}

func TestRunner_InvalidSchedule(t *testing.T) {
	registry := NewTaskRegistry()
	require.NoError(t, registry.Register(&fakeTask{name: "smoke", schedule: "not a schedule", timeout: time.Second}))
	r := NewRunner(registry, quietLogger())

	err := r.Schedule(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule task smoke")
}

func TestRunner_StartStopsOnContext(t *testing.T) {
	registry := NewTaskRegistry()
	require.NoError(t, registry.Register(&fakeTask{name: "smoke", schedule: "@every 1h", timeout: time.Second}))
	r := NewRunner(registry, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
