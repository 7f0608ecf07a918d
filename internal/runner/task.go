package runner

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// Task is a unit of scheduled work.
type Task interface {
	Name() string
	// Schedule is a cron expression or descriptor, e.g. "@every 15m".
	Schedule() string
	Run(ctx context.Context) error
	// Timeout bounds a single execution; Run's context expires after it.
	Timeout() time.Duration
}

// TaskRegistry holds tasks by unique name.
type TaskRegistry struct {
	tasks map[string]Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]Task),
	}
}

// Register adds a task. Names must be unique.
func (r *TaskRegistry) Register(task Task) error {
	if _, exists := r.tasks[task.Name()]; exists {
		return fmt.Errorf("task %q already registered", task.Name())
	}
	r.tasks[task.Name()] = task
	return nil
}

func (r *TaskRegistry) Get(name string) (Task, bool) {
	task, exists := r.tasks[name]
	return task, exists
}

// Names returns registered task names in sorted order.
func (r *TaskRegistry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
