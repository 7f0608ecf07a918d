package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gotrs-io/uismoke/internal/browser"
	"github.com/gotrs-io/uismoke/internal/config"
	"github.com/gotrs-io/uismoke/internal/metrics"
	"github.com/gotrs-io/uismoke/internal/runner"
	"github.com/gotrs-io/uismoke/internal/scenario"
)

// PageOpener acquires a page for exactly one run and returns its release
// function.
type PageOpener func() (scenario.Page, func() error, error)

// SmokeTask runs one scenario against a fresh browser session.
type SmokeTask struct {
	name     string
	steps    []scenario.Step
	cfg      *config.Config
	open     PageOpener
	logger   *log.Logger
	progress *log.Logger
}

// NewSmokeTask creates a task that runs steps with a Playwright session
// configured by cfg. progress receives the per-step lines; logger receives
// lifecycle messages.
func NewSmokeTask(name string, steps []scenario.Step, cfg *config.Config, progress *log.Logger) *SmokeTask {
	logger := log.New(os.Stdout, "[SMOKE] ", log.LstdFlags)
	return &SmokeTask{
		name:     name,
		steps:    steps,
		cfg:      cfg,
		open:     BrowserOpener(&cfg.Browser, log.New(progress.Writer(), "[BROWSER] ", log.LstdFlags)),
		logger:   logger,
		progress: progress,
	}
}

// BrowserOpener opens a Playwright session per run.
func BrowserOpener(cfg *config.BrowserConfig, logger *log.Logger) PageOpener {
	return func() (scenario.Page, func() error, error) {
		s := browser.NewSession(cfg, logger)
		if err := s.Open(); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s.Adapter(), s.Close, nil
	}
}

var _ runner.Task = (*SmokeTask)(nil)

func (t *SmokeTask) Name() string {
	return t.name
}

func (t *SmokeTask) Schedule() string {
	return t.cfg.Schedule.Cron
}

func (t *SmokeTask) Timeout() time.Duration {
	return t.cfg.Schedule.Timeout
}

// Run executes the scenario once.
func (t *SmokeTask) Run(ctx context.Context) error {
	_, err := t.Execute(ctx)
	return err
}

// Execute opens a page, runs the scenario and releases the page. When ctx
// ends first the page is closed, which aborts any in-flight wait.
func (t *SmokeTask) Execute(ctx context.Context) (*scenario.RunResult, error) {
	page, release, err := t.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	var once sync.Once
	closePage := func() {
		once.Do(func() {
			if err := release(); err != nil {
				t.logger.Printf("Failed to release browser: %v", err)
			}
		})
	}
	defer closePage()
	stop := context.AfterFunc(ctx, closePage)
	defer stop()

	m := metrics.NewRunMetrics(t.name)
	r, err := scenario.NewRunner(page, scenario.Options{
		BaseURL:        t.cfg.Target.BaseURL,
		OutputDir:      t.cfg.Run.OutputDir,
		WaitTimeout:    t.cfg.Run.WaitTimeout,
		LocatorTimeout: t.cfg.Run.LocatorTimeout,
		Logger:         t.progress,
		Observer:       m,
	})
	if err != nil {
		return nil, err
	}

	result, runErr := r.Run(ctx, t.steps)

	if path := t.cfg.Metrics.Textfile; path != "" {
		if err := m.WriteTextfile(path); err != nil {
			t.logger.Printf("Failed to write metrics: %v", err)
		}
	}
	return result, runErr
}
