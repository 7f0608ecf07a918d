package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWaitTimeout    = 30 * time.Second
	DefaultLocatorTimeout = 5 * time.Second
)

// Page is the browser page a Runner drives. The caller owns it: it must be
// open before Run and is released by the caller afterwards. Closing it
// aborts any in-flight wait.
type Page interface {
	// Goto navigates to an absolute URL and waits for the load event.
	Goto(url string) error
	// WaitForNetworkIdle blocks until no requests are in flight for the
	// browser's quiescence window. It returns an error wrapping ErrTimeout
	// when the bound expires.
	WaitForNetworkIdle(timeout time.Duration) error
	// Resolve waits up to timeout for loc to match a visible element and
	// returns the number of visible matches. Zero means nothing appeared.
	Resolve(loc Locator, timeout time.Duration) (int, error)
	// WaitHidden waits up to timeout until nothing visible matches loc.
	WaitHidden(loc Locator, timeout time.Duration) (bool, error)
	// Click clicks the element matched by loc.
	Click(loc Locator) error
	// Screenshot captures the viewport to path, overwriting it.
	Screenshot(path string) error
}

// Observer receives step and run outcomes, e.g. for metrics.
type Observer interface {
	StepFinished(index int, step Step, elapsed time.Duration, err error)
	RunFinished(result *RunResult, err error)
}

// Options configures a Runner.
type Options struct {
	BaseURL        string
	OutputDir      string
	WaitTimeout    time.Duration
	LocatorTimeout time.Duration
	Logger         *log.Logger
	Observer       Observer
}

// Runner executes steps strictly in order against one Page.
type Runner struct {
	page     Page
	base     *url.URL
	opts     Options
	logger   *log.Logger
	observer Observer
}

// NewRunner creates a runner bound to page.
func NewRunner(page Page, opts Options) (*Runner, error) {
	if page == nil {
		return nil, errors.New("page is required")
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultWaitTimeout
	}
	if opts.LocatorTimeout <= 0 {
		opts.LocatorTimeout = DefaultLocatorTimeout
	}

	r := &Runner{
		page:     page,
		opts:     opts,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
	if r.logger == nil {
		r.logger = log.New(os.Stdout, "[UISMOKE] ", log.LstdFlags)
	}
	if opts.BaseURL != "" {
		base, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
		}
		r.base = base
	}
	return r, nil
}

// Run executes steps in order and stops at the first failure. The returned
// result is never nil; on failure it reports how far the run got.
func (r *Runner) Run(ctx context.Context, steps []Step) (*RunResult, error) {
	result := &RunResult{
		ID:         uuid.NewString(),
		State:      StateNotStarted,
		StepsTotal: len(steps),
	}
	if len(steps) == 0 {
		return result, ErrNoSteps
	}
	if err := Validate(steps); err != nil {
		return result, err
	}

	result.State = StateRunning
	result.StartedAt = time.Now()

	err := r.runSteps(ctx, steps, result)

	result.Duration = time.Since(result.StartedAt)
	if err != nil {
		result.State = StateFailed
		r.logger.Printf("Run %s failed after %v: %v", result.ID, result.Duration, err)
	} else {
		result.State = StateCompleted
		r.logger.Printf("Run %s completed: %d steps, %d screenshots in %v",
			result.ID, result.StepsCompleted, len(result.Screenshots), result.Duration)
	}
	if r.observer != nil {
		r.observer.RunFinished(result, err)
	}
	return result, err
}

func (r *Runner) runSteps(ctx context.Context, steps []Step, result *RunResult) error {
	for i, step := range steps {
		index := i + 1
		if err := ctx.Err(); err != nil {
			return &StepError{Index: index, Description: step.Description(), Err: err}
		}

		r.logger.Printf("[%d/%d] %s...", index, len(steps), step.Description())

		start := time.Now()
		shot, err := r.executeStep(step)
		if r.observer != nil {
			r.observer.StepFinished(index, step, time.Since(start), err)
		}
		if err != nil {
			return &StepError{Index: index, Description: step.Description(), Err: err}
		}

		result.StepsCompleted++
		if shot != "" {
			result.Screenshots = append(result.Screenshots, shot)
		}
		r.logger.Printf("%s verified.", step.Description())
	}
	return nil
}

// executeStep performs one step and returns the screenshot path it wrote.
func (r *Runner) executeStep(step Step) (string, error) {
	if err := r.perform(step.Action); err != nil {
		return "", err
	}
	if err := r.wait(step.Wait); err != nil {
		return "", err
	}
	for _, a := range step.Assertions {
		if err := r.check(a); err != nil {
			return "", err
		}
	}
	if step.Screenshot == "" {
		return "", nil
	}

	path := r.screenshotPath(step.Screenshot)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if err := r.page.Screenshot(path); err != nil {
		return "", fmt.Errorf("failed to capture screenshot %s: %w", path, err)
	}
	return path, nil
}

func (r *Runner) perform(action Action) error {
	switch action.Kind {
	case ActionGoto:
		target, err := r.resolveURL(action.URL)
		if err != nil {
			return err
		}
		if err := r.page.Goto(target); err != nil {
			return &NavigationError{URL: target, err: err}
		}
		return nil
	case ActionClick:
		if err := r.resolveOne(action.Locator); err != nil {
			return err
		}
		if err := r.page.Click(action.Locator); err != nil {
			return fmt.Errorf("failed to click %s: %w", action.Locator, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", action.Kind)
	}
}

// resolveOne enforces the single-match policy for action targets.
func (r *Runner) resolveOne(loc Locator) error {
	n, err := r.page.Resolve(loc, r.opts.LocatorTimeout)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", loc, err)
	}
	switch {
	case n == 0:
		return &ElementNotFoundError{Locator: loc}
	case n > 1:
		return &AmbiguousLocatorError{Locator: loc, Count: n}
	}
	return nil
}

func (r *Runner) wait(cond WaitCondition) error {
	switch cond {
	case WaitNone:
		return nil
	case WaitNetworkIdle, "":
		err := r.page.WaitForNetworkIdle(r.opts.WaitTimeout)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTimeout) {
			return &TimeoutError{Condition: WaitNetworkIdle, Timeout: r.opts.WaitTimeout, err: err}
		}
		return fmt.Errorf("failed waiting for %s: %w", WaitNetworkIdle, err)
	default:
		return fmt.Errorf("unknown wait condition %q", cond)
	}
}

func (r *Runner) check(a Assertion) error {
	switch a.Expected {
	case StateVisible, "":
		n, err := r.page.Resolve(a.Locator, r.opts.LocatorTimeout)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", a.Locator, err)
		}
		if n == 0 {
			return &AssertionError{Locator: a.Locator, Expected: StateVisible, Actual: "not visible"}
		}
		if n > 1 {
			return &AmbiguousLocatorError{Locator: a.Locator, Count: n}
		}
		return nil
	case StateHidden:
		hidden, err := r.page.WaitHidden(a.Locator, r.opts.LocatorTimeout)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", a.Locator, err)
		}
		if !hidden {
			return &AssertionError{Locator: a.Locator, Expected: StateHidden, Actual: "visible"}
		}
		return nil
	default:
		return fmt.Errorf("unknown expected state %q", a.Expected)
	}
}

func (r *Runner) resolveURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	if r.base == nil {
		return "", fmt.Errorf("relative URL %q requires a base URL", raw)
	}
	return r.base.ResolveReference(u).String(), nil
}

func (r *Runner) screenshotPath(name string) string {
	if filepath.IsAbs(name) || r.opts.OutputDir == "" {
		return name
	}
	return filepath.Join(r.opts.OutputDir, name)
}

// Validate checks a plan for structural errors without touching a browser.
func Validate(steps []Step) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	for i, step := range steps {
		if err := validateStep(step); err != nil {
			return &StepError{Index: i + 1, Description: step.Description(), Err: err}
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Action.Kind {
	case ActionGoto:
		if step.Action.URL == "" {
			return errors.New("goto requires a URL")
		}
	case ActionClick:
		if err := validateLocator(step.Action.Locator); err != nil {
			return fmt.Errorf("click target: %w", err)
		}
	default:
		return fmt.Errorf("unknown action %q", step.Action.Kind)
	}

	switch step.Wait {
	case "", WaitNone, WaitNetworkIdle:
	default:
		return fmt.Errorf("unknown wait condition %q", step.Wait)
	}

	for j, a := range step.Assertions {
		if err := validateLocator(a.Locator); err != nil {
			return fmt.Errorf("assertion %d: %w", j+1, err)
		}
		switch a.Expected {
		case "", StateVisible, StateHidden:
		default:
			return fmt.Errorf("assertion %d: unknown expected state %q", j+1, a.Expected)
		}
	}
	return nil
}

func validateLocator(loc Locator) error {
	switch {
	case loc.IsZero():
		return errors.New("locator needs text or role")
	case loc.Text != "" && loc.Role != "":
		return errors.New("locator cannot combine text and role")
	case loc.Role != "" && loc.Name == "":
		return fmt.Errorf("role %q locator needs a name", loc.Role)
	}
	return nil
}
