package scenario

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout is returned by Page implementations when a bounded wait
	// expires. The runner turns it into a *TimeoutError.
	ErrTimeout = errors.New("timeout")
	// ErrNoSteps is returned when Run is called with an empty plan.
	ErrNoSteps = errors.New("scenario has no steps")
)

// ElementNotFoundError means an action locator matched no visible element.
type ElementNotFoundError struct {
	Locator Locator
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element not found: %s", e.Locator)
}

// AmbiguousLocatorError means a locator matched more than one visible element.
type AmbiguousLocatorError struct {
	Locator Locator
	Count   int
}

func (e *AmbiguousLocatorError) Error() string {
	return fmt.Sprintf("ambiguous locator: %s matched %d visible elements", e.Locator, e.Count)
}

// TimeoutError means a stabilization wait did not finish within its bound.
type TimeoutError struct {
	Condition WaitCondition
	Timeout   time.Duration
	err       error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for %s", e.Timeout, e.Condition)
}

func (e *TimeoutError) Unwrap() error {
	return e.err
}

// AssertionError means an assertion's expected state was not observed.
type AssertionError struct {
	Locator  Locator
	Expected ExpectedState
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s expected %s, got %s", e.Locator, e.Expected, e.Actual)
}

// NavigationError means the browser could not load a URL.
type NavigationError struct {
	URL string
	err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.err)
}

func (e *NavigationError) Unwrap() error {
	return e.err
}

// StepError locates a failure within a run.
type StepError struct {
	Index       int // 1-based
	Description string
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Description, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
