package scenario

import (
	"fmt"
	"strconv"
	"time"
)

// ActionKind identifies what a step does before its checks run.
type ActionKind string

const (
	ActionGoto  ActionKind = "goto"
	ActionClick ActionKind = "click"
)

// WaitCondition is the stabilization condition awaited after an action.
type WaitCondition string

const (
	WaitNetworkIdle WaitCondition = "networkidle"
	WaitNone        WaitCondition = "none"
)

// ExpectedState is the state an assertion expects its locator to be in.
type ExpectedState string

const (
	StateVisible ExpectedState = "visible"
	StateHidden  ExpectedState = "hidden"
)

// Locator identifies a UI element by its text or by accessible role and name.
// Exactly one of Text or Role is set.
type Locator struct {
	Text  string
	Role  string
	Name  string
	Exact bool
}

// ByText matches elements containing the given text.
func ByText(text string) Locator {
	return Locator{Text: text}
}

// ByRole matches elements with the given ARIA role and accessible name.
func ByRole(role, name string) Locator {
	return Locator{Role: role, Name: name}
}

// IsZero reports whether the locator selects nothing.
func (l Locator) IsZero() bool {
	return l.Text == "" && l.Role == ""
}

func (l Locator) String() string {
	var s string
	if l.Role != "" {
		s = fmt.Sprintf("role=%s name=%s", l.Role, strconv.Quote(l.Name))
	} else {
		s = "text=" + strconv.Quote(l.Text)
	}
	if l.Exact {
		s += " exact"
	}
	return s
}

// Action is either a navigation or a click.
type Action struct {
	Kind    ActionKind
	URL     string
	Locator Locator
}

// Goto navigates to url. Paths are resolved against the runner's base URL.
func Goto(url string) Action {
	return Action{Kind: ActionGoto, URL: url}
}

// Click clicks the single visible element matched by loc.
func Click(loc Locator) Action {
	return Action{Kind: ActionClick, Locator: loc}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionGoto:
		return "goto " + a.URL
	case ActionClick:
		return "click " + a.Locator.String()
	default:
		return string(a.Kind)
	}
}

// Assertion is a post-condition checked after a step's action and wait.
type Assertion struct {
	Locator  Locator
	Expected ExpectedState
}

// Visible asserts that loc resolves to exactly one visible element.
func Visible(loc Locator) Assertion {
	return Assertion{Locator: loc, Expected: StateVisible}
}

// Hidden asserts that nothing visible matches loc.
func Hidden(loc Locator) Assertion {
	return Assertion{Locator: loc, Expected: StateHidden}
}

// Step is one unit of navigation or interaction plus its checks.
type Step struct {
	Name       string
	Action     Action
	Wait       WaitCondition
	Assertions []Assertion
	// Screenshot is written after all assertions pass. Relative paths are
	// joined onto the runner's output directory.
	Screenshot string
}

// Description is the human-readable label used in progress output and errors.
func (s Step) Description() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Action.String()
}

// State is the lifecycle state of a run.
type State string

const (
	StateNotStarted State = "not_started"
	StateRunning    State = "running"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// RunResult summarizes one execution of a step list.
type RunResult struct {
	ID             string
	State          State
	StepsTotal     int
	StepsCompleted int
	Screenshots    []string
	StartedAt      time.Time
	Duration       time.Duration
}
