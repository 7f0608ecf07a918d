package scenario

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `element not found: role=button name="Cancel"`,
		(&ElementNotFoundError{Locator: ByRole("button", "Cancel")}).Error())

	assert.Equal(t, `ambiguous locator: text="Add Subscription" matched 3 visible elements`,
		(&AmbiguousLocatorError{Locator: ByText("Add Subscription"), Count: 3}).Error())

	assert.Equal(t, "timed out after 30s waiting for networkidle",
		(&TimeoutError{Condition: WaitNetworkIdle, Timeout: 30 * time.Second}).Error())

	assert.Equal(t, `assertion failed: text="Select CSV File" exact expected visible, got not visible`,
		(&AssertionError{Locator: Locator{Text: "Select CSV File", Exact: true}, Expected: StateVisible, Actual: "not visible"}).Error())
}

func TestStepErrorUnwraps(t *testing.T) {
	cause := &NavigationError{URL: "http://localhost:3000/dashboard", err: errors.New("connection refused")}
	err := &StepError{Index: 1, Description: "Dashboard", Err: cause}

	assert.Equal(t, "step 1 (Dashboard): navigation to http://localhost:3000/dashboard failed: connection refused", err.Error())

	var navErr *NavigationError
	assert.ErrorAs(t, err, &navErr)
	assert.EqualError(t, errors.Unwrap(navErr), "connection refused")
}

func TestStepDescription(t *testing.T) {
	assert.Equal(t, "Dashboard", Step{Name: "Dashboard", Action: Goto("/dashboard")}.Description())
	assert.Equal(t, `click role=button name="Import Data"`, Step{Action: Click(ByRole("button", "Import Data"))}.Description())
}
