package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/uismoke/internal/scenario"
)

// visibleOnly narrows a locator to elements that are currently visible.
const visibleOnly = "visible=true"

// Page adapts a playwright.Page to scenario.Page.
type Page struct {
	page playwright.Page
}

var _ scenario.Page = (*Page)(nil)

func NewPage(page playwright.Page) *Page {
	return &Page{page: page}
}

// Goto navigates and treats HTTP error statuses as failures.
func (p *Page) Goto(url string) error {
	resp, err := p.page.Goto(url)
	if err != nil {
		return mapError(err)
	}
	if resp != nil && !resp.Ok() {
		return fmt.Errorf("HTTP %d %s", resp.Status(), resp.StatusText())
	}
	return nil
}

func (p *Page) WaitForNetworkIdle(timeout time.Duration) error {
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: millis(timeout),
	})
	return mapError(err)
}

// Resolve waits for the first visible match, then counts all visible matches.
func (p *Page) Resolve(loc scenario.Locator, timeout time.Duration) (int, error) {
	visible := p.locate(loc).Locator(visibleOnly)

	err := visible.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return 0, nil
		}
		return 0, mapError(err)
	}

	n, err := visible.Count()
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

func (p *Page) WaitHidden(loc scenario.Locator, timeout time.Duration) (bool, error) {
	err := p.locate(loc).Locator(visibleOnly).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: millis(timeout),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return false, nil
		}
		return false, mapError(err)
	}
	return true, nil
}

func (p *Page) Click(loc scenario.Locator) error {
	return mapError(p.locate(loc).Locator(visibleOnly).Click())
}

func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return mapError(err)
}

func (p *Page) locate(loc scenario.Locator) playwright.Locator {
	if loc.Role != "" {
		return p.page.GetByRole(playwright.AriaRole(loc.Role), playwright.PageGetByRoleOptions{
			Name:  loc.Name,
			Exact: playwright.Bool(loc.Exact),
		})
	}
	return p.page.GetByText(loc.Text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(loc.Exact),
	})
}

// mapError tags Playwright timeouts with scenario.ErrTimeout so the runner
// can classify them.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", scenario.ErrTimeout, err)
	}
	return err
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
