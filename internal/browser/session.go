package browser

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/uismoke/internal/config"
)

// Session owns one Playwright driver, browser, context and page.
type Session struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	config     *config.BrowserConfig
	logger     *log.Logger
}

// NewSession creates an unopened session.
func NewSession(cfg *config.BrowserConfig, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(os.Stdout, "[BROWSER] ", log.LstdFlags)
	}
	return &Session{
		config: cfg,
		logger: logger,
	}
}

// Open starts the driver, launches Chromium and creates a page. On error the
// session may be partially open; Close is still safe to call.
func (s *Session) Open() error {
	if s.config.InstallDriver {
		s.logger.Println("Installing Playwright driver and Chromium...")
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	s.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.config.Headless),
		SlowMo:   playwright.Float(float64(s.config.SlowMo.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	s.Browser = browser

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  s.config.Viewport.Width,
			Height: s.config.Viewport.Height,
		},
	})
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	s.Context = context

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	s.Page = page

	page.SetDefaultNavigationTimeout(float64(s.config.NavigationTimeout.Milliseconds()))

	s.logger.Printf("Chromium ready (headless=%t, viewport=%dx%d)",
		s.config.Headless, s.config.Viewport.Width, s.config.Viewport.Height)
	return nil
}

// Close releases everything Open acquired, in reverse order. It is safe to
// call more than once and on a partially opened session.
func (s *Session) Close() error {
	var errs []error

	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		s.Page = nil
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		s.Context = nil
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.Browser = nil
	}
	if s.Playwright != nil {
		if err := s.Playwright.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		s.Playwright = nil
	}

	return errors.Join(errs...)
}

// Adapter returns the session's page wrapped for the scenario runner.
func (s *Session) Adapter() *Page {
	return NewPage(s.Page)
}
