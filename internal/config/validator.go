package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator collects configuration problems so they can be reported together.
type Validator struct {
	config   *Config
	errors   []string
	warnings []string
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{
		config:   cfg,
		errors:   []string{},
		warnings: []string{},
	}
}

// Validate returns an error listing every invalid setting.
func (v *Validator) Validate() error {
	v.validateTarget()
	v.validateBrowser()
	v.validateRun()
	v.validateSchedule()

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// Warnings returns non-fatal findings from the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) validateTarget() {
	raw := v.config.Target.BaseURL
	if raw == "" {
		v.addError("target.base_url is not set")
		return
	}
	u, err := url.Parse(raw)
	if err != nil {
		v.addError(fmt.Sprintf("target.base_url is invalid: %v", err))
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		v.addError(fmt.Sprintf("target.base_url must be http or https, got %q", raw))
		return
	}
	if u.Host == "" {
		v.addError(fmt.Sprintf("target.base_url has no host: %q", raw))
	}
}

func (v *Validator) validateBrowser() {
	b := v.config.Browser
	if b.NavigationTimeout <= 0 {
		v.addError("browser.navigation_timeout must be positive")
	}
	if b.SlowMo < 0 {
		v.addError("browser.slow_mo cannot be negative")
	}
	if b.Viewport.Width <= 0 || b.Viewport.Height <= 0 {
		v.addError(fmt.Sprintf("browser.viewport must be positive, got %dx%d", b.Viewport.Width, b.Viewport.Height))
	}
	if !b.Headless {
		v.addWarning("browser.headless is false; a display is required")
	}
}

func (v *Validator) validateRun() {
	r := v.config.Run
	if r.OutputDir == "" {
		v.addError("run.output_dir is not set")
	}
	if r.WaitTimeout <= 0 {
		v.addError("run.wait_timeout must be positive")
	}
	if r.LocatorTimeout <= 0 {
		v.addError("run.locator_timeout must be positive")
	}
}

func (v *Validator) validateSchedule() {
	s := v.config.Schedule
	if s.Timeout <= 0 {
		v.addError("schedule.timeout must be positive")
	}
	if _, err := cron.ParseStandard(s.Cron); err != nil {
		v.addError(fmt.Sprintf("schedule.cron is invalid: %v", err))
	}
}

func (v *Validator) addError(message string) {
	v.errors = append(v.errors, "   - "+message)
}

func (v *Validator) addWarning(message string) {
	v.warnings = append(v.warnings, message)
}

// Validate checks cfg and returns an error listing every invalid setting.
func Validate(cfg *Config) error {
	return NewValidator(cfg).Validate()
}
