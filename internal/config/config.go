package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// UISMOKE_TARGET_BASE_URL overrides target.base_url.
const EnvPrefix = "UISMOKE"

// Config represents the runner configuration
type Config struct {
	Target   TargetConfig   `mapstructure:"target"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Run      RunConfig      `mapstructure:"run"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
}

type TargetConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"`
	SlowMo            time.Duration `mapstructure:"slow_mo"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	InstallDriver     bool          `mapstructure:"install_driver"`
	Viewport          struct {
		Width  int `mapstructure:"width"`
		Height int `mapstructure:"height"`
	} `mapstructure:"viewport"`
}

type RunConfig struct {
	// Scenario is an optional YAML scenario file; empty runs the built-in
	// dashboard walk.
	Scenario       string        `mapstructure:"scenario"`
	OutputDir      string        `mapstructure:"output_dir"`
	WaitTimeout    time.Duration `mapstructure:"wait_timeout"`
	LocatorTimeout time.Duration `mapstructure:"locator_timeout"`
}

type LoggingConfig struct {
	// Output is "stdout", "stderr" or a file path.
	Output string `mapstructure:"output"`
	Prefix string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the run's metrics in Prometheus text format.
	Textfile string `mapstructure:"textfile"`
}

type ScheduleConfig struct {
	Cron    string        `mapstructure:"cron"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target.base_url", "http://localhost:3000")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", time.Duration(0))
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.install_driver", false)
	v.SetDefault("browser.viewport.width", 1280)
	v.SetDefault("browser.viewport.height", 720)

	v.SetDefault("run.scenario", "")
	v.SetDefault("run.output_dir", "verification")
	v.SetDefault("run.wait_timeout", 30*time.Second)
	v.SetDefault("run.locator_timeout", 5*time.Second)

	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.prefix", "[UISMOKE] ")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("schedule.cron", "@every 15m")
	v.SetDefault("schedule.timeout", 5*time.Minute)
}

// New returns a viper instance with defaults and environment overrides
// applied. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and unmarshals the result.
// Precedence is flags, environment, file, defaults.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if filepath.Ext(configFile) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file (useful for testing)
func LoadFromFile(configFile string) (*Config, error) {
	return Load(New(), configFile)
}

// ScreenshotDir returns the absolute output directory.
func (c *RunConfig) ScreenshotDir() (string, error) {
	return filepath.Abs(c.OutputDir)
}
