package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Target.BaseURL)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, time.Duration(0), cfg.Browser.SlowMo)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 1280, cfg.Browser.Viewport.Width)
	assert.Equal(t, 720, cfg.Browser.Viewport.Height)
	assert.Empty(t, cfg.Run.Scenario)
	assert.Equal(t, "verification", cfg.Run.OutputDir)
	assert.Equal(t, 30*time.Second, cfg.Run.WaitTimeout)
	assert.Equal(t, 5*time.Second, cfg.Run.LocatorTimeout)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, "[UISMOKE] ", cfg.Logging.Prefix)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.Equal(t, "@every 15m", cfg.Schedule.Cron)
	assert.Equal(t, 5*time.Minute, cfg.Schedule.Timeout)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "uismoke.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
target:
  base_url: http://dashboard.internal:8080
browser:
  headless: false
  viewport:
    width: 1920
run:
  output_dir: /tmp/shots
  wait_timeout: 45s
metrics:
  textfile: /var/lib/node_exporter/uismoke.prom
`), 0o644))

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, "http://dashboard.internal:8080", cfg.Target.BaseURL)
		assert.False(t, cfg.Browser.Headless)
		assert.Equal(t, 1920, cfg.Browser.Viewport.Width)
		assert.Equal(t, 720, cfg.Browser.Viewport.Height)
		assert.Equal(t, "/tmp/shots", cfg.Run.OutputDir)
		assert.Equal(t, 45*time.Second, cfg.Run.WaitTimeout)
		assert.Equal(t, 5*time.Second, cfg.Run.LocatorTimeout)
		assert.Equal(t, "/var/lib/node_exporter/uismoke.prom", cfg.Metrics.Textfile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("UISMOKE_TARGET_BASE_URL", "https://staging.example.com")
	t.Setenv("UISMOKE_RUN_LOCATOR_TIMEOUT", "9s")
	t.Setenv("UISMOKE_BROWSER_HEADLESS", "false")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "https://staging.example.com", cfg.Target.BaseURL)
	assert.Equal(t, 9*time.Second, cfg.Run.LocatorTimeout)
	assert.False(t, cfg.Browser.Headless)
}

func TestExplicitSetWins(t *testing.T) {
	t.Setenv("UISMOKE_RUN_OUTPUT_DIR", "from-env")

	v := New()
	v.Set("run.output_dir", "from-flag")
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Run.OutputDir)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.Target.BaseURL = "" }, wantErr: "target.base_url is not set"},
		{name: "non-http base url", mutate: func(c *Config) { c.Target.BaseURL = "ftp://x" }, wantErr: "must be http or https"},
		{name: "base url without host", mutate: func(c *Config) { c.Target.BaseURL = "http://" }, wantErr: "has no host"},
		{name: "zero wait timeout", mutate: func(c *Config) { c.Run.WaitTimeout = 0 }, wantErr: "run.wait_timeout"},
		{name: "zero locator timeout", mutate: func(c *Config) { c.Run.LocatorTimeout = 0 }, wantErr: "run.locator_timeout"},
		{name: "empty output dir", mutate: func(c *Config) { c.Run.OutputDir = "" }, wantErr: "run.output_dir"},
		{name: "bad viewport", mutate: func(c *Config) { c.Browser.Viewport.Width = 0 }, wantErr: "browser.viewport"},
		{name: "negative slow mo", mutate: func(c *Config) { c.Browser.SlowMo = -time.Second }, wantErr: "browser.slow_mo"},
		{name: "bad cron", mutate: func(c *Config) { c.Schedule.Cron = "every now and then" }, wantErr: "schedule.cron"},
		{name: "zero schedule timeout", mutate: func(c *Config) { c.Schedule.Timeout = 0 }, wantErr: "schedule.timeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidatorWarnings(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	cfg.Browser.Headless = false

	v := NewValidator(cfg)
	require.NoError(t, v.Validate())
	assert.Len(t, v.Warnings(), 1)
}

func TestScreenshotDir(t *testing.T) {
	rc := RunConfig{OutputDir: "verification"}
	dir, err := rc.ScreenshotDir()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "verification", filepath.Base(dir))
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	fromFile, err := LoadFromFile(filepath.Join("..", "..", "examples", "uismoke.yaml"))
	require.NoError(t, err)

	defaults, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, defaults, fromFile)
}
