package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gotrs-io/uismoke/internal/config"
	"github.com/gotrs-io/uismoke/internal/runner"
	"github.com/gotrs-io/uismoke/internal/runner/tasks"
	"github.com/gotrs-io/uismoke/internal/scenario"
	"github.com/gotrs-io/uismoke/internal/version"
)

var (
	configFileFlag string
	headedFlag     bool
	runNowFlag     bool
	v              = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "uismoke",
	Short: "Click through the developer dashboard and capture screenshots",
	Long: `uismoke drives a headless Chromium through the developer dashboard
(Dashboard, Subscriptions, Import Data, Admin), checks that each panel renders
its expected headings and text, and writes a screenshot per panel.

The run stops at the first failed check and exits non-zero.`,
	Version:       version.String(),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOnce,
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Print the step plan without launching a browser",
	Args:  cobra.NoArgs,
	RunE:  runSteps,
}

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Validate a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scenario on a cron schedule until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "uismoke %s\n", version.Full())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFileFlag, "config", "", "Path to a YAML config file")
	flags.String("base-url", "", "Base URL of the dashboard (default http://localhost:3000)")
	flags.String("output", "", "Screenshot directory (default verification)")
	flags.String("scenario", "", "YAML scenario file (default: built-in dashboard walk)")
	flags.BoolVar(&headedFlag, "headed", false, "Show the browser window")

	mustBind(v, "target.base_url", flags.Lookup("base-url"))
	mustBind(v, "run.output_dir", flags.Lookup("output"))
	mustBind(v, "run.scenario", flags.Lookup("scenario"))

	scheduleCmd.Flags().BoolVar(&runNowFlag, "now", false, "Run once immediately before waiting for the schedule")

	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(versionCmd)
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

// loadConfig resolves flags, environment and the optional config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("headed") {
		v.Set("browser.headless", !headedFlag)
	}
	return config.Load(v, configFileFlag)
}

// newLogger builds the progress logger from the logging config. The returned
// closer releases a log file if one was opened.
func newLogger(cfg *config.LoggingConfig, stdout, stderr io.Writer) (*log.Logger, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Output {
	case "", "stdout":
		return log.New(stdout, cfg.Prefix, log.LstdFlags), noop, nil
	case "stderr":
		return log.New(stderr, cfg.Prefix, log.LstdFlags), noop, nil
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return log.New(io.MultiWriter(stdout, f), cfg.Prefix, log.LstdFlags), f.Close, nil
	}
}

// loadSteps returns the configured scenario, or the built-in dashboard walk.
func loadSteps(cfg *config.Config) (string, []scenario.Step, error) {
	if cfg.Run.Scenario == "" {
		return "dashboard", scenario.Dashboard(), nil
	}
	name, steps, err := scenario.LoadFile(cfg.Run.Scenario)
	if err != nil {
		return "", nil, err
	}
	if name == "" {
		name = "scenario"
	}
	return name, steps, nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, steps, err := loadSteps(cfg)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(&cfg.Logging, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	task := tasks.NewSmokeTask(name, steps, cfg, logger)
	result, err := task.Execute(cmd.Context())
	if err != nil {
		return err
	}

	for _, path := range result.Screenshots {
		logger.Printf("Screenshot: %s", path)
	}
	return nil
}

func runSteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, steps, err := loadSteps(cfg)
	if err != nil {
		return err
	}
	dir, err := cfg.Run.ScreenshotDir()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario %s against %s (%d steps)\n", name, cfg.Target.BaseURL, len(steps))
	for i, step := range steps {
		wait := step.Wait
		if wait == "" {
			wait = scenario.WaitNetworkIdle
		}
		fmt.Fprintf(out, "%2d. %s: %s, wait %s\n", i+1, step.Description(), step.Action, wait)
		for _, a := range step.Assertions {
			fmt.Fprintf(out, "      expect %s %s\n", a.Locator, a.Expected)
		}
		if step.Screenshot != "" {
			fmt.Fprintf(out, "      screenshot %s\n", screenshotPath(dir, step.Screenshot))
		}
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	name, steps, err := scenario.LoadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: scenario %q is valid (%d steps)\n", args[0], name, len(steps))
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, steps, err := loadSteps(cfg)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(&cfg.Logging, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	registry := runner.NewTaskRegistry()
	if err := registry.Register(tasks.NewSmokeTask(name, steps, cfg, logger)); err != nil {
		return err
	}
	r := runner.NewRunner(registry, log.New(logger.Writer(), "[RUNNER] ", log.LstdFlags))

	if runNowFlag {
		// a failed first run is logged; the schedule still starts
		_ = r.RunNow(cmd.Context(), name)
	}

	err = r.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func screenshotPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
