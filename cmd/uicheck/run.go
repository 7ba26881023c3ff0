package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/scenario"
	"github.com/grez-lucas/bank-uicheck/internal/harness/snapshot"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type runFlags struct {
	only     []string
	engine   string
	baseURL  string
	parallel int
	headful  bool
	install  bool
	timeout  time.Duration
	format   string
	output   string
}

func newRunCommand(root *rootCommand) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scenarios",
		Example: `  uicheck run
  uicheck run --only 'login/*' --engine playwright
  uicheck run --format json --output report.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&f.only, "only", nil, "run only scenarios matching this glob, may be repeated")
	flags.StringVar(&f.engine, "engine", "", "browser engine (rod or playwright), overrides UICHECK_ENGINE")
	flags.StringVar(&f.baseURL, "base-url", "", "application URL, overrides UICHECK_BASE_URL")
	flags.IntVar(&f.parallel, "parallel", 0, "scenarios run at once, overrides UICHECK_PARALLEL")
	flags.BoolVar(&f.headful, "headful", false, "show the browser window")
	flags.BoolVar(&f.install, "install", false, "download the Playwright driver and browser first")
	flags.DurationVar(&f.timeout, "timeout", 0, "per-wait timeout, overrides UICHECK_TIMEOUT")
	flags.StringVar(&f.format, "format", "", "also write the report as json or yaml")
	flags.StringVarP(&f.output, "output", "o", "", "report file (default stdout)")
	return cmd
}

func (f runFlags) apply(cfg *config.Config) {
	if f.engine != "" {
		cfg.Engine = f.engine
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.parallel > 0 {
		cfg.Parallel = f.parallel
	}
	if f.headful {
		cfg.Headless = false
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
}

func (c *rootCommand) run(cmd *cobra.Command, f runFlags) (err error) {
	switch f.format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("unknown report format %q", f.format)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	scenarios, err := scenario.Select(scenario.Catalogue(), f.only)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, f.install)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, engine.Close())
	}()

	log := c.logger.WithField("engine", cfg.Engine)
	log.WithField("scenarios", len(scenarios)).WithField("base_url", cfg.BaseURL).Info("Starting run")

	runner := &scenario.Runner{
		Engine:    engine,
		Config:    cfg,
		Log:       log,
		Snapshots: snapshot.NewWriter(cfg.ArtifactsDir, log),
	}
	report, err := runner.Run(cmd.Context(), scenarios)
	if report != nil {
		// Keep stdout parseable when the report itself goes there.
		summary := c.stdout
		if f.format != "" && f.output == "" {
			summary = c.stderr
		}
		report.WriteSummary(summary, c.flags.noColor)
		if werr := writeReport(report, f.format, f.output, c.stdout); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	if err != nil {
		return err
	}
	if !report.OK() {
		return failedChecksError{failed: report.Failed()}
	}
	return nil
}

func newEngine(cfg config.Config, install bool) (browser.Engine, error) {
	switch cfg.Engine {
	case config.EnginePlaywright:
		return browser.NewPlaywrightEngine(browser.PlaywrightOptions{
			Headless: cfg.Headless,
			Install:  install,
		})
	default:
		return browser.NewRodEngine(browser.RodOptions{
			Bin:         cfg.BrowserBin,
			Headless:    cfg.Headless,
			Stealth:     cfg.Stealth,
			HumanTyping: cfg.HumanTyping,
		})
	}
}

func writeReport(r *scenario.Report, format, output string, stdout io.Writer) (err error) {
	if format == "" {
		return nil
	}

	w := stdout
	if output != "" {
		file, cerr := os.Create(output)
		if cerr != nil {
			return fmt.Errorf("create report: %w", cerr)
		}
		defer func() {
			err = multierr.Append(err, file.Close())
		}()
		w = file
	}

	if format == "yaml" {
		return r.WriteYAML(w)
	}
	return r.WriteJSON(w)
}
