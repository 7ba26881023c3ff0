package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/demobank"
	"github.com/grez-lucas/bank-uicheck/internal/harness/outcome"
	"github.com/grez-lucas/bank-uicheck/internal/harness/snapshot"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// snapshotTimeout bounds a failure capture, which runs after the scenario
// context may already have expired. No capture is taken once the run itself
// was cancelled.
const snapshotTimeout = 10 * time.Second

// Runner executes scenarios, each in its own page from Engine, with at most
// Config.Parallel running at once.
type Runner struct {
	Engine browser.Engine
	Config config.Config
	Log    logrus.FieldLogger
	// Snapshots, when set, captures the page of every failed scenario.
	Snapshots *snapshot.Writer
}

// Run executes scenarios and returns their report in input order. A failing
// scenario never stops the others; only cancellation of ctx aborts the run.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	report := &Report{
		Engine:  r.Config.Engine,
		BaseURL: r.Config.BaseURL,
		Started: time.Now(),
		Results: make([]Result, len(scenarios)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Parallel)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Results[i] = Result{Name: sc.Name, Status: StatusFail, Error: err.Error()}
				return err
			}
			report.Results[i] = r.runOne(gctx, sc, log.WithField("scenario", sc.Name))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, sc Scenario, log logrus.FieldLogger) Result {
	start := time.Now()
	res := Result{Name: sc.Name}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, r.Config.ScenarioTimeout)
	defer cancel()
	rec := &outcome.Recorder{}
	ctx = outcome.WithRecorder(ctx, rec)

	log.Info("Starting scenario")
	page, err := r.Engine.NewPage(ctx)
	if err != nil {
		res.Status, res.Error = StatusFail, err.Error()
		res.Seconds = time.Since(start).Seconds()
		log.WithError(err).Error("Could not open page")
		return res
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.WithError(err).Warn("Closing page failed")
		}
	}()

	runErr := sc.Run(ctx, demobank.NewSession(page, r.Config, log))
	res.Seconds = time.Since(start).Seconds()
	for _, v := range rec.Verdicts() {
		res.Outcomes = append(res.Outcomes, v.Check+"="+v.Outcome.String())
	}

	switch {
	case runErr != nil:
		res.Status, res.Error = StatusFail, runErr.Error()
		log.WithError(runErr).Error("Scenario failed")
		if errors.Is(parent.Err(), context.Canceled) {
			log.Info("Skipping failure snapshot, run was cancelled")
			break
		}
		res.Snapshot = r.capture(sc.Name, page, log)
	case len(rec.Alternates()) > 0:
		res.Status = StatusPassAlternate
		log.WithField("outcomes", res.Outcomes).Warn("Scenario passed through an alternate outcome")
	default:
		res.Status = StatusPass
		log.Info("Scenario passed")
	}
	return res
}

func (r *Runner) capture(name string, page browser.Page, log logrus.FieldLogger) string {
	if r.Snapshots == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	path, err := r.Snapshots.Capture(ctx, name, page)
	if err != nil {
		log.WithError(err).Warn("Could not save failure snapshot")
		return ""
	}
	return path
}
