// Package demobank exposes the demo bank pages as independent accessors
// that share one Session: the page, the field resolver, the assertion
// policy and the settings.
package demobank

import (
	"context"
	"errors"
	"fmt"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/field"
	"github.com/grez-lucas/bank-uicheck/internal/harness/outcome"
	"github.com/sirupsen/logrus"
)

// Session is one logged-in (or not yet logged-in) browser tab. Resolver and
// Policy are stateless and may be shared between sessions.
type Session struct {
	Page     browser.Page
	Resolver *field.Resolver
	Policy   *outcome.Policy
	Config   config.Config
	Log      logrus.FieldLogger
}

func NewSession(page browser.Page, cfg config.Config, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		Page:     page,
		Resolver: field.NewResolver(log),
		Policy:   outcome.NewPolicy(log),
		Config:   cfg,
		Log:      log,
	}
}

func (s *Session) Open(ctx context.Context, path string) error {
	u := s.Config.URL(path)
	s.Log.WithField("url", u).Debug("Navigating")
	return s.Page.Navigate(ctx, u)
}

func (s *Session) waitVisible(ctx context.Context, loc browser.Locator) error {
	return browser.WaitVisible(ctx, s.Page, loc, s.Config.Timeout)
}

// click waits for loc to be visible and enabled before clicking. A control
// that never becomes enabled is reported as a timeout and never clicked.
func (s *Session) click(ctx context.Context, loc browser.Locator) error {
	if err := s.waitVisible(ctx, loc); err != nil {
		return err
	}
	if err := browser.WaitEnabled(ctx, s.Page, loc, s.Config.Timeout); err != nil {
		return err
	}
	return s.Page.Click(ctx, loc)
}

func (s *Session) fill(ctx context.Context, loc browser.Locator, value string) error {
	if err := s.waitVisible(ctx, loc); err != nil {
		return err
	}
	return s.Page.Fill(ctx, loc, value)
}

// visibleProbe observes loc becoming visible within the probe timeout.
func (s *Session) visibleProbe(name string, loc browser.Locator) outcome.Probe {
	return outcome.Probe{Name: name, Check: func(ctx context.Context) (bool, error) {
		return browser.IsVisibleWithin(ctx, s.Page, loc, s.Config.ProbeTimeout), ctx.Err()
	}}
}

// presentProbe observes at least one element matching loc, visible or not.
func (s *Session) presentProbe(name string, loc browser.Locator) outcome.Probe {
	return outcome.Probe{Name: name, Check: func(ctx context.Context) (bool, error) {
		err := browser.WaitAttached(ctx, s.Page, loc, s.Config.ProbeTimeout)
		if errors.Is(err, browser.ErrTimeout) {
			return false, nil
		}
		return err == nil, err
	}}
}

// fail wraps err as a StepError of the given page and operation.
func fail(page, operation string, err error, details string) error {
	if err == nil {
		return nil
	}
	return &StepError{Page: page, Operation: operation, Cause: err, Details: details}
}

// failField is fail for a heuristically resolved control.
func failField(page, operation string, res field.Result, err error) error {
	details := ""
	if res.Fallback {
		details = "no strategy matched, fallback locator used"
	}
	return &StepError{
		Page:      page,
		Operation: operation,
		Fragment:  res.Fragment.String(),
		Strategy:  res.Strategy,
		Rank:      res.Rank,
		Cause:     err,
		Details:   details,
	}
}

func mustAnchor(fragment string) browser.Locator {
	loc, err := field.Anchor(fragment)
	if err != nil {
		panic(fmt.Sprintf("demobank: anchor %q: %v", fragment, err))
	}
	return loc
}
