// Package outcome decides pass or fail for checks whose target application
// legitimately ends up in one of several states.
package outcome

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrAmbiguous means none of the recognised outcomes of a check was observed.
var ErrAmbiguous = errors.New("no recognised outcome observed")

// AmbiguousError records which probes were tried for a failed check.
type AmbiguousError struct {
	Check string
	Tried []string
	// Cause is the last probe error, if any probe failed outright.
	Cause error
}

func (e *AmbiguousError) Error() string {
	msg := fmt.Sprintf("%s: %v (tried %s)", e.Check, ErrAmbiguous, strings.Join(e.Tried, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }

func (e *AmbiguousError) Unwrap() error { return e.Cause }

// Outcome is the recognised state a check settled on.
type Outcome int

const (
	None Outcome = iota
	Primary
	Secondary
	Alternate
)

func (o Outcome) String() string {
	switch o {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	case Alternate:
		return "alternate"
	default:
		return "none"
	}
}

// Probe observes one state. A nil Check means the state is not recognised
// for this check and is skipped.
type Probe struct {
	Name  string
	Check func(ctx context.Context) (bool, error)
}

// Expectation lists the accepted states of a check in priority order.
type Expectation struct {
	Check     string
	Primary   Probe
	Secondary Probe
	Alternate Probe
}

// Verdict is the accepted outcome of one check.
type Verdict struct {
	Check   string
	Outcome Outcome
	Probe   string
}

// Policy evaluates expectations. It keeps no state between calls.
type Policy struct {
	log logrus.FieldLogger
}

func NewPolicy(log logrus.FieldLogger) *Policy {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Policy{log: log}
}

// Evaluate runs the probes of e in order and accepts the first that observes
// its state. Probe errors count as "not observed"; a cancelled ctx aborts.
// An accepted alternate path is logged at Warn so it can be audited.
func (p *Policy) Evaluate(ctx context.Context, e Expectation) (Verdict, error) {
	log := p.log.WithField("check", e.Check)
	steps := []struct {
		outcome Outcome
		probe   Probe
	}{
		{Primary, e.Primary},
		{Secondary, e.Secondary},
		{Alternate, e.Alternate},
	}

	var (
		tried   []string
		lastErr error
	)
	for _, s := range steps {
		if s.probe.Check == nil {
			continue
		}
		tried = append(tried, s.probe.Name)

		ok, err := s.probe.Check(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Verdict{}, ctxErr
		}
		if err != nil {
			log.WithError(err).WithField("probe", s.probe.Name).Debug("Probe failed")
			lastErr = err
			continue
		}
		if !ok {
			continue
		}

		v := Verdict{Check: e.Check, Outcome: s.outcome, Probe: s.probe.Name}
		entry := log.WithFields(logrus.Fields{"outcome": s.outcome.String(), "probe": s.probe.Name})
		if s.outcome == Alternate {
			entry.Warn("Accepted alternate outcome")
		} else {
			entry.Debug("Accepted outcome")
		}
		recorderFrom(ctx).add(v)
		return v, nil
	}

	return Verdict{}, &AmbiguousError{Check: e.Check, Tried: tried, Cause: lastErr}
}
