package field

import (
	"context"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one resolution. A Fallback result wraps a valid
// locator that may match nothing: check presence before trusting it.
type Result struct {
	Candidate
	Fragment Fragment
	Fallback bool
	// Corrected is set when Reconcile replaced a select with an input.
	Corrected bool
}

// Found reports whether a strategy produced r. The zero Result is not found.
func (r Result) Found() bool { return !r.Fallback && !r.Fragment.IsZero() }

// Resolver runs the strategy chain. It holds no per-page state and is safe
// for concurrent use across independent pages.
type Resolver struct {
	log logrus.FieldLogger
}

func NewResolver(log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{log: log}
}

// Resolve tries each strategy in rank order and returns the first hit.
// A miss is not an error: the union locator comes back as a Fallback result.
// Errors are reserved for an empty fragment and for a cancelled ctx.
func (r *Resolver) Resolve(ctx context.Context, q Querier, raw string) (Result, error) {
	f, err := NewFragment(raw)
	if err != nil {
		return Result{}, err
	}
	log := r.log.WithField("fragment", f.String())

	for _, s := range chain {
		cand, ok, err := s.Lookup(ctx, q, f)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		if err != nil {
			log.WithError(err).WithField("strategy", s.Name).Debug("Strategy query failed, treating as no match")
			continue
		}
		if ok {
			log.WithFields(logrus.Fields{"strategy": s.Name, "rank": s.Rank}).Debug("Resolved field")
			return Result{Candidate: cand, Fragment: f}, nil
		}
	}

	log.WithField("strategy", Union.Name).Warn("No strategy matched, using fallback locator")
	return Result{
		Candidate: Candidate{Locator: Union.Locator(f), Kind: Union.Kind, Rank: Union.Rank, Strategy: Union.Name},
		Fragment:  f,
		Fallback:  true,
	}, nil
}

// Locate resolves raw and reconciles the result against expected.
func (r *Resolver) Locate(ctx context.Context, q Querier, raw string, expected Kind) (Result, error) {
	res, err := r.Resolve(ctx, q, raw)
	if err != nil {
		return Result{}, err
	}
	return r.Reconcile(ctx, q, res, expected), nil
}

// Anchor returns the locator of the first element whose text holds raw.
func Anchor(raw string) (browser.Locator, error) {
	f, err := NewFragment(raw)
	if err != nil {
		return browser.Locator{}, err
	}
	return AnchorLocator(f), nil
}
