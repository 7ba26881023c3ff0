package field

import (
	"context"
)

// Inspect reports the kind of the element res points at. Any failure, such
// as a detached element or a navigation mid-check, yields KindUnknown.
func Inspect(ctx context.Context, q Querier, res Result) Kind {
	tag, err := q.Tag(ctx, res.Locator)
	if err != nil {
		return KindUnknown
	}
	return KindFromTag(tag)
}

// Reconcile corrects the one known misfire: res points at a select while the
// caller wants free text. Only the following-input strategy is rerun, and
// its candidate replaces res when it exists. Every other case, including an
// unknown inspected kind, returns res unchanged. Reconcile is idempotent.
func (r *Resolver) Reconcile(ctx context.Context, q Querier, res Result, expected Kind) Result {
	if expected != KindInput && expected != KindTextarea {
		return res
	}
	if res.Fragment.IsZero() {
		return res
	}

	actual := Inspect(ctx, q, res)
	if actual != KindSelect {
		return res
	}

	log := r.log.WithField("fragment", res.Fragment.String())
	cand, ok, err := FollowingInput.Lookup(ctx, q, res.Fragment)
	if err != nil || !ok {
		log.WithField("expected", expected).Warn("Resolved a select but no following input exists, keeping it")
		return res
	}

	log.WithField("from", res.Strategy).WithField("to", cand.Strategy).Info("Replaced select with following input")
	return Result{Candidate: cand, Fragment: res.Fragment, Corrected: true}
}
