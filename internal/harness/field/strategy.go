package field

import (
	"context"
	"strings"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
)

// Kind is the kind of form control a candidate was found as, or was
// inspected to be.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindTextarea
	KindSelect
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTextarea:
		return "textarea"
	case KindSelect:
		return "select"
	default:
		return "unknown"
	}
}

// KindFromTag maps a tag name to a Kind.
func KindFromTag(tag string) Kind {
	switch strings.ToLower(tag) {
	case "input":
		return KindInput
	case "textarea":
		return KindTextarea
	case "select":
		return KindSelect
	default:
		return KindUnknown
	}
}

// Querier is the part of a page the resolver needs: evaluate a locator
// without waiting, and report the tag of its first match.
type Querier interface {
	Count(ctx context.Context, loc browser.Locator) (int, error)
	Tag(ctx context.Context, loc browser.Locator) (string, error)
}

// Candidate is the first element one strategy matched for a fragment.
type Candidate struct {
	Locator  browser.Locator
	Kind     Kind
	Rank     int
	Strategy string
}

// Strategy is one fixed lookup relationship between an anchor and a control.
type Strategy struct {
	Rank int
	Name string
	Kind Kind
	path func(anchors string) string
}

// Locator returns the first-match locator of s for f.
func (s Strategy) Locator(f Fragment) browser.Locator {
	return first(s.path(anchors(f)))
}

// Lookup evaluates s once. Only the first match in document order is kept.
func (s Strategy) Lookup(ctx context.Context, q Querier, f Fragment) (Candidate, bool, error) {
	loc := s.Locator(f)
	n, err := q.Count(ctx, loc)
	if err != nil || n == 0 {
		return Candidate{}, false, err
	}
	return Candidate{Locator: loc, Kind: s.Kind, Rank: s.Rank, Strategy: s.Name}, true, nil
}

// Hidden inputs never hold user-entered values, so no strategy returns one.
const visibleInput = "input[not(@type='hidden')]"

var (
	NestedInput = Strategy{Rank: 1, Name: "nested-input", Kind: KindInput,
		path: func(a string) string { return a + "/descendant-or-self::" + visibleInput }}

	NestedTextarea = Strategy{Rank: 2, Name: "nested-textarea", Kind: KindTextarea,
		path: func(a string) string { return a + "/descendant-or-self::textarea" }}

	FollowingInput = Strategy{Rank: 3, Name: "following-input", Kind: KindInput,
		path: func(a string) string { return a + "/following::" + visibleInput }}

	// NestedSelect comes last: a dropdown sharing the label's container is
	// usually a different field, such as the recipient list.
	NestedSelect = Strategy{Rank: 4, Name: "nested-select", Kind: KindSelect,
		path: func(a string) string { return a + "/descendant-or-self::select" }}

	// Union is the fallback: every relationship above in one query.
	Union = Strategy{Rank: 5, Name: "union", Kind: KindUnknown,
		path: func(a string) string {
			return a + "/descendant-or-self::" + visibleInput +
				" | " + a + "/descendant-or-self::textarea" +
				" | " + a + "/descendant-or-self::select" +
				" | " + a + "/following::" + visibleInput
		}}
)

// chain is the fixed resolution order. Inside relationships outrank
// following ones; select is tried last.
var chain = [...]Strategy{NestedInput, NestedTextarea, FollowingInput, NestedSelect}

// Chain returns a copy of the resolution order.
func Chain() []Strategy {
	out := chain
	return out[:]
}
