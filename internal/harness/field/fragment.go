// Package field locates form controls that carry no stable identifier by
// their proximity to a visible text fragment such as "kwota" or "tytu".
//
// Resolution runs a fixed chain of XPath strategies against the live page
// and keeps the first strategy that yields an element. When every strategy
// misses, a best-effort union locator is returned instead of an error so
// callers always have something to assert against.
package field

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyFragment is returned for a fragment that would match any text.
var ErrEmptyFragment = errors.New("field: empty search fragment")

// Fragment is a normalized, non-empty search key. Matching is by substring,
// so a partial word like "tytu" matches "Tytułem".
type Fragment struct {
	s string
}

// NewFragment folds raw with Fold and rejects the empty result.
func NewFragment(raw string) (Fragment, error) {
	s := Fold(raw)
	if s == "" {
		return Fragment{}, ErrEmptyFragment
	}
	return Fragment{s: s}, nil
}

func (f Fragment) String() string { return f.s }

func (f Fragment) IsZero() bool { return f.s == "" }

// Fold collapses whitespace runs (including non-breaking spaces) to a single
// space, trims, and lowercases with Polish casing rules. Diacritics are kept:
// "Ś" folds to "ś", never to "s".
func Fold(s string) string {
	// A Caser holds state and must not be shared between goroutines.
	return cases.Lower(language.Polish).String(strings.Join(strings.Fields(s), " "))
}

// Contains reports whether the rendered text contains f after folding.
func Contains(text string, f Fragment) bool {
	if f.IsZero() {
		return false
	}
	return strings.Contains(Fold(text), f.s)
}
