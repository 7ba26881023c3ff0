// Package browser provides the driver abstraction used by the harness and
// its Rod and Playwright implementations.
package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNoElement = errors.New("no element matches locator")
	ErrTimeout   = errors.New("interaction timed out")
)

// SelectorKind tells the engine how to evaluate Locator.Expr.
type SelectorKind int

const (
	KindCSS SelectorKind = iota
	KindXPath
)

// Locator describes elements lazily. It is re-evaluated on every call so a
// navigation never leaves a stale handle behind.
type Locator struct {
	Kind SelectorKind
	Expr string
	// Text, when set, keeps only elements whose text content matches.
	Text *regexp.Regexp
}

func CSS(selector string) Locator {
	return Locator{Kind: KindCSS, Expr: selector}
}

func XPath(expr string) Locator {
	return Locator{Kind: KindXPath, Expr: expr}
}

// TestID matches the data-testid attribute used by the demo application.
func TestID(id string) Locator {
	return CSS(fmt.Sprintf(`[data-testid=%q]`, id))
}

// roleSelectors maps an ARIA role to the elements that carry it implicitly.
var roleSelectors = map[string]string{
	"alert":    `[role="alert"]`,
	"button":   `button, input[type="submit"], input[type="button"], [role="button"]`,
	"combobox": `select, [role="combobox"]`,
	"heading":  `h1, h2, h3, h4, h5, h6, [role="heading"]`,
	"link":     `a[href], [role="link"]`,
	"table":    `table, [role="table"]`,
	"textbox":  `input:not([type]), input[type="text"], textarea, [role="textbox"]`,
}

// Role approximates an accessible-role query. name is a case-insensitive
// pattern applied to the element text; an empty name matches any text.
func Role(role, name string) Locator {
	sel, ok := roleSelectors[role]
	if !ok {
		sel = fmt.Sprintf(`[role=%q]`, role)
	}
	loc := CSS(sel)
	if name != "" {
		loc = loc.WithText(name)
	}
	return loc
}

// WithText returns a copy of l filtered by a case-insensitive pattern.
func (l Locator) WithText(pattern string) Locator {
	l.Text = regexp.MustCompile("(?i)" + pattern)
	return l
}

// MatchesText reports whether text passes the locator's text filter.
func (l Locator) MatchesText(text string) bool {
	return l.Text == nil || l.Text.MatchString(text)
}

func (l Locator) String() string {
	kind := "css"
	if l.Kind == KindXPath {
		kind = "xpath"
	}
	if l.Text != nil {
		return fmt.Sprintf("%s=%s >> text=/%s/", kind, l.Expr, l.Text)
	}
	return kind + "=" + l.Expr
}

// Page is a single isolated browser tab. All element operations act on the
// first element matched by the locator in document order.
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	Count(ctx context.Context, loc Locator) (int, error)
	// Tag returns the lowercase tag name of the first match.
	Tag(ctx context.Context, loc Locator) (string, error)
	// Visible reports false, without error, when nothing matches.
	Visible(ctx context.Context, loc Locator) (bool, error)
	Enabled(ctx context.Context, loc Locator) (bool, error)

	Fill(ctx context.Context, loc Locator, value string) error
	Click(ctx context.Context, loc Locator) error
	SelectIndex(ctx context.Context, loc Locator, index int) error

	// HTML returns a serialized snapshot of the current document.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Engine hands out isolated pages. It is safe for concurrent use.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}
