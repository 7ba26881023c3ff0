package field

import (
	"strings"
	"unicode"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
)

// lowerAlphabet lists the letters XPath folds. XPath 1.0 has no lower-case(),
// so folding is done with translate() over ASCII, Latin-1 and Polish letters.
// Fold handles every letter; the XPath twin folds only this set.
const lowerAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"àáâãäåæçèéêëìíîïðñòóôõöøùúûüýþ" +
	"ąćęłńśźż"

var upperAlphabet = strings.Map(unicode.ToUpper, lowerAlphabet)

// literal quotes s as an XPath string literal. XPath 1.0 has no escapes,
// so a value holding both quote kinds is assembled with concat().
func literal(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}

	parts := strings.Split(s, `"`)
	args := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			args = append(args, `'"'`)
		}
		if p != "" {
			args = append(args, `"`+p+`"`)
		}
	}
	return "concat(" + strings.Join(args, ", ") + ")"
}

// textPredicate is the XPath twin of Contains: non-breaking spaces become
// spaces, whitespace is collapsed, letters are folded.
func textPredicate(f Fragment) string {
	folded := "translate(normalize-space(translate(string(.), '\u00a0', ' ')), '" +
		upperAlphabet + "', '" + lowerAlphabet + "')"
	return "contains(" + folded + ", " + literal(f.String()) + ")"
}

// anchors selects the innermost rendered elements whose text contains f.
// Requiring that no child element also matches drops the ancestors (form,
// body, html) that contain the text only transitively; otherwise every
// input on the page would count as "inside" the anchor. Text that lives only
// in scripts, templates or hidden subtrees never produces an anchor.
func anchors(f Fragment) string {
	p := textPredicate(f)
	return "//body/descendant-or-self::*" + rendered +
		"[" + p + "][not(*" + rendered + "[" + p + "])]"
}

// rendered keeps elements outside non-rendered subtrees. It also filters the
// innermost test, so a hidden child repeating the text does not disqualify
// its visible parent.
const rendered = "[not(ancestor-or-self::*[self::script or self::style or self::template or self::noscript or @hidden or @aria-hidden='true'])]"

// AnchorLocator matches the first anchor element for f, the XPath
// counterpart of a get-by-text query.
func AnchorLocator(f Fragment) browser.Locator {
	return first(anchors(f))
}

// first wraps expr so it selects only its first node in document order.
func first(expr string) browser.Locator {
	return browser.XPath("(" + expr + ")[1]")
}
