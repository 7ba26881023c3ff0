package snapshot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const redacted = "[REDACTED]"

// SensitivePatterns match attribute and field names whose values must not
// leave the machine.
var SensitivePatterns = []*regexp.Regexp{
	// Password fields
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)passwd`),
	regexp.MustCompile(`(?i)has(ł|l)o`),
	regexp.MustCompile(`(?i)secret`),

	// Identity
	regexp.MustCompile(`(?i)login`),
	regexp.MustCompile(`(?i)identyfikator`),

	// Tokens and sessions
	regexp.MustCompile(`(?i)token`),
	regexp.MustCompile(`(?i)session`),
	regexp.MustCompile(`(?i)csrf`),
	regexp.MustCompile(`(?i)auth`),
	regexp.MustCompile(`(?i)jwt`),
}

// TextPatterns are applied to the serialized document after the structural
// pass, catching values that live in scripts or plain text.
var TextPatterns = []struct {
	Pattern     *regexp.Regexp
	Replacement string
	Description string
}{
	{
		regexp.MustCompile(`\b\d{2}(?: ?\d{4}){6}\b`),
		"XX XXXX XXXX XXXX XXXX XXXX XXXX",
		"Account number (NRB format)",
	},
	{
		regexp.MustCompile(`(?i)(token|csrf|session)(["']?[\s:=]+)["']?[a-zA-Z0-9_-]{20,}["']?`),
		`$1$2"` + redacted + `"`,
		"Token",
	},
	{
		regexp.MustCompile(`(?i)document\.cookie\s*=\s*["'][^"']+["']`),
		`document.cookie="` + redacted + `"`,
		"Cookie",
	},
}

func isSensitiveKey(key string) bool {
	for _, re := range SensitivePatterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// fieldKeys are the attributes that name a form control.
var fieldKeys = []string{"name", "id", "data-testid", "autocomplete"}

func isSensitiveField(s *goquery.Selection) bool {
	if strings.EqualFold(s.AttrOr("type", ""), "password") {
		return true
	}
	for _, k := range fieldKeys {
		if v, ok := s.Attr(k); ok && isSensitiveKey(v) {
			return true
		}
	}
	return false
}

// SanitizeHTML redacts entered credentials, token-like attributes and
// account numbers from a page snapshot.
func SanitizeHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse snapshot: %w", err)
	}

	doc.Find("input, textarea").Each(func(_ int, s *goquery.Selection) {
		if !isSensitiveField(s) {
			return
		}
		if goquery.NodeName(s) == "textarea" {
			s.SetText(redacted)
			return
		}
		if _, ok := s.Attr("value"); ok {
			s.SetAttr("value", redacted)
		}
	})

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		if isSensitiveKey(s.AttrOr("name", "")) {
			s.SetAttr("content", redacted)
		}
	})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			for i, a := range n.Attr {
				if strings.HasPrefix(a.Key, "data-") && a.Key != "data-testid" && isSensitiveKey(a.Key) {
					n.Attr[i].Val = redacted
				}
			}
		}
	})

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render snapshot: %w", err)
	}
	return SanitizeText(out), nil
}

// RenderHTML parses and re-renders html without redacting anything, for
// comparing against SanitizeHTML output.
func RenderHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse snapshot: %w", err)
	}
	return doc.Html()
}

// SanitizeText applies TextPatterns to s.
func SanitizeText(s string) string {
	for _, p := range TextPatterns {
		s = p.Pattern.ReplaceAllString(s, p.Replacement)
	}
	return s
}
