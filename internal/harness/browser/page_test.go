package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocator_Constructors(t *testing.T) {
	assert.Equal(t, Locator{Kind: KindCSS, Expr: "#money_value"}, CSS("#money_value"))
	assert.Equal(t, Locator{Kind: KindXPath, Expr: "//input"}, XPath("//input"))
	assert.Equal(t, `css=[data-testid="login-input"]`, TestID("login-input").String())
}

func TestRole(t *testing.T) {
	link := Role("link", "szybki przelew")
	assert.Equal(t, roleSelectors["link"], link.Expr)
	assert.True(t, link.MatchesText("Szybki Przelew"))
	assert.False(t, link.MatchesText("Wyloguj"))

	anyText := Role("combobox", "")
	assert.Nil(t, anyText.Text)
	assert.True(t, anyText.MatchesText("whatever"))

	custom := Role("tabpanel", "")
	assert.Equal(t, `[role="tabpanel"]`, custom.Expr)
}

func TestLocator_WithTextCopies(t *testing.T) {
	base := CSS("h1")
	filtered := base.WithText("pulpit")

	assert.Nil(t, base.Text)
	assert.Equal(t, "css=h1 >> text=/(?i)pulpit/", filtered.String())
	assert.Equal(t, "xpath=//a", XPath("//a").String())
}
