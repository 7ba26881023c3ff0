package browser

import (
	"os"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPage connects to a local Chromium and opens a blank page. Browser
// tests run only with UICHECK_TEST_MODE=live.
func setupPage(t *testing.T) *rod.Page {
	t.Helper()

	if os.Getenv("UICHECK_TEST_MODE") != "live" {
		t.Skip("Skipping: requires UICHECK_TEST_MODE=live")
	}

	browser := rod.New().MustConnect()
	t.Cleanup(func() { browser.MustClose() })

	page := browser.MustPage()
	t.Cleanup(func() { page.MustClose() })

	page.MustNavigate("about:blank").MustWaitLoad()
	return page
}

func TestFlattenShadowDOM_NoShadow(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		document.body.innerHTML = '<form id="plain"><label>Kwota</label><input></form>';
	}`)

	html, shadowCount, iframeCount, err := FlattenShadowDOM(page)

	require.NoError(t, err)
	assert.Equal(t, 0, shadowCount)
	assert.Equal(t, 0, iframeCount)
	assert.Contains(t, html, "Kwota")
	assert.Contains(t, html, `id="plain"`)
}

func TestFlattenShadowDOM_NestedShadow(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		document.body.innerHTML = '<bank-form></bank-form>';
		const outer = document.querySelector('bank-form');
		outer.attachShadow({mode: 'open'}).innerHTML = '<amount-field></amount-field>';
		const inner = outer.shadowRoot.querySelector('amount-field');
		inner.attachShadow({mode: 'open'}).innerHTML = '<label>kwota</label><input id="amount">';
	}`)

	html, shadowCount, _, err := FlattenShadowDOM(page)

	require.NoError(t, err)
	assert.Equal(t, 2, shadowCount)
	assert.Contains(t, html, `data-shadow-host="bank-form"`)
	assert.Contains(t, html, `data-shadow-host="amount-field"`)
	assert.Contains(t, html, `id="amount"`)
}

func TestFlattenShadowDOM_LightDOMChildren(t *testing.T) {
	// A slotted light-DOM child that is itself a shadow host must be
	// flattened too.
	page := setupPage(t)
	page.MustEval(`() => {
		document.body.innerHTML = '<outer-host><inner-host>Light text</inner-host></outer-host>';
		document.querySelector('outer-host').attachShadow({mode: 'open'}).innerHTML =
			'<div class="layout"><slot></slot></div>';
		document.querySelector('inner-host').attachShadow({mode: 'open'}).innerHTML =
			'<table id="operations"><tr><td>Przelew</td></tr></table>';
	}`)

	html, shadowCount, _, err := FlattenShadowDOM(page)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, shadowCount, 2)
	assert.Contains(t, html, `data-shadow-host="inner-host"`)
	assert.Contains(t, html, `id="operations"`)
	assert.Contains(t, html, "Przelew")
}

func TestFlattenShadowDOM_ShadowStyles(t *testing.T) {
	page := setupPage(t)
	page.MustEval(`() => {
		document.body.innerHTML = '<styled-el></styled-el>';
		document.querySelector('styled-el').attachShadow({mode: 'open'}).innerHTML =
			'<style>.inner { color: red; }</style><div class="inner">Styled</div>';
	}`)

	html, shadowCount, _, err := FlattenShadowDOM(page)

	require.NoError(t, err)
	assert.Equal(t, 1, shadowCount)
	assert.Contains(t, html, "color: red")
	assert.Contains(t, html, "Styled")
}
