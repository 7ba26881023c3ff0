package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHTML_FormValues(t *testing.T) {
	page := testutil.MustPage(testutil.LoadFixture(t, "login"))
	ctx := context.Background()
	require.NoError(t, page.Fill(ctx, browser.TestID("login-input"), "tester01"))
	require.NoError(t, page.Fill(ctx, browser.TestID("password-input"), "hunter2"))
	html, err := page.HTML(ctx)
	require.NoError(t, err)
	require.Contains(t, html, "hunter2")

	got, err := SanitizeHTML(html)

	require.NoError(t, err)
	assert.NotContains(t, got, "hunter2")
	assert.NotContains(t, got, "tester01")
	assert.Contains(t, got, redacted)
	assert.Contains(t, got, "zaloguj się", "visible text is kept")
}

func TestSanitizeHTML_KeepsOrdinaryFields(t *testing.T) {
	html := `<html><body><input id="transfer_amount" value="1.00"><textarea name="opis">czynsz</textarea></body></html>`

	got, err := SanitizeHTML(html)

	require.NoError(t, err)
	assert.Contains(t, got, `value="1.00"`)
	assert.Contains(t, got, "czynsz")
}

func TestSanitizeHTML_TokensAndAccounts(t *testing.T) {
	html := `<html><head><meta name="csrf-token" content="abc123"></head><body>
		<div data-session-id="s-42">konto 12 3456 7890 1234 5678 9012 3456</div>
		<script>document.cookie = "sid=deadbeef"; var token = "aaaaaaaaaaaaaaaaaaaaaaaaaa";</script>
	</body></html>`

	got, err := SanitizeHTML(html)

	require.NoError(t, err)
	for _, secret := range []string{"abc123", "s-42", "7890 1234", "deadbeef", "aaaaaaaaaaaaaaaaaaaaaaaaaa"} {
		assert.NotContains(t, got, secret)
	}
}

func TestRenderHTML_MatchesCleanSanitize(t *testing.T) {
	html := testutil.LoadFixture(t, "pulpit")

	rendered, err := RenderHTML(html)
	require.NoError(t, err)
	sanitized, err := SanitizeHTML(html)
	require.NoError(t, err)

	assert.Equal(t, rendered, sanitized, "committed fixtures carry nothing to redact")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "login_wrong-password.html", FileName("login/wrong-password"))
	assert.Equal(t, "a_b-c.html", FileName("a/b c"))
}

type flatPage struct {
	*testutil.Page
	flat string
	err  error
}

func (p flatPage) FlattenedHTML(context.Context) (string, error) { return p.flat, p.err }

func TestWriter_Capture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	w := NewWriter(dir, nil)
	page := testutil.MustPage(`<html><head><title>x</title></head><body><p>plain</p></body></html>`)

	path, err := w.Capture(context.Background(), "dashboard/logout", page)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dashboard_logout.html"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plain")
}

func TestWriter_Capture_PrefersFlattened(t *testing.T) {
	w := NewWriter(t.TempDir(), nil)
	base := testutil.MustPage(`<html><body><p>plain</p></body></html>`)

	path, err := w.Capture(context.Background(), "flat", flatPage{Page: base, flat: "<html><body><p>flattened</p></body></html>"})
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "flattened")

	path, err = w.Capture(context.Background(), "fallback", flatPage{Page: base, err: errors.New("no devtools")})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plain")
}

func TestWriter_Capture_ClosedPage(t *testing.T) {
	page := testutil.MustPage(`<html><body></body></html>`)
	require.NoError(t, page.Close())

	_, err := NewWriter(t.TempDir(), nil).Capture(context.Background(), "closed", page)

	assert.ErrorIs(t, err, testutil.ErrClosed)
}
