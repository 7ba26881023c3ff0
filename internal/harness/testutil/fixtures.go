// Package testutil provides a browser-free Engine over static HTML fixtures
// and helpers to load them.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fixturesDir resolves testdata/fixtures next to this file, so every
// package's tests share the same fixtures regardless of working directory.
func fixturesDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "testdata", "fixtures")
}

// LoadFixture reads testdata/fixtures/<name>.html.
func LoadFixture(t *testing.T, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(fixturesDir(), name+".html"))
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return string(data)
}

// DemoBankSite returns a site serving the demo bank fixtures at the paths the
// real application uses.
func DemoBankSite(t *testing.T) *Site {
	t.Helper()

	return NewSite("http://demobank.test", map[string]string{
		"/":                   LoadFixture(t, "login"),
		"/index.html":         LoadFixture(t, "login"),
		"/pulpit.html":        LoadFixture(t, "pulpit"),
		"/quick_payment.html": LoadFixture(t, "quick_payment"),
	})
}
