package demobank

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	testLogin    = "tester01"
	testPassword = "s3cret!"
)

func testConfig(t *testing.T, site *testutil.Site) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BaseURL = site.Base
	cfg.AuthFile = filepath.Join(t.TempDir(), "auth.json")
	cfg.Login = testLogin
	cfg.Password = testPassword
	cfg.Timeout = 300 * time.Millisecond
	cfg.ProbeTimeout = 150 * time.Millisecond
	return cfg
}

// newSession opens a fixture page on site.
func newSession(t *testing.T, site *testutil.Site) (*Session, *testutil.Page, *test.Hook) {
	t.Helper()

	page, err := testutil.NewEngine(site).NewPage(context.Background())
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewSession(page, testConfig(t, site), logger), page.(*testutil.Page), hook
}

// rejectBadPassword routes a bad password to target, or keeps the form
// action for the right one.
func rejectBadPassword(target string) testutil.SubmitFunc {
	return func(action string, values url.Values) string {
		if values.Get("login") != "" && values.Get("password") == testPassword {
			return action
		}
		return target
	}
}

func loggedIn(t *testing.T, site *testutil.Site) (*Session, *testutil.Page, *test.Hook) {
	t.Helper()
	s, page, hook := newSession(t, site)
	require.NoError(t, NewLoginPage(s).Login(context.Background()))
	return s, page, hook
}
