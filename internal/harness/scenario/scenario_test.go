package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/demobank"
	"github.com/grez-lucas/bank-uicheck/internal/harness/snapshot"
	"github.com/grez-lucas/bank-uicheck/internal/harness/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPassword = "s3cret!"

func testConfig(t *testing.T, site *testutil.Site) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BaseURL = site.Base
	cfg.AuthFile = filepath.Join(t.TempDir(), "auth.json")
	cfg.Login = "tester01"
	cfg.Password = testPassword
	cfg.Timeout = 300 * time.Millisecond
	cfg.ProbeTimeout = 150 * time.Millisecond
	cfg.ScenarioTimeout = 5 * time.Second
	cfg.Parallel = 3
	cfg.ArtifactsDir = filepath.Join(t.TempDir(), "artifacts")
	return cfg
}

// demoSite sends a wrong password to badTarget ("" keeps the login page).
func demoSite(t *testing.T, badTarget string) *testutil.Site {
	t.Helper()
	site := testutil.DemoBankSite(t)
	site.Submit = func(action string, values url.Values) string {
		if values.Get("password") == testPassword {
			return action
		}
		return badTarget
	}
	return site
}

func newRunner(t *testing.T, site *testutil.Site) (*Runner, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	cfg := testConfig(t, site)
	return &Runner{
		Engine:    testutil.NewEngine(site),
		Config:    cfg,
		Log:       logger,
		Snapshots: snapshot.NewWriter(cfg.ArtifactsDir, logger),
	}, hook
}

func TestCatalogue(t *testing.T) {
	names := map[string]bool{}
	for _, sc := range Catalogue() {
		assert.NotEmpty(t, sc.Description, sc.Name)
		assert.NotNil(t, sc.Run, sc.Name)
		assert.False(t, names[sc.Name], "duplicate %s", sc.Name)
		names[sc.Name] = true
	}
	assert.Len(t, names, 7)
}

func TestSelect(t *testing.T) {
	all := Catalogue()

	got, err := Select(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, len(all))

	got, err = Select(all, []string{"login/*", "login/happy-path"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "login/happy-path", got[0].Name)

	got, err = Select(all, []string{"transfer/read-only"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = Select(all, []string{"payments/*"})
	assert.ErrorContains(t, err, "matches no scenario")

	_, err = Select(all, []string{"[login"})
	assert.ErrorContains(t, err, "bad pattern")
}

func TestRunner_AllPass(t *testing.T) {
	site := demoSite(t, "")
	r, _ := newRunner(t, site)

	report, err := r.Run(context.Background(), Catalogue())

	require.NoError(t, err)
	require.Len(t, report.Results, len(Catalogue()))
	for i, res := range report.Results {
		assert.Equal(t, Catalogue()[i].Name, res.Name, "results keep input order")
		assert.Equal(t, StatusPass, res.Status, "%s: %s", res.Name, res.Error)
	}
	assert.True(t, report.OK())
	assert.Equal(t, site.Base, report.BaseURL)

	for _, p := range r.Engine.(*testutil.Engine).Pages() {
		_, err := p.HTML(context.Background())
		assert.ErrorIs(t, err, testutil.ErrClosed, "every page is closed")
	}
}

func TestRunner_WrongPasswordRedirectIsPassAlternate(t *testing.T) {
	r, hook := newRunner(t, demoSite(t, "/pulpit.html"))
	scenarios, err := Select(Catalogue(), []string{"login/wrong-password"})
	require.NoError(t, err)

	report, err := r.Run(context.Background(), scenarios)

	require.NoError(t, err)
	res := report.Results[0]
	assert.Equal(t, StatusPassAlternate, res.Status)
	assert.Equal(t, []string{demobank.CheckFailedLogin + "=alternate"}, res.Outcomes)
	assert.True(t, report.OK())
	assert.Equal(t, 1, report.Alternates())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Scenario passed through an alternate outcome" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRunner_FailureWritesSnapshot(t *testing.T) {
	site := demoSite(t, "")
	site.Pages["/pulpit.html"] = `<html><head><title>Pulpit</title></head><body>
		<input data-testid="login-input" value="tester01"><p>konto 12 3456 7890 1234 5678 9012 3456</p></body></html>`
	r, _ := newRunner(t, site)
	scenarios, err := Select(Catalogue(), []string{"dashboard/*"})
	require.NoError(t, err)

	report, err := r.Run(context.Background(), scenarios)

	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Failed())
	for _, res := range report.Results {
		assert.Equal(t, StatusFail, res.Status)
		assert.NotEmpty(t, res.Error)
		require.NotEmpty(t, res.Snapshot, res.Name)

		data, err := os.ReadFile(res.Snapshot)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "tester01")
		assert.NotContains(t, string(data), "7890 1234")
	}
}

func TestRunner_IsolatesScenarios(t *testing.T) {
	boom := errors.New("boom")
	scenarios := []Scenario{
		{Name: "a", Run: func(ctx context.Context, s *demobank.Session) error { return boom }},
		{Name: "b", Run: func(ctx context.Context, s *demobank.Session) error {
			return s.Open(ctx, "/")
		}},
	}
	r, _ := newRunner(t, demoSite(t, ""))
	r.Config.Parallel = 1
	r.Snapshots = nil

	report, err := r.Run(context.Background(), scenarios)

	require.NoError(t, err)
	assert.Equal(t, StatusFail, report.Results[0].Status)
	assert.Equal(t, "boom", report.Results[0].Error)
	assert.Empty(t, report.Results[0].Snapshot)
	assert.Equal(t, StatusPass, report.Results[1].Status)
}

func TestRunner_ScenarioTimeout(t *testing.T) {
	r, _ := newRunner(t, demoSite(t, ""))
	r.Config.ScenarioTimeout = 50 * time.Millisecond
	scenarios := []Scenario{{Name: "slow", Run: func(ctx context.Context, s *demobank.Session) error {
		<-ctx.Done()
		return ctx.Err()
	}}}

	report, err := r.Run(context.Background(), scenarios)

	require.NoError(t, err)
	assert.Equal(t, StatusFail, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Error, "deadline exceeded")
}

func TestRunner_Cancelled(t *testing.T) {
	r, _ := newRunner(t, demoSite(t, ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx, Catalogue())

	require.ErrorIs(t, err, context.Canceled)
	for _, res := range report.Results {
		assert.Equal(t, StatusFail, res.Status)
	}
}

func TestRunner_FailureSnapshotOnlyWhenNotCancelled(t *testing.T) {
	tests := []struct {
		name         string
		cancelRun    bool
		wantSnapshot bool
		wantErr      error
	}{
		{name: "scenario timeout keeps the snapshot", wantSnapshot: true},
		{name: "cancelled run skips the snapshot", cancelRun: true, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, hook := newRunner(t, demoSite(t, ""))
			r.Config.ScenarioTimeout = 100 * time.Millisecond
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			scenarios := []Scenario{{Name: "stuck", Run: func(ctx context.Context, s *demobank.Session) error {
				if err := s.Open(ctx, "/"); err != nil {
					return err
				}
				if tt.cancelRun {
					cancel()
				}
				<-ctx.Done()
				return ctx.Err()
			}}}

			report, err := r.Run(ctx, scenarios)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			res := report.Results[0]
			assert.Equal(t, StatusFail, res.Status)
			entries, _ := os.ReadDir(r.Config.ArtifactsDir)
			if tt.wantSnapshot {
				assert.NotEmpty(t, res.Snapshot)
				assert.Len(t, entries, 1)
				return
			}
			assert.Empty(t, res.Snapshot)
			assert.Empty(t, entries)
			var skipped bool
			for _, e := range hook.AllEntries() {
				skipped = skipped || strings.Contains(e.Message, "Skipping failure snapshot")
			}
			assert.True(t, skipped)
		})
	}
}

func sampleReport() *Report {
	return &Report{
		Engine:  config.EngineRod,
		BaseURL: "http://demobank.test",
		Started: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results: []Result{
			{Name: "login/happy-path", Status: StatusPass, Seconds: 1.3},
			{Name: "login/wrong-password", Status: StatusPassAlternate, Seconds: 2, Outcomes: []string{"failed-login=alternate"}},
			{Name: "dashboard/logout", Status: StatusFail, Seconds: 0.5, Error: "timeout", Snapshot: "artifacts/dashboard_logout.html"},
		},
	}
}

func TestReport_Counters(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, 2, r.Passed())
	assert.Equal(t, 1, r.Alternates())
	assert.Equal(t, 1, r.Failed())
	assert.False(t, r.OK())
}

func TestReport_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteJSON(&buf))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *sampleReport(), got)
	assert.Contains(t, buf.String(), `"status": "pass-alternate"`)
	assert.NotContains(t, buf.String(), `"error": ""`)
}

func TestReport_WriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteYAML(&buf))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "rod", got["engine"])
	assert.Len(t, got["results"], 3)
	assert.Contains(t, buf.String(), "status: pass-alternate")
}

func TestReport_WriteSummary(t *testing.T) {
	var buf bytes.Buffer
	sampleReport().WriteSummary(&buf, true)
	out := buf.String()

	assert.Contains(t, out, SuccMark+" login/happy-path (1.3s)")
	assert.Contains(t, out, WarnMark+" login/wrong-password")
	assert.Contains(t, out, FailMark+" dashboard/logout")
	assert.Contains(t, out, "error: timeout")
	assert.Contains(t, out, "snapshot: artifacts/dashboard_logout.html")
	assert.True(t, strings.HasSuffix(out, "2 passed (1 via alternate), 1 failed\n"))
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}
