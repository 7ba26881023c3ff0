package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(env(nil))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "https://demo-bank.vercel.app", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Headless)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	cfg, err := load(env(map[string]string{
		"UICHECK_BASE_URL": "http://localhost:3000",
		"UICHECK_ENGINE":   "playwright",
		"UICHECK_HEADLESS": "false",
		"UICHECK_TIMEOUT":  "2s",
		"UICHECK_PARALLEL": "4",
		"UICHECK_LOGIN":    "tester01",
	}))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, EnginePlaywright, cfg.Engine)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Parallel)
	assert.Equal(t, "tester01", cfg.Login)
	assert.Equal(t, time.Second, cfg.ProbeTimeout, "unset values keep their default")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("UICHECK_PARALLEL=3\nUICHECK_ARTIFACTS_DIR=out\n"), 0o600))

	cfg, err := load(env(map[string]string{"UICHECK_PARALLEL": "1"}), filepath.Join(dir, "missing.env"), path)

	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Parallel, "process environment wins over the file")
	assert.Equal(t, "out", cfg.ArtifactsDir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown engine", map[string]string{"UICHECK_ENGINE": "selenium"}},
		{"relative base url", map[string]string{"UICHECK_BASE_URL": "demo-bank"}},
		{"zero timeout", map[string]string{"UICHECK_TIMEOUT": "0s"}},
		{"no parallelism", map[string]string{"UICHECK_PARALLEL": "0"}},
		{"malformed duration", map[string]string{"UICHECK_PROBE_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(env(tt.vars))
			assert.Error(t, err)
		})
	}
}

func TestConfig_URL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://demo-bank.vercel.app/", cfg.URL("/"))
	assert.Equal(t, "https://demo-bank.vercel.app/pulpit.html", cfg.URL("pulpit.html"))
}
