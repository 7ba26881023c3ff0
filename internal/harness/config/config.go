// Package config loads harness settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
)

const (
	EngineRod        = "rod"
	EnginePlaywright = "playwright"
)

// Config is the narrow settings value passed to every session. Nothing in
// the harness reads the environment directly.
type Config struct {
	BaseURL  string `envconfig:"UICHECK_BASE_URL"`
	AuthFile string `envconfig:"UICHECK_AUTH_FILE"`
	// Login and Password override the values in AuthFile when set.
	Login    string `envconfig:"UICHECK_LOGIN"`
	Password string `envconfig:"UICHECK_PASSWORD"`

	Engine      string `envconfig:"UICHECK_ENGINE"`
	Headless    bool   `envconfig:"UICHECK_HEADLESS"`
	BrowserBin  string `envconfig:"UICHECK_BROWSER_BIN"`
	Stealth     bool   `envconfig:"UICHECK_STEALTH"`
	HumanTyping bool   `envconfig:"UICHECK_HUMAN_TYPING"`

	// Timeout bounds every visibility, enabled and navigation wait.
	Timeout time.Duration `envconfig:"UICHECK_TIMEOUT"`
	// ProbeTimeout bounds the short "is it there" checks of tolerant assertions.
	ProbeTimeout    time.Duration `envconfig:"UICHECK_PROBE_TIMEOUT"`
	ScenarioTimeout time.Duration `envconfig:"UICHECK_SCENARIO_TIMEOUT"`
	Parallel        int           `envconfig:"UICHECK_PARALLEL"`

	ArtifactsDir string `envconfig:"UICHECK_ARTIFACTS_DIR"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BaseURL:         "https://demo-bank.vercel.app",
		AuthFile:        "auth.json",
		Engine:          EngineRod,
		Headless:        true,
		Stealth:         true,
		Timeout:         5 * time.Second,
		ProbeTimeout:    time.Second,
		ScenarioTimeout: time.Minute,
		Parallel:        2,
		ArtifactsDir:    "artifacts",
	}
}

// Load applies UICHECK_* variables over Default. Variables already present
// in the process environment win over those read from envFiles; missing
// files are skipped.
func Load(envFiles ...string) (Config, error) {
	return load(os.LookupEnv, envFiles...)
}

func load(lookupEnv func(string) (string, bool), envFiles ...string) (Config, error) {
	fileVars := map[string]string{}
	for _, name := range envFiles {
		vars, err := godotenv.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read env file %s: %w", name, err)
		}
		for k, v := range vars {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}

	cfg := Default()
	if err := envconfig.Process("", &cfg, lookup); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if c.BaseURL == "" || err != nil || !u.IsAbs() {
		return fmt.Errorf("config: base URL %q must be an absolute URL", c.BaseURL)
	}
	switch c.Engine {
	case EngineRod, EnginePlaywright:
	default:
		return fmt.Errorf("config: unknown engine %q (want %s or %s)", c.Engine, EngineRod, EnginePlaywright)
	}
	if c.Timeout <= 0 || c.ProbeTimeout <= 0 || c.ScenarioTimeout <= 0 {
		return fmt.Errorf("config: timeouts must be positive (timeout=%s probe=%s scenario=%s)",
			c.Timeout, c.ProbeTimeout, c.ScenarioTimeout)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("config: parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}

// URL resolves path against BaseURL.
func (c Config) URL(path string) string {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return c.BaseURL + path
	}
	return base.ResolveReference(ref).String()
}
