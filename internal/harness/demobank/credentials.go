package demobank

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
)

// Credentials for the demo bank login form.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// String keeps the password out of logs.
func (c Credentials) String() string {
	return c.Login + ":****"
}

// LoadCredentials reads cfg.AuthFile and applies cfg.Login and cfg.Password
// on top. The file may be absent only when both overrides are set.
func LoadCredentials(cfg config.Config) (Credentials, error) {
	var creds Credentials

	data, err := os.ReadFile(cfg.AuthFile)
	switch {
	case errors.Is(err, fs.ErrNotExist) && cfg.Login != "" && cfg.Password != "":
	case err != nil:
		return Credentials{}, &CredentialsError{Path: cfg.AuthFile, Cause: err}
	default:
		if err := json.Unmarshal(data, &creds); err != nil {
			return Credentials{}, &CredentialsError{Path: cfg.AuthFile, Cause: fmt.Errorf("malformed JSON: %w", err)}
		}
	}

	if cfg.Login != "" {
		creds.Login = cfg.Login
	}
	if cfg.Password != "" {
		creds.Password = cfg.Password
	}
	if creds.Login == "" || creds.Password == "" {
		return Credentials{}, &CredentialsError{Path: cfg.AuthFile, Cause: errors.New("login and password are both required")}
	}
	return creds, nil
}
