package demobank

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks setup problems that abort a scenario outright.
	ErrConfiguration = errors.New("configuration error")

	ErrParsingFailed = errors.New("failed to parse demo bank page")
)

// CredentialsError is a missing or malformed credentials source.
type CredentialsError struct {
	Path  string
	Cause error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("credentials %s: %v", e.Path, e.Cause)
}

func (e *CredentialsError) Is(target error) bool { return target == ErrConfiguration }

func (e *CredentialsError) Unwrap() error { return e.Cause }

// StepError provides detailed context for a failed page interaction,
// including the fragment and strategy used when the control was resolved
// heuristically.
type StepError struct {
	Page      string
	Operation string
	Fragment  string
	Strategy  string
	Rank      int
	Cause     error
	Details   string
}

func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s failed: %v", e.Page, e.Operation, e.Cause)
	if e.Details != "" {
		b.WriteString(" - " + e.Details)
	}
	if e.Fragment != "" {
		fmt.Fprintf(&b, " (fragment=%q strategy=%s rank=%d)", e.Fragment, e.Strategy, e.Rank)
	}
	return b.String()
}

func (e *StepError) Unwrap() error {
	return e.Cause
}
