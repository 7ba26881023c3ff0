// Command uicheck runs read-only UI checks against the demo bank.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	var ec exitCoder
	switch {
	case errors.As(err, &ec):
		os.Exit(ec.ExitCode())
	case err != nil:
		os.Exit(1)
	}
}

type exitCoder interface {
	ExitCode() int
}

// failedChecksError is returned when the run itself worked but at least one
// scenario failed.
type failedChecksError struct{ failed int }

func (e failedChecksError) Error() string {
	return fmt.Sprintf("%d scenario(s) failed", e.failed)
}

func (e failedChecksError) ExitCode() int { return 2 }
