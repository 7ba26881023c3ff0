package browser

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// PollInterval is how often wait helpers re-check the page.
var PollInterval = 100 * time.Millisecond

// poll calls check until it reports done, ctx ends or timeout elapses.
// The last check error is attached to the timeout to aid diagnosis.
func poll(ctx context.Context, timeout time.Duration, what string, check func(context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		done, err := check(ctx)
		if err == nil && done {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			// A parent cancellation is not a timeout: report it as is.
			if ctx.Err() == context.Canceled {
				return ctx.Err()
			}
			if lastErr != nil {
				return fmt.Errorf("%w after %s waiting for %s: %v", ErrTimeout, timeout, what, lastErr)
			}
			return fmt.Errorf("%w after %s waiting for %s", ErrTimeout, timeout, what)
		case <-ticker.C:
		}
	}
}

func WaitAttached(ctx context.Context, p Page, loc Locator, timeout time.Duration) error {
	return poll(ctx, timeout, loc.String()+" to be attached", func(ctx context.Context) (bool, error) {
		n, err := p.Count(ctx, loc)
		return n > 0, err
	})
}

func WaitVisible(ctx context.Context, p Page, loc Locator, timeout time.Duration) error {
	return poll(ctx, timeout, loc.String()+" to be visible", func(ctx context.Context) (bool, error) {
		return p.Visible(ctx, loc)
	})
}

// WaitEnabled waits for the element itself to be attached and not disabled.
func WaitEnabled(ctx context.Context, p Page, loc Locator, timeout time.Duration) error {
	return poll(ctx, timeout, loc.String()+" to be enabled", func(ctx context.Context) (bool, error) {
		n, err := p.Count(ctx, loc)
		if err != nil || n == 0 {
			return false, err
		}
		return p.Enabled(ctx, loc)
	})
}

func WaitURL(ctx context.Context, p Page, pattern *regexp.Regexp, timeout time.Duration) error {
	return poll(ctx, timeout, "URL matching "+pattern.String(), func(ctx context.Context) (bool, error) {
		u, err := p.URL(ctx)
		return pattern.MatchString(u), err
	})
}

func WaitTitle(ctx context.Context, p Page, pattern *regexp.Regexp, timeout time.Duration) error {
	return poll(ctx, timeout, "title matching "+pattern.String(), func(ctx context.Context) (bool, error) {
		t, err := p.Title(ctx)
		return pattern.MatchString(t), err
	})
}

// IsVisibleWithin waits up to timeout for loc to become visible and reports
// the result. Errors of any kind count as not visible.
func IsVisibleWithin(ctx context.Context, p Page, loc Locator, timeout time.Duration) bool {
	return WaitVisible(ctx, p, loc, timeout) == nil
}
