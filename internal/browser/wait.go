package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default polling parameters for WaitVisible.
const (
	DefaultWaitTimeout  = 5 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
)

// ErrNotVisible is returned by WaitVisible when the element did not become
// visible before the timeout.
var ErrNotVisible = errors.New("element not visible before timeout")

// WaitOptions bounds a WaitVisible poll.
type WaitOptions struct {
	Timeout  time.Duration
	Interval time.Duration
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultWaitTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.Interval > o.Timeout {
		o.Interval = o.Timeout
	}
	return o
}

// WaitVisible polls page until an element matching loc is present and visible,
// or opts.Timeout elapses. Driver errors abort the wait immediately.
func WaitVisible(ctx context.Context, page Page, loc Locator, opts WaitOptions) (Element, error) {
	opts = opts.withDefaults()

	poll := backoff.NewExponentialBackOff()
	poll.InitialInterval = opts.Interval
	poll.MaxInterval = opts.Interval
	poll.Multiplier = 1
	poll.RandomizationFactor = 0
	poll.MaxElapsedTime = opts.Timeout

	var found Element
	operation := func() error {
		el, err := page.Find(ctx, loc)
		if err != nil {
			return backoff.Permanent(err)
		}
		if el == nil {
			return ErrNotVisible
		}
		visible, err := el.Visible(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !visible {
			return ErrNotVisible
		}
		found = el
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(poll, ctx))
	if err != nil {
		if errors.Is(err, ErrNotVisible) {
			return nil, fmt.Errorf("%s: %w", loc.Name, ErrNotVisible)
		}
		return nil, fmt.Errorf("waiting for %s: %w", loc.Name, err)
	}
	return found, nil
}
