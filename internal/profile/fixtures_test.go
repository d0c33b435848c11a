package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/browser/snapshot"
)

const testURL = "https://www.linkedin.com/in/jane-doe/"

func fastWait() browser.WaitOptions {
	return browser.WaitOptions{Timeout: 50 * time.Millisecond, Interval: 5 * time.Millisecond}
}

func loadPage(t *testing.T, body string) *snapshot.Page {
	t.Helper()
	page := snapshot.New(map[string]string{testURL: "<html><body>" + body + "</body></html>"})
	require.NoError(t, page.Navigate(context.Background(), testURL))
	return page
}

// brokenPage fails every driver call.
type brokenPage struct{}

var errDriver = errors.New("target closed")

func (brokenPage) Navigate(context.Context, string) error { return errDriver }
func (brokenPage) Find(context.Context, browser.Locator) (browser.Element, error) {
	return nil, errDriver
}
func (brokenPage) ScrollBy(context.Context, int, int) error { return errDriver }
