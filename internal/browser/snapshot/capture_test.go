package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/invite-agent/internal/browser"
)

func TestCapture_RoundTrip(t *testing.T) {
	const (
		bob   = "https://www.linkedin.com/in/bob/"
		carol = "https://www.linkedin.com/in/carol/"
	)
	live := New(map[string]string{
		bob:   `<html><body><main><button aria-label="Invite Bob to connect">Connect</button></main></body></html>`,
		carol: `<html><body><main><span>1st</span></main></body></html>`,
	})
	dir := filepath.Join(t.TempDir(), "replay")
	ready := browser.Locator{Name: "page_ready", Query: "main"}
	wait := browser.WaitOptions{Timeout: 50 * time.Millisecond, Interval: 5 * time.Millisecond}

	saved, err := Capture(context.Background(), live, dir,
		[]string{bob, "https://www.linkedin.com/in/missing/", carol}, ready, wait, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Zero(t, live.CountActions(ActionActivate))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	replay, err := FromDir(dir)
	require.NoError(t, err)
	require.NoError(t, replay.Navigate(context.Background(), bob))

	el, err := replay.Find(context.Background(), browser.Locator{Query: `button[aria-label*="Invite"]`})
	require.NoError(t, err)
	assert.NotNil(t, el)
}

func TestCapture_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	saved, err := Capture(ctx, New(nil), t.TempDir(), []string{"https://www.linkedin.com/in/bob/"},
		browser.Locator{Query: "main"}, browser.WaitOptions{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, saved)
}
