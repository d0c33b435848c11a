package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
)

// Source is a page whose current document can be serialized.
type Source interface {
	browser.Page
	HTML(ctx context.Context) (string, error)
}

// Capture visits every url on src without interacting with it and saves the
// rendered document under dir, in the layout FromDir reads. A failed visit is
// logged and skipped; it returns the number of pages saved.
func Capture(ctx context.Context, src Source, dir string, urls []string, ready browser.Locator, wait browser.WaitOptions, logger *slog.Logger) (int, error) {
	logger = logging.OrDiscard(logger)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	saved := 0
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		plog := logger.With("profile", url, "index", i+1, "total", len(urls))

		if err := src.Navigate(ctx, url); err != nil {
			plog.Warn("failed to load profile, skipping", "error", err)
			continue
		}
		if _, err := browser.WaitVisible(ctx, src, ready, wait); err != nil {
			plog.Warn("profile content not ready, saving anyway", "error", err)
		}

		html, err := src.HTML(ctx)
		if err != nil {
			plog.Warn("failed to read profile HTML, skipping", "error", err)
			continue
		}
		path := filepath.Join(dir, FileName(url))
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			return saved, fmt.Errorf("failed to save snapshot %s: %w", path, err)
		}
		saved++
		plog.Info("saved profile snapshot", "file", path, "bytes", len(html))
	}
	return saved, nil
}
