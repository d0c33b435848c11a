package profile

import (
	"context"
	"log/slog"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
)

// Prober determines whether the viewer is already connected to the profile
// currently loaded in the page.
type Prober struct {
	Locators Locators
	Logger   *slog.Logger
}

// NewProber creates a Prober using locators.
func NewProber(locators Locators, logger *slog.Logger) *Prober {
	return &Prober{Locators: locators, Logger: logging.OrDiscard(logger)}
}

// IsAlreadyConnected reports true only when the first-degree indicator is
// present and visible. Lookup failures count as not connected.
func (p *Prober) IsAlreadyConnected(ctx context.Context, page browser.Page) bool {
	logger := logging.OrDiscard(p.Logger)

	lookup := Locate(ctx, page, p.Locators.FirstDegree, logger)
	connected := lookup.Status == LookupVisible
	if lookup.Status == LookupFailed {
		logger.Warn("connection status check failed, assuming not connected", "error", lookup.Err)
	}

	logger.Debug("connection status checked", "connected", connected, "indicator", lookup.Status.String())
	return connected
}
