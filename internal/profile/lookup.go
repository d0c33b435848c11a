package profile

import (
	"context"
	"log/slog"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
)

// LookupStatus classifies the result of locating one affordance.
type LookupStatus int

const (
	// LookupMissing means no element matched.
	LookupMissing LookupStatus = iota
	// LookupHidden means an element matched but is not visible.
	LookupHidden
	// LookupVisible means a visible element matched.
	LookupVisible
	// LookupFailed means the driver failed while looking.
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupMissing:
		return "missing"
	case LookupHidden:
		return "hidden"
	case LookupVisible:
		return "visible"
	case LookupFailed:
		return "failed"
	}
	return "unknown"
}

// Lookup is the typed result of Locate.
type Lookup struct {
	Status  LookupStatus
	Element browser.Element
	Err     error
}

// Usable reports whether the element can be activated.
func (l Lookup) Usable() bool {
	return l.Status == LookupVisible && l.Element != nil
}

// Locate finds loc on page once and classifies the result. It never returns an
// error: driver failures are reported as LookupFailed.
func Locate(ctx context.Context, page browser.Page, loc browser.Locator, logger *slog.Logger) Lookup {
	logger = logging.OrDiscard(logger)
	el, err := page.Find(ctx, loc)
	if err != nil {
		logger.Debug("element lookup failed", "locator", loc.Name, "error", err)
		return Lookup{Status: LookupFailed, Err: err}
	}
	if el == nil {
		logger.Debug("element not found", "locator", loc.Name)
		return Lookup{Status: LookupMissing}
	}

	visible, err := el.Visible(ctx)
	if err != nil {
		logger.Debug("element visibility check failed", "locator", loc.Name, "error", err)
		return Lookup{Status: LookupFailed, Element: el, Err: err}
	}
	if !visible {
		logger.Debug("element found but hidden", "locator", loc.Name)
		return Lookup{Status: LookupHidden, Element: el}
	}

	logger.Debug("element found", "locator", loc.Name)
	return Lookup{Status: LookupVisible, Element: el}
}
