// Package browser defines the browser-driving capability consumed by the
// profile workflow: navigate, locate elements, inspect and activate them.
// Implementations live in the chrome (live session) and snapshot (saved HTML)
// subpackages.
package browser

import (
	"context"
	"fmt"
)

// Locator is a named page-element query. Query is a CSS selector; when Text is
// set only elements whose trimmed text content equals Text match.
type Locator struct {
	Name  string
	Query string
	Text  string
}

func (l Locator) String() string {
	if l.Text != "" {
		return fmt.Sprintf("%s(%s, text=%q)", l.Name, l.Query, l.Text)
	}
	return fmt.Sprintf("%s(%s)", l.Name, l.Query)
}

// Page is a browser tab the workflow drives.
type Page interface {
	// Navigate loads url and waits until the document body is ready.
	Navigate(ctx context.Context, url string) error
	// Find returns the first element matching loc, or nil when nothing matches.
	// An error means the driver itself failed, not that the element is absent.
	Find(ctx context.Context, loc Locator) (Element, error)
	// ScrollBy scrolls the viewport by the given pixel offsets.
	ScrollBy(ctx context.Context, dx, dy int) error
}

// Element is one located node on a Page.
type Element interface {
	Visible(ctx context.Context) (bool, error)
	Activate(ctx context.Context) error
	TypeText(ctx context.Context, text string) error
}

// NavigationError represents a failure to load a page
type NavigationError struct {
	URL   string
	Cause error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}
