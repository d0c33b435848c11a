// Package chrome implements browser.Page on a live Chrome tab driven by chromedp.
// Requires Chrome/Chromium to be installed on the system.
package chrome

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
)

// DefaultActionTimeout bounds every single chromedp call.
const DefaultActionTimeout = 30 * time.Second

// visibleJS reports whether the node is rendered with a non-empty box.
const visibleJS = `function() {
	const style = window.getComputedStyle(this);
	const rect = this.getBoundingClientRect();
	return style.display !== 'none' && style.visibility !== 'hidden' &&
		rect.width > 0 && rect.height > 0;
}`

// textJS returns the trimmed text content of the node.
const textJS = `function() { return (this.textContent || '').trim(); }`

// Options configures the Chrome process.
type Options struct {
	Headless      bool
	UserDataDir   string
	ActionTimeout time.Duration
	Logger        *slog.Logger
}

// Session owns one Chrome process and one tab.
type Session struct {
	browserCtx    context.Context
	cancel        func()
	actionTimeout time.Duration
	logger        *slog.Logger
}

// NewSession starts Chrome and opens a tab. Close must be called to release it.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	logger := logging.OrDiscard(opts.Logger)
	logger.Info("setting up Chrome browser", "headless", opts.Headless)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("enable-automation", false),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// Run with no actions starts the browser so failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = DefaultActionTimeout
	}

	logger.Info("Chrome browser setup successful")
	return &Session{
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		actionTimeout: timeout,
		logger:        logger,
	}, nil
}

// Close shuts the tab and the Chrome process down.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.logger.Info("Chrome browser closed")
	}
}

// run executes actions on the tab, bounded by the action timeout and by ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.actionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the body element.
func (s *Session) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// HTML returns the serialized DOM of the current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// Find returns the first node matching loc, without waiting for it to appear.
func (s *Session) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(loc.Query, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", loc.Name, err)
	}

	for _, node := range nodes {
		if loc.Text != "" {
			var text string
			err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
				return chromedp.CallFunctionOnNode(ctx, node, textJS, &text)
			}))
			if err != nil {
				// Nodes detached between query and read are skipped
				s.logger.Debug("failed to read node text", "locator", loc.Name, "error", err)
				continue
			}
			if strings.TrimSpace(text) != loc.Text {
				continue
			}
		}
		return &element{session: s, node: node}, nil
	}
	return nil, nil
}

// ScrollBy scrolls the window.
func (s *Session) ScrollBy(ctx context.Context, dx, dy int) error {
	return s.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(%d, %d);", dx, dy), nil))
}

type element struct {
	session *Session
	node    *cdp.Node
}

func (e *element) Visible(ctx context.Context) (bool, error) {
	var visible bool
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.CallFunctionOnNode(ctx, e.node, visibleJS, &visible)
	}))
	if err != nil {
		return false, fmt.Errorf("failed to check visibility: %w", err)
	}
	return visible, nil
}

func (e *element) Activate(ctx context.Context) error {
	if err := e.session.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("failed to click node: %w", err)
	}
	return nil
}

func (e *element) TypeText(ctx context.Context, text string) error {
	err := e.session.run(ctx,
		chromedp.Focus([]cdp.NodeID{e.node.NodeID}, chromedp.ByNodeID),
		chromedp.SendKeys([]cdp.NodeID{e.node.NodeID}, text, chromedp.ByNodeID),
	)
	if err != nil {
		return fmt.Errorf("failed to type into node: %w", err)
	}
	return nil
}

var _ browser.Page = (*Session)(nil)
