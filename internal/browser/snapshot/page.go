// Package snapshot implements browser.Page over saved HTML documents using goquery.
// It drives the workflow offline: activations and typing are recorded instead of
// being sent anywhere, and the DOM never changes in response to them.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/invite-agent/internal/browser"
)

// Action kinds recorded by Page.
const (
	ActionNavigate = "navigate"
	ActionActivate = "activate"
	ActionType     = "type"
	ActionScroll   = "scroll"
)

// Action is one recorded interaction.
type Action struct {
	Kind   string
	URL    string
	Target string
	Text   string
}

// Page serves HTML snapshots keyed by URL, either from memory or from a directory.
type Page struct {
	mu      sync.Mutex
	pages   map[string]string
	dir     string
	current string
	doc     *goquery.Document
	actions []Action
}

// New returns a Page serving the given url -> HTML documents.
func New(pages map[string]string) *Page {
	copied := make(map[string]string, len(pages))
	for url, html := range pages {
		copied[url] = html
	}
	return &Page{pages: copied}
}

// FromDir returns a Page that reads FileName(url) from dir on each navigation.
func FromDir(dir string) (*Page, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot path %s is not a directory", dir)
	}
	return &Page{pages: map[string]string{}, dir: dir}, nil
}

// FileName maps a profile URL to its snapshot file name.
// "https://www.linkedin.com/in/jane-doe/" becomes "www_linkedin_com_in_jane_doe.html".
func FileName(url string) string {
	trimmed := url
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			sb.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(sb.String(), "_") + ".html"
}

// Set replaces the document served for url. The current page is not reloaded.
func (p *Page) Set(url, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[url] = html
}

// HTML returns the serialized current document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	doc := p.doc
	p.mu.Unlock()
	if doc == nil {
		return "", fmt.Errorf("no page loaded")
	}
	return goquery.OuterHtml(doc.Selection)
}

// Actions returns a copy of every recorded interaction.
func (p *Page) Actions() []Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Action, len(p.actions))
	copy(out, p.actions)
	return out
}

// CountActions returns how many recorded actions have the given kind.
func (p *Page) CountActions(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, a := range p.actions {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Navigate loads the snapshot for url.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := p.source(url)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse snapshot for %s: %w", url, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = url
	p.doc = doc
	p.actions = append(p.actions, Action{Kind: ActionNavigate, URL: url})
	return nil
}

// Find returns the first element matching loc on the current document.
func (p *Page) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	doc := p.doc
	p.mu.Unlock()
	if doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}

	var match *goquery.Selection
	doc.Find(loc.Query).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if loc.Text != "" && strings.TrimSpace(s.Text()) != loc.Text {
			return true
		}
		match = s
		return false
	})
	if match == nil {
		return nil, nil
	}
	return &element{page: p, sel: match}, nil
}

// ScrollBy records the scroll; snapshots have no viewport.
func (p *Page) ScrollBy(ctx context.Context, dx, dy int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.record(Action{Kind: ActionScroll, Target: fmt.Sprintf("%d,%d", dx, dy)})
	return nil
}

func (p *Page) source(url string) (string, error) {
	p.mu.Lock()
	html, ok := p.pages[url]
	dir := p.dir
	p.mu.Unlock()
	if ok {
		return html, nil
	}
	if dir == "" {
		return "", fmt.Errorf("no snapshot for %s", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName(url)))
	if err != nil {
		return "", fmt.Errorf("no snapshot for %s: %w", url, err)
	}
	return string(data), nil
}

func (p *Page) record(a Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a.URL == "" {
		a.URL = p.current
	}
	p.actions = append(p.actions, a)
}

type element struct {
	page *Page
	sel  *goquery.Selection
}

// Visible reports false when the element or an ancestor is hidden through the
// hidden attribute, aria-hidden="true", or an inline display/visibility style.
func (e *element) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for s := e.sel; s.Length() > 0; s = s.Parent() {
		if hidden(s) {
			return false, nil
		}
	}
	return true, nil
}

func (e *element) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.record(Action{Kind: ActionActivate, Target: describe(e.sel)})
	return nil
}

func (e *element) TypeText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.record(Action{Kind: ActionType, Target: describe(e.sel), Text: text})
	return nil
}

func hidden(s *goquery.Selection) bool {
	if _, ok := s.Attr("hidden"); ok {
		return true
	}
	if v, _ := s.Attr("aria-hidden"); v == "true" {
		return true
	}
	style, _ := s.Attr("style")
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func describe(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	if label, ok := s.Attr("aria-label"); ok {
		return fmt.Sprintf("%s[aria-label=%q]", tag, label)
	}
	if name, ok := s.Attr("name"); ok {
		return fmt.Sprintf("%s[name=%q]", tag, name)
	}
	if id, ok := s.Attr("id"); ok {
		return tag + "#" + id
	}
	return tag
}
