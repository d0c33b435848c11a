// Package profile knows how to read and act on a profile page: the locator
// table of UI affordances, the connection status prober and the invitation sender.
package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/invite-agent/internal/browser"
)

// Locator names, usable as override keys.
const (
	LocatorPageReady       = "page_ready"
	LocatorFirstDegree     = "first_degree"
	LocatorInvite          = "invite"
	LocatorMoreActions     = "more_actions"
	LocatorConnectOption   = "connect_option"
	LocatorAddNote         = "add_note"
	LocatorNoteField       = "note_field"
	LocatorSendInvitation  = "send_invitation"
	LocatorSendWithoutNote = "send_without_note"
)

// Locators is the fixed set of page-element queries used on a profile page.
type Locators struct {
	PageReady       browser.Locator
	FirstDegree     browser.Locator
	Invite          browser.Locator
	MoreActions     browser.Locator
	ConnectOption   browser.Locator
	AddNote         browser.Locator
	NoteField       browser.Locator
	SendInvitation  browser.Locator
	SendWithoutNote browser.Locator
}

// DefaultLocators returns the queries for the current profile page layout.
func DefaultLocators() Locators {
	return Locators{
		PageReady:       browser.Locator{Name: LocatorPageReady, Query: "main"},
		FirstDegree:     browser.Locator{Name: LocatorFirstDegree, Query: "span", Text: "1st"},
		Invite:          browser.Locator{Name: LocatorInvite, Query: `main button[aria-label*="Invite"]`},
		MoreActions:     browser.Locator{Name: LocatorMoreActions, Query: `main button[aria-label*="More actions"]`},
		ConnectOption:   browser.Locator{Name: LocatorConnectOption, Query: `main div[aria-label*="to connect"]`},
		AddNote:         browser.Locator{Name: LocatorAddNote, Query: `button[aria-label*="Add a note"]`},
		NoteField:       browser.Locator{Name: LocatorNoteField, Query: `textarea[name*="message"]`},
		SendInvitation:  browser.Locator{Name: LocatorSendInvitation, Query: `button[aria-label*="Send invitation"]`},
		SendWithoutNote: browser.Locator{Name: LocatorSendWithoutNote, Query: `button[aria-label*="Send without a note"]`},
	}
}

func (l *Locators) byName() map[string]*browser.Locator {
	return map[string]*browser.Locator{
		LocatorPageReady:       &l.PageReady,
		LocatorFirstDegree:     &l.FirstDegree,
		LocatorInvite:          &l.Invite,
		LocatorMoreActions:     &l.MoreActions,
		LocatorConnectOption:   &l.ConnectOption,
		LocatorAddNote:         &l.AddNote,
		LocatorNoteField:       &l.NoteField,
		LocatorSendInvitation:  &l.SendInvitation,
		LocatorSendWithoutNote: &l.SendWithoutNote,
	}
}

// WithOverrides returns a copy of l with the CSS queries of the named locators
// replaced. Text filters are kept. Unknown names are an error.
func (l Locators) WithOverrides(queries map[string]string) (Locators, error) {
	out := l
	table := out.byName()
	for name, query := range queries {
		loc, ok := table[name]
		if !ok {
			return l, fmt.Errorf("unknown locator %q (known: %s)", name, strings.Join(LocatorNames(), ", "))
		}
		if strings.TrimSpace(query) == "" {
			return l, fmt.Errorf("empty query for locator %q", name)
		}
		loc.Query = query
	}
	return out, nil
}

// LocatorNames lists every locator name in sorted order.
func LocatorNames() []string {
	var l Locators
	names := make([]string, 0, 9)
	for name := range l.byName() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
