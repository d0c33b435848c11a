// Package observability renders human-readable run summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/invite-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of profiles listed by status
	maxItemsToShow = 20
)

type styles struct {
	box   lipgloss.Style
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	faint lipgloss.Style
}

func newStyles() styles {
	return styles{
		box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1).
			Width(boxWidth),
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(26),
		value: lipgloss.NewStyle().Bold(true),
		good:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		bad:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		faint: lipgloss.NewStyle().Faint(true),
	}
}

// Printer writes run summaries to out
type Printer struct {
	out    io.Writer
	styles styles
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, styles: newStyles()}
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, lines []string) {
	body := append([]string{p.styles.title.Render(title), ""}, lines...)
	fmt.Fprintln(p.out, p.styles.box.Render(lipgloss.JoinVertical(lipgloss.Left, body...)))
}

func (p *Printer) row(label string, value any) string {
	return p.styles.label.Render(label) + p.styles.value.Render(fmt.Sprint(value))
}

// PrintPreScan summarizes the pre-scan phase.
func (p *Printer) PrintPreScan(tally types.Tally) {
	lines := []string{
		p.row("Total profiles", tally.Total),
		p.row("Already connected", tally.AlreadyConnected),
		p.row("Remaining to process", tally.Remaining()),
	}
	if tally.Errored > 0 {
		lines = append(lines, p.styles.bad.Render(p.row("Errors", tally.Errored)))
	}
	lines = append(lines, p.styles.faint.Render("Duration "+formatDuration(tally.Duration)))
	p.printBox("PRE-SCAN COMPLETE", lines)
}

// PrintConnect summarizes the connect phase.
func (p *Printer) PrintConnect(tally types.Tally) {
	lines := []string{
		p.row("Total attempts", tally.Attempted),
		p.styles.good.Render(p.row("Successful connections", tally.Succeeded)),
		p.row("No invite option", tally.NoInviteOption),
		p.row("No connect option", tally.NoConnectOption),
		p.row("Already connected", tally.AlreadyConnected),
		p.row("Skipped (processed)", tally.Skipped),
	}
	if tally.Errored > 0 {
		lines = append(lines, p.styles.bad.Render(p.row("Errors", tally.Errored)))
	}
	lines = append(lines, p.styles.faint.Render("Duration "+formatDuration(tally.Duration)))
	p.printBox("CONNECTION PROCESS COMPLETE", lines)
}

// PrintStatus lists the stored records of an account with per-outcome counts.
func (p *Printer) PrintStatus(account string, records types.Records) {
	counts := records.Counts()
	lines := []string{p.row("Account", account), p.row("Recorded profiles", len(records)), ""}
	for _, o := range types.AllOutcomes {
		lines = append(lines, p.row(string(o), counts[o]))
	}

	if len(records) > 0 {
		lines = append(lines, "")
		ids := records.SortedIDs()
		for _, id := range ids[:min(len(ids), maxItemsToShow)] {
			rec := records[id]
			lines = append(lines,
				p.styles.faint.Render(rec.Timestamp.Format(types.TimestampLayout))+"  "+string(rec.Status),
				"  "+truncate(string(id), boxWidth-6))
		}
		if len(ids) > maxItemsToShow {
			lines = append(lines, fmt.Sprintf("... and %d more", len(ids)-maxItemsToShow))
		}
	}

	p.printBox("RESUME STORE", lines)
}

// PrintReset reports how many records were removed.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintReset(account string, removed int, outcomes []types.Outcome) {
	scope := "all outcomes"
	if len(outcomes) > 0 {
		names := make([]string, len(outcomes))
		for i, o := range outcomes {
			names[i] = string(o)
		}
		scope = strings.Join(names, ", ")
	}
	fmt.Fprintf(p.out, "Removed %d record(s) for %s (%s)\n", removed, account, scope)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
