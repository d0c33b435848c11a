package profile

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
	"github.com/jonathan/invite-agent/internal/types"
)

// Sender completes an invitation once an invite affordance has been activated
// and the invitation dialog is expected.
type Sender struct {
	Locators Locators
	Wait     browser.WaitOptions
	// SettleDelay is an optional pause after the final click.
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// NewSender creates a Sender using locators and wait bounds.
func NewSender(locators Locators, wait browser.WaitOptions, logger *slog.Logger) *Sender {
	return &Sender{Locators: locators, Wait: wait, Logger: logging.OrDiscard(logger)}
}

// Send drives the dialog: with a note it adds the note, types it and confirms;
// without one it sends directly. It returns true only when the terminal
// confirmation control was activated. Partial progress is not rolled back.
func (s *Sender) Send(ctx context.Context, attempt types.InviteAttempt, page browser.Page) bool {
	logger := logging.OrDiscard(s.Logger)

	var sent bool
	if attempt.HasNote() {
		logger.Info("sending invitation with note")
		sent = s.sendWithNote(ctx, *attempt.NoteText, page, logger)
	} else {
		logger.Info("sending invitation without note")
		sent = s.activate(ctx, page, s.Locators.SendWithoutNote, logger)
	}

	if !sent {
		logger.Warn("failed to send invitation")
		return false
	}

	s.settle(ctx)
	logger.Info("invitation sent")
	return true
}

func (s *Sender) sendWithNote(ctx context.Context, note string, page browser.Page, logger *slog.Logger) bool {
	if !s.activate(ctx, page, s.Locators.AddNote, logger) {
		return false
	}

	field, err := browser.WaitVisible(ctx, page, s.Locators.NoteField, s.Wait)
	if err != nil {
		logger.Warn("note field did not appear", "error", err)
		return false
	}
	if err := field.TypeText(ctx, note); err != nil {
		logger.Warn("failed to enter note text", "error", err)
		return false
	}
	logger.Debug("note text entered")

	return s.activate(ctx, page, s.Locators.SendInvitation, logger)
}

// activate waits for loc to become visible and clicks it.
func (s *Sender) activate(ctx context.Context, page browser.Page, loc browser.Locator, logger *slog.Logger) bool {
	el, err := browser.WaitVisible(ctx, page, loc, s.Wait)
	if err != nil {
		logger.Warn("invitation control not available", "locator", loc.Name, "error", err)
		return false
	}
	if err := el.Activate(ctx); err != nil {
		logger.Warn("failed to activate invitation control", "locator", loc.Name, "error", err)
		return false
	}
	logger.Debug("activated invitation control", "locator", loc.Name)
	return true
}

func (s *Sender) settle(ctx context.Context) {
	if s.SettleDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
