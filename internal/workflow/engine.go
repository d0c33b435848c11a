package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/ingestion"
	"github.com/jonathan/invite-agent/internal/logging"
	"github.com/jonathan/invite-agent/internal/profile"
	"github.com/jonathan/invite-agent/internal/resume"
	"github.com/jonathan/invite-agent/internal/types"
)

// Phase names, used in logs and metrics.
const (
	PhasePreScan = "prescan"
	PhaseConnect = "connect"
)

// Observation results reported to an Observer besides outcome slugs.
const (
	ResultSkipped       = "skipped"
	ResultErrored       = "errored"
	ResultNotConnected  = "not_connected"
	defaultProgressStep = 5
	defaultScrollOffset = 200

	defaultProfileTimeout = 3 * time.Minute
)

// ConnectionProber reports whether the loaded profile is already a connection.
type ConnectionProber interface {
	IsAlreadyConnected(ctx context.Context, page browser.Page) bool
}

// InvitationSender completes an invitation dialog.
type InvitationSender interface {
	Send(ctx context.Context, attempt types.InviteAttempt, page browser.Page) bool
}

// Observer receives one call per profile handled by a phase.
type Observer interface {
	Observe(phase, result string)
}

// Options tunes the engine.
type Options struct {
	// Account scopes every resume store read and write.
	Account string
	// Attempt describes the invitation to send in the connect phase.
	Attempt types.InviteAttempt
	// RetryFailed re-attempts profiles recorded with a failure outcome.
	RetryFailed bool
	// PageReady bounds the wait for the profile's main content after navigation.
	PageReady browser.WaitOptions
	// OptionWait bounds the wait for the connect option after opening "More actions".
	OptionWait browser.WaitOptions
	// ScrollOffset is the vertical scroll applied after opening "More actions".
	ScrollOffset int
	// ProgressEvery logs pre-scan progress every N profiles.
	ProgressEvery int
	// ProfileTimeout bounds the browser work for one profile. A stop request
	// never interrupts a profile in flight; this deadline does.
	ProfileTimeout time.Duration
}

// Engine orchestrates the pre-scan and connect phases. It borrows the page for
// the duration of a phase and is the only writer of the resume store.
type Engine struct {
	Page     browser.Page
	Store    resume.Store
	Prober   ConnectionProber
	Sender   InvitationSender
	Locators profile.Locators
	Options  Options
	Logger   *slog.Logger
	Observer Observer
	Now      func() time.Time
}

// New creates an Engine with the default prober and sender built from locators.
func New(page browser.Page, store resume.Store, locators profile.Locators, wait browser.WaitOptions, opts Options, logger *slog.Logger) *Engine {
	logger = logging.OrDiscard(logger)
	return &Engine{
		Page:     page,
		Store:    store,
		Prober:   profile.NewProber(locators, logger),
		Sender:   profile.NewSender(locators, wait, logger),
		Locators: locators,
		Options:  opts,
		Logger:   logger,
		Now:      time.Now,
	}
}

// ReadInput reads the profile list, wrapping failures in *InputError.
func ReadInput(path string) ([]types.ProfileID, error) {
	ids, err := ingestion.ReadProfileList(path)
	if err != nil {
		return nil, &InputError{Path: path, Cause: err}
	}
	return ids, nil
}

// PreScan classifies every profile without sending invitations. Profiles
// already recorded as connected are counted without navigation. The only
// outcome it ever writes is AlreadyConnected.
func (e *Engine) PreScan(ctx context.Context, ids []types.ProfileID) (types.Tally, error) {
	logger := e.logger().With("phase", PhasePreScan, "account", e.Options.Account)
	start := e.now()
	tally := types.Tally{Total: len(ids)}
	records := e.Store.Load(ctx, e.Options.Account)

	logger.Info("starting pre-scan", "profiles", len(ids), "known", len(records))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			tally.Duration = e.now().Sub(start)
			logger.Warn("pre-scan stopped", "processed", i, "total", len(ids))
			return tally, fmt.Errorf("%w: %w", ErrStopped, err)
		}

		plog := logger.With("profile", string(id), "index", i+1, "total", len(ids))

		if records.Has(id, types.OutcomeAlreadyConnected) {
			tally.AlreadyConnected++
			tally.Skipped++
			e.observe(PhasePreScan, ResultSkipped)
			plog.Info("profile already connected")
		} else {
			work, cancel := e.profileContext(ctx)
			connected, err := e.scanOne(work, id, plog)
			cancel()
			switch {
			case err != nil && isFatal(err):
				tally.Duration = e.now().Sub(start)
				return tally, err
			case err != nil:
				tally.Errored++
				e.observe(PhasePreScan, ResultErrored)
				plog.Error("failed to scan profile", "error", err)
			case connected:
				tally.AlreadyConnected++
				e.record(context.WithoutCancel(ctx), id, types.OutcomeAlreadyConnected, records, plog)
				e.observe(PhasePreScan, types.OutcomeAlreadyConnected.Slug())
				plog.Info("found new already connected profile")
			default:
				e.observe(PhasePreScan, ResultNotConnected)
			}
		}

		if step := e.progressEvery(); (i+1)%step == 0 {
			logger.Info("pre-scan progress",
				"scanned", i+1, "total", len(ids), "already_connected", tally.AlreadyConnected)
		}
	}

	tally.Duration = e.now().Sub(start)
	logger.Info("pre-scan completed",
		"total", tally.Total, "already_connected", tally.AlreadyConnected,
		"remaining", tally.Remaining(), "duration", tally.Duration)
	return tally, nil
}

// Connect walks the profiles not yet known to be connected or invited, and
// records exactly one outcome for every profile it fully inspects.
func (e *Engine) Connect(ctx context.Context, ids []types.ProfileID) (types.Tally, error) {
	logger := e.logger().With("phase", PhaseConnect, "account", e.Options.Account)
	start := e.now()
	tally := types.Tally{Total: len(ids)}
	records := e.Store.Load(ctx, e.Options.Account)

	logger.Info("starting to connect with remaining profiles", "profiles", len(ids), "note", e.Options.Attempt.HasNote())

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			tally.Duration = e.now().Sub(start)
			logger.Warn("connect phase stopped", "processed", i, "total", len(ids))
			return tally, fmt.Errorf("%w: %w", ErrStopped, err)
		}

		plog := logger.With("profile", string(id), "index", i+1, "total", len(ids))

		if rec, ok := records[id]; ok && e.skip(rec.Status) {
			if rec.Status == types.OutcomeAlreadyConnected {
				tally.AlreadyConnected++
			}
			tally.Skipped++
			e.observe(PhaseConnect, ResultSkipped)
			plog.Info("skipping processed profile", "status", rec.Status)
			continue
		}

		plog.Info("processing profile")
		tally.Attempted++

		work, cancel := e.profileContext(ctx)
		outcome, err := e.connectOne(work, id, plog)
		cancel()
		if err != nil {
			if isFatal(err) {
				tally.Duration = e.now().Sub(start)
				return tally, err
			}
			tally.Errored++
			e.observe(PhaseConnect, ResultErrored)
			plog.Error("failed to process profile", "error", err)
			continue
		}

		tally.Add(outcome)
		e.record(context.WithoutCancel(ctx), id, outcome, records, plog)
		e.observe(PhaseConnect, outcome.Slug())
	}

	tally.Duration = e.now().Sub(start)
	logger.Info("connection process completed",
		"attempts", tally.Attempted, "successful", tally.Succeeded,
		"no_invite_option", tally.NoInviteOption, "no_connect_option", tally.NoConnectOption,
		"duration", tally.Duration)
	return tally, nil
}

// skip reports whether a profile with a prior record is left alone.
func (e *Engine) skip(prior types.Outcome) bool {
	return prior.Final() || !e.Options.RetryFailed
}

// profileContext detaches per-profile work from the run's cancellation, so a
// stop request lets the current profile finish, and bounds it instead.
func (e *Engine) profileContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := e.Options.ProfileTimeout
	if timeout <= 0 {
		timeout = defaultProfileTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (e *Engine) scanOne(ctx context.Context, id types.ProfileID, logger *slog.Logger) (connected bool, err error) {
	defer recoverProfile(&err)

	if err := e.open(ctx, id, logger); err != nil {
		return false, err
	}
	connected = e.Prober.IsAlreadyConnected(ctx, e.Page)
	if err := expired(ctx); err != nil {
		return false, err
	}
	return connected, nil
}

// connectOne runs the per-profile state machine and returns its terminal outcome.
// An outcome is returned only when the page was actually inspected: driver
// failures and an expired profile deadline come back as errors instead.
func (e *Engine) connectOne(ctx context.Context, id types.ProfileID, logger *slog.Logger) (outcome types.Outcome, err error) {
	defer recoverProfile(&err)

	if err := e.open(ctx, id, logger); err != nil {
		return "", err
	}

	outcome, err = e.classify(ctx, logger)
	if err != nil {
		return "", err
	}
	if err := expired(ctx); err != nil {
		return "", err
	}
	return outcome, nil
}

func (e *Engine) classify(ctx context.Context, logger *slog.Logger) (types.Outcome, error) {
	// Connection state may have changed since the pre-scan
	if e.Prober.IsAlreadyConnected(ctx, e.Page) {
		logger.Info("found already connected profile")
		return types.OutcomeAlreadyConnected, nil
	}

	direct := profile.Locate(ctx, e.Page, e.Locators.Invite, logger)
	if direct.Status == profile.LookupFailed {
		return "", &LookupError{Control: e.Locators.Invite.Name, Cause: direct.Err}
	}
	if direct.Usable() {
		logger.Info("found direct connect button")
		return e.invite(ctx, direct.Element, logger), nil
	}

	logger.Info("direct connect button not found, trying more options", "invite", direct.Status.String())
	return e.fallback(ctx, logger)
}

func (e *Engine) fallback(ctx context.Context, logger *slog.Logger) (types.Outcome, error) {
	more := profile.Locate(ctx, e.Page, e.Locators.MoreActions, logger)
	if more.Status == profile.LookupFailed {
		return "", &LookupError{Control: e.Locators.MoreActions.Name, Cause: more.Err}
	}
	if !more.Usable() {
		logger.Warn("no connection options found", "more_actions", more.Status.String())
		return types.OutcomeNoConnectOption, nil
	}
	if err := more.Element.Activate(ctx); err != nil {
		logger.Warn("failed to open more options", "error", err)
		return types.OutcomeNoInviteOption, nil
	}
	logger.Info("clicked more options")

	if err := e.Page.ScrollBy(ctx, 0, e.scrollOffset()); err != nil {
		logger.Debug("failed to scroll after opening more options", "error", err)
	}

	option, err := browser.WaitVisible(ctx, e.Page, e.Locators.ConnectOption, e.Options.OptionWait)
	if err != nil {
		logger.Warn("no invite option found", "error", err)
		return types.OutcomeNoInviteOption, nil
	}
	logger.Info("found invite option")
	return e.invite(ctx, option, logger), nil
}

// invite activates an invite affordance and completes the dialog.
func (e *Engine) invite(ctx context.Context, affordance browser.Element, logger *slog.Logger) types.Outcome {
	if err := affordance.Activate(ctx); err != nil {
		logger.Warn("failed to activate invite control", "error", err)
		return types.OutcomeNoInviteOption
	}
	if e.Sender.Send(ctx, e.Options.Attempt, e.Page) {
		return types.OutcomeConnectionSent
	}
	return types.OutcomeNoInviteOption
}

// open navigates to id and waits for the main content.
func (e *Engine) open(ctx context.Context, id types.ProfileID, logger *slog.Logger) error {
	if err := e.Page.Navigate(ctx, string(id)); err != nil {
		if err := expired(ctx); err != nil {
			return err
		}
		return &browser.NavigationError{URL: string(id), Cause: err}
	}
	if _, err := browser.WaitVisible(ctx, e.Page, e.Locators.PageReady, e.Options.PageReady); err != nil {
		logger.Warn("profile content not ready, continuing", "error", err)
	}
	return nil
}

// record persists an outcome. Write failures are logged and never abort the run.
func (e *Engine) record(ctx context.Context, id types.ProfileID, outcome types.Outcome, records types.Records, logger *slog.Logger) {
	records[id] = types.ResumeRecord{Status: outcome, Timestamp: types.NewTimestamp(e.now())}
	if err := e.Store.Record(ctx, e.Options.Account, id, outcome); err != nil {
		logger.Error("failed to save profile status", "status", outcome, "error", err)
		return
	}
	logger.Info("saved profile status", "status", outcome)
}

func (e *Engine) observe(phase, result string) {
	if e.Observer != nil {
		e.Observer.Observe(phase, result)
	}
}

func (e *Engine) progressEvery() int {
	if e.Options.ProgressEvery > 0 {
		return e.Options.ProgressEvery
	}
	return defaultProgressStep
}

func (e *Engine) scrollOffset() int {
	if e.Options.ScrollOffset != 0 {
		return e.Options.ScrollOffset
	}
	return defaultScrollOffset
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) logger() *slog.Logger {
	return logging.OrDiscard(e.Logger)
}

// isFatal reports whether err must end the phase.
func isFatal(err error) bool {
	var navErr *browser.NavigationError
	return errors.As(err, &navErr) || errors.Is(err, ErrStopped)
}

// expired reports a profile deadline that ran out, in which case any lookup
// made under ctx may have failed for that reason alone.
func expired(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileTimeout, err)
	}
	return nil
}

func recoverProfile(err *error) {
	if r := recover(); r != nil {
		*err = &PanicError{Value: r}
	}
}
