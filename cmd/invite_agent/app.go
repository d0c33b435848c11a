package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/browser/chrome"
	"github.com/jonathan/invite-agent/internal/browser/snapshot"
	"github.com/jonathan/invite-agent/internal/config"
	"github.com/jonathan/invite-agent/internal/db"
	"github.com/jonathan/invite-agent/internal/logging"
	"github.com/jonathan/invite-agent/internal/metrics"
	"github.com/jonathan/invite-agent/internal/observability"
	"github.com/jonathan/invite-agent/internal/profile"
	"github.com/jonathan/invite-agent/internal/resume"
	"github.com/jonathan/invite-agent/internal/session"
	"github.com/jonathan/invite-agent/internal/types"
	"github.com/jonathan/invite-agent/internal/workflow"
)

// app holds everything a command needs, built from the merged configuration.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	runID    uuid.UUID
	printer  *observability.Printer
	prompter config.Prompter
	store    resume.Store
	database *db.DB
	recorder *metrics.Recorder
	closers  []func()
}

// setup loads configuration, binding every flag the command defines.
func setup(cmd *cobra.Command) (*app, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		runID:    uuid.New(),
		printer:  observability.NewPrinter(cmd.OutOrStdout()),
		prompter: config.NewTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		closers:  []func(){func() { _ = closer.Close() }},
	}
	a.logger = logger.With("run_id", a.runID.String())
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openStore connects the configured resume store backend.
func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.BackendPostgres:
		database, err := db.Connect(ctx, a.cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		a.database = database
		a.store = resume.NewDBStore(database, a.logger)
	default:
		a.store = resume.NewFileStore(a.cfg.Store.Dir, a.logger)
	}
	a.logger.Debug("resume store ready", "backend", a.cfg.Store.Backend)
	return nil
}

// openPage returns the page driver: saved snapshots when a replay directory
// is configured, otherwise a signed-in Chrome session.
func (a *app) openPage(ctx context.Context) (browser.Page, error) {
	if dir := a.cfg.Browser.ReplayDir; dir != "" {
		a.logger.Info("replaying saved profile snapshots", "dir", dir)
		return snapshot.FromDir(dir)
	}

	// Chrome outlives a stop request so the profile in flight can finish;
	// a.close shuts it down.
	sess, err := chrome.NewSession(context.WithoutCancel(ctx), chrome.Options{
		Headless:      a.cfg.Browser.Headless,
		UserDataDir:   a.cfg.Browser.UserDataDir,
		ActionTimeout: a.cfg.Browser.ActionTimeout,
		Logger:        a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sess.Close)

	if err := session.Login(ctx, sess, a.credentials(), a.loginOptions()); err != nil {
		return nil, err
	}
	return sess, nil
}

func (a *app) credentials() session.Credentials {
	return session.Credentials{Username: a.cfg.Username, Password: a.cfg.Password}
}

func (a *app) loginOptions() session.Options {
	return session.Options{
		LoginURL:            a.cfg.Browser.LoginURL,
		Wait:                a.cfg.Wait.Options(),
		VerificationTimeout: a.cfg.Wait.Verification,
		Logger:              a.logger,
	}
}

// prepareWorkflow resolves credentials, reads the profile list and builds the
// engine over a ready page.
func (a *app) prepareWorkflow(ctx context.Context) (*workflow.Engine, []types.ProfileID, error) {
	if err := a.cfg.RequireInput(); err != nil {
		return nil, nil, err
	}
	if a.cfg.Browser.ReplayDir == "" {
		if err := a.cfg.ResolveCredentials(a.prompter); err != nil {
			return nil, nil, err
		}
	}
	if err := a.cfg.RequireAccount(); err != nil {
		return nil, nil, err
	}

	ids, err := workflow.ReadInput(a.cfg.Input)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Info("loaded profiles", "count", len(ids), "input", a.cfg.Input)

	attempt, err := a.cfg.Attempt()
	if err != nil {
		return nil, nil, err
	}
	locators, err := profile.DefaultLocators().WithOverrides(a.cfg.Locators)
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}

	if err := a.openStore(ctx); err != nil {
		return nil, nil, err
	}
	page, err := a.openPage(ctx)
	if err != nil {
		return nil, nil, err
	}

	wait := a.cfg.Wait.Options()
	engine := workflow.New(page, a.store, locators, wait, workflow.Options{
		Account:     a.cfg.AccountName(),
		Attempt:     attempt,
		RetryFailed: a.cfg.RetryFailed,
		PageReady:   wait,
		OptionWait:  wait,

		ProfileTimeout: a.cfg.Wait.Profile,
	}, a.logger)

	sender := profile.NewSender(locators, wait, a.logger)
	sender.SettleDelay = a.cfg.Wait.SettleDelay
	engine.Sender = sender

	if a.cfg.MetricsFile != "" {
		a.recorder = metrics.NewRecorder(a.cfg.AccountName())
		engine.Observer = a.recorder
	}
	return engine, ids, nil
}

// runPhase runs one workflow phase with run history and metrics around it.
// A stop request is reported as stopped=true with a nil error.
func (a *app) runPhase(ctx context.Context, phase string, fn func(context.Context) (types.Tally, error)) (tally types.Tally, stopped bool, err error) {
	phaseID := uuid.New()
	if a.database != nil {
		if err := a.database.CreateRun(ctx, phaseID, a.cfg.AccountName(), phase); err != nil {
			a.logger.Warn("failed to record run start", "phase", phase, "error", err)
		}
	}

	tally, err = fn(ctx)
	stopped = errors.Is(err, workflow.ErrStopped)

	// Bookkeeping continues after a stop request
	bg := context.WithoutCancel(ctx)
	if a.database != nil {
		if cerr := a.database.CompleteRun(bg, phaseID, runStatus(err), tally); cerr != nil {
			a.logger.Warn("failed to record run completion", "phase", phase, "error", cerr)
		}
	}
	if a.recorder != nil {
		a.recorder.PhaseFinished(phase, tally.Duration, time.Now())
		if werr := a.recorder.WriteTextfile(a.cfg.MetricsFile); werr != nil {
			a.logger.Warn("failed to write metrics", "error", werr)
		}
	}

	if stopped {
		a.logger.Warn("stopped by request, progress has been saved", "phase", phase)
		return tally, true, nil
	}
	return tally, false, err
}

func runStatus(err error) string {
	switch {
	case err == nil:
		return db.RunStatusCompleted
	case errors.Is(err, workflow.ErrStopped):
		return db.RunStatusStopped
	default:
		return db.RunStatusFailed
	}
}

// confirm asks before sending invitations unless --yes was given.
func (a *app) confirm(remaining int) (bool, error) {
	if a.cfg.Yes {
		return true, nil
	}
	return config.Confirm(a.prompter, fmt.Sprintf("Proceed with connecting to %d remaining profiles?", remaining))
}
