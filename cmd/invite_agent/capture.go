package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/invite-agent/internal/browser/chrome"
	"github.com/jonathan/invite-agent/internal/browser/snapshot"
	"github.com/jonathan/invite-agent/internal/profile"
	"github.com/jonathan/invite-agent/internal/session"
	"github.com/jonathan/invite-agent/internal/workflow"
)

func newCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save the profile pages as HTML snapshots for --replay-dir",
		Long: `Logs in, visits every profile in the input list without clicking anything, and
saves each rendered page into the --replay-dir directory. The saved pages can
then be replayed offline to check locator overrides or reproduce an outcome.`,
		Args: cobra.NoArgs,
		RunE: runCaptureCmd,
	}
	addInputFlags(cmd)
	return cmd
}

func runCaptureCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	dir := a.cfg.Browser.ReplayDir
	if dir == "" {
		return fmt.Errorf("config error: 'replay_dir' is required for capture")
	}
	if err := a.cfg.RequireInput(); err != nil {
		return err
	}
	if err := a.cfg.ResolveCredentials(a.prompter); err != nil {
		return err
	}
	ids, err := workflow.ReadInput(a.cfg.Input)
	if err != nil {
		return err
	}
	locators, err := profile.DefaultLocators().WithOverrides(a.cfg.Locators)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	sess, err := chrome.NewSession(context.WithoutCancel(ctx), chrome.Options{
		Headless:      a.cfg.Browser.Headless,
		UserDataDir:   a.cfg.Browser.UserDataDir,
		ActionTimeout: a.cfg.Browser.ActionTimeout,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, sess.Close)

	if err := session.Login(ctx, sess, a.credentials(), a.loginOptions()); err != nil {
		return err
	}

	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = string(id)
	}
	saved, err := snapshot.Capture(ctx, sess, dir, urls, locators.PageReady, a.cfg.Wait.Options(), a.logger)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d profile snapshots to %s\n", saved, len(urls), dir)
	return err
}
