package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/invite-agent/internal/types"
	"github.com/jonathan/invite-agent/internal/workflow"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Log in, pre-scan, confirm, then send invitations",
		Long: `Orchestrates the whole workflow: login -> pre-scan -> summary -> confirmation -> connect.

The confirmation prompt is skipped with --yes. Interrupting the run (Ctrl-C)
stops after the current profile; every outcome recorded so far is kept and the
next run resumes from there.`,
		Args: cobra.NoArgs,
		RunE: runWorkflowCmd,
	}
	addInputFlags(cmd)
	addConnectFlags(cmd)
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation before the connect phase")
	return cmd
}

func runWorkflowCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	engine, ids, err := a.prepareWorkflow(ctx)
	if err != nil {
		return err
	}

	scan, stopped, err := a.runPhase(ctx, workflow.PhasePreScan, func(ctx context.Context) (types.Tally, error) {
		return engine.PreScan(ctx, ids)
	})
	a.printer.PrintPreScan(scan)
	if err != nil || stopped {
		return err
	}
	if scan.Remaining() == 0 {
		a.logger.Info("no new connections to make")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No new connections to make.")
		return nil
	}

	ok, err := a.confirm(scan.Remaining())
	if err != nil {
		return err
	}
	if !ok {
		a.logger.Info("operation cancelled by user")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
		return nil
	}

	tally, _, err := a.runPhase(ctx, workflow.PhaseConnect, func(ctx context.Context) (types.Tally, error) {
		return engine.Connect(ctx, ids)
	})
	a.printer.PrintConnect(tally)
	return err
}
