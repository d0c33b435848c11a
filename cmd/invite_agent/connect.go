package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/invite-agent/internal/types"
	"github.com/jonathan/invite-agent/internal/workflow"
)

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Send invitations to profiles not yet connected or invited",
		Long: `Runs only the connect phase. Profiles recorded as already connected or invited
are skipped; profiles recorded without an invite or connect option are skipped
unless --retry-failed is set. Each remaining profile gets exactly one outcome.`,
		Args: cobra.NoArgs,
		RunE: runConnectCmd,
	}
	addInputFlags(cmd)
	addConnectFlags(cmd)
	return cmd
}

func runConnectCmd(cmd *cobra.Command, _ []string) error {
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

	tally, _, err := a.runPhase(ctx, workflow.PhaseConnect, func(ctx context.Context) (types.Tally, error) {
		return engine.Connect(ctx, ids)
	})
	a.printer.PrintConnect(tally)
	return err
}
