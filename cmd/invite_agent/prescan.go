package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/invite-agent/internal/types"
	"github.com/jonathan/invite-agent/internal/workflow"
)

func newPreScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prescan",
		Short: "Record which profiles are already connections, without sending anything",
		Long: `Visits every profile in the input list and records the ones already connected
(first-degree). Nothing is clicked. Profiles recorded as connected in an earlier
run are counted without being visited.`,
		Args: cobra.NoArgs,
		RunE: runPreScanCmd,
	}
	addInputFlags(cmd)
	return cmd
}

func runPreScanCmd(cmd *cobra.Command, _ []string) error {
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

	tally, _, err := a.runPhase(ctx, workflow.PhasePreScan, func(ctx context.Context) (types.Tally, error) {
		return engine.PreScan(ctx, ids)
	})
	a.printer.PrintPreScan(tally)
	return err
}
