package main

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the recorded outcomes of an account",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.cfg.RequireAccount(); err != nil {
		return err
	}
	if err := a.openStore(ctx); err != nil {
		return err
	}

	account := a.cfg.AccountName()
	a.printer.PrintStatus(account, a.store.Load(ctx, account))
	return nil
}
