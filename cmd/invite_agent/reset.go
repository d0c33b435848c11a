package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/invite-agent/internal/types"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget recorded outcomes so the profiles are processed again",
		Long: `Removes records from the account's resume store. With --outcome only records
with that status are removed (repeatable), e.g. --outcome "No Invite Option".
Without it every record of the account is removed.`,
		Args: cobra.NoArgs,
		RunE: runResetCmd,
	}
	cmd.Flags().StringArray("outcome", nil, "Only remove records with this status (repeatable)")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
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

	names, _ := cmd.Flags().GetStringArray("outcome")
	outcomes := make([]types.Outcome, 0, len(names))
	for _, name := range names {
		o, err := types.ParseOutcome(name)
		if err != nil {
			return err
		}
		outcomes = append(outcomes, o)
	}

	if err := a.openStore(ctx); err != nil {
		return err
	}

	account := a.cfg.AccountName()
	removed, err := a.store.Reset(ctx, account, outcomes...)
	if err != nil {
		return err
	}
	a.logger.Info("reset resume store", "account", account, "removed", removed)
	a.printer.PrintReset(account, removed, outcomes)
	return nil
}
