package root

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	var entries int
	cmd := &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's stars and recent ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openServices()
			if err != nil {
				return err
			}
			defer cleanup()

			bal, err := svc.Ledger.Balance(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "⭐ %s has %d stars\n", args[0], bal)
			if entries <= 0 {
				return nil
			}

			list, err := svc.Ledger.Entries(ctx, args[0], entries)
			if err != nil {
				return err
			}
			for _, e := range list {
				fmt.Fprintf(out, "- %s %+d -> %d (%s %s)\n", e.CreatedAt.Format("2006-01-02 15:04"), e.Delta, e.BalanceAfter, e.Reason, e.RefID)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&entries, "entries", "n", 10, "number of ledger entries to show")
	return cmd
}

func newGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <user-id> <stars>",
		Short: "Credit (or with a negative amount, debit) stars",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("stars must be an integer: %w", err)
			}

			svc, cleanup, err := openServices()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			var bal int
			if amount < 0 {
				bal, err = svc.Ledger.Debit(ctx, args[0], -amount)
			} else {
				bal, err = svc.Ledger.Credit(ctx, args[0], amount)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s now has %d stars\n", args[0], bal)
			return nil
		},
	}
}
