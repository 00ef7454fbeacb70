package root

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage activities, challenges and rewards",
	}
	cmd.AddCommand(newCatalogImportCmd(), newCatalogListCmd())
	return cmd
}

func newCatalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Validate and upsert a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, cleanup, err := openServices()
			if err != nil {
				return err
			}
			defer cleanup()

			sum, err := svc.Catalog.Import(context.Background(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d activities, %d challenges, %d rewards\n",
				sum.Activities, sum.Challenges, sum.Rewards)
			return nil
		},
	}
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openServices()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			acts, err := svc.Catalog.Activities(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "🧘 Activities")
			for _, a := range acts {
				fmt.Fprintf(out, "- %s  %s [%s] %d★ %ds\n", a.ID, a.Title, a.MoodTag, a.StarReward, a.DurationSeconds)
			}

			chs, err := svc.Catalog.Challenges(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\n🏆 Challenges")
			for _, c := range chs {
				fmt.Fprintf(out, "- %s  %s [%s] %d★\n", c.ID, c.Title, c.MoodTag, c.StarReward)
			}

			rewards, err := svc.Catalog.Rewards(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\n🎁 Rewards")
			for _, r := range rewards {
				fmt.Fprintf(out, "- %s  %s (%s) %d★\n", r.ID, r.Title, r.Type, r.Cost)
			}
			return nil
		},
	}
}
