package root

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMoodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mood <user-id> [label]",
		Short: "Show today's mood, or log one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openServices()
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				entry, err := svc.Moods.RecordMood(ctx, args[0], args[1], time.Time{})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "✅ logged %s for %s\n", entry.Mood, args[0])
				return nil
			}

			mood, ok, err := svc.Moods.TodayMood(ctx, args[0], time.Time{})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(out, "%s has not logged a mood today\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "%s feels %s today\n", args[0], mood)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <user-id>",
		Short: "Print the weekly parent report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openServices()
			if err != nil {
				return err
			}
			defer cleanup()

			rep, err := svc.Reports.Weekly(context.Background(), args[0], time.Time{})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
}
