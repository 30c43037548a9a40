package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/history"
)

func newHistoryCmd(build buildFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved analyses",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, build, func(ctx context.Context, rt *runtime) error {
				entries, err := rt.History.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved analyses")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tSAVED\tSCORE\tFILENAME")
				for _, e := range entries {
					saved := time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339)
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.ID, saved, e.OverallScore, e.Filename)
				}
				return tw.Flush()
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved analysis as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, build, func(ctx context.Context, rt *runtime) error {
				entry, err := rt.History.Get(ctx, args[0])
				if errors.Is(err, history.ErrNotFound) {
					return fmt.Errorf("no saved analysis with id %q", args[0])
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), entry)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, build, func(ctx context.Context, rt *runtime) error {
				if err := rt.History.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}
