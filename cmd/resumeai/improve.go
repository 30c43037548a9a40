package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newImproveCmd(build buildFunc) *cobra.Command {
	var field, content string
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Rewrite one resume field with the model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, build, func(ctx context.Context, rt *runtime) error {
				improved, err := rt.Service.ImproveField(ctx, field, content)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), improved)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "Field name, e.g. summary or experience (required)")
	cmd.Flags().StringVar(&content, "content", "", "Current field content (required)")
	_ = cmd.MarkFlagRequired("field")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}
