package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/extract"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/llm"
)

func newPromptCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "prompt <file>",
		Short: "Print the prompt that would be sent to the model",
		Long:  "Prompt renders the analysis prompt for a resume file, or the field improvement prompt when --field is set. No model call is made.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if field != "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), llm.BuildFieldImprovementPrompt(field, string(data)))
				return err
			}
			doc, err := extract.FromBytes(cmd.Context(), data, "", name)
			if err != nil {
				return fmt.Errorf("extract %s: %w", name, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), llm.BuildAnalysisPrompt(doc.Text))
			return err
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "Render the improvement prompt for this field instead")
	return cmd
}
