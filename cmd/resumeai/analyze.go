package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/extract"
)

func newAnalyzeCmd(build buildFunc) *cobra.Command {
	var (
		save     bool
		asText   bool
		filename string
	)
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a resume file and print the result as JSON",
		Long:  "Analyze extracts text from a .pdf, .docx, .doc or .txt file (or stdin with \"-\") and prints the validated analysis. Use --raw to treat the input as pasted text, running PDF text recovery when it looks like raw PDF content.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if filename != "" {
				name = filename
			}
			return withRuntime(cmd, build, func(ctx context.Context, rt *runtime) error {
				in := analyses.AnalyzeInput{Filename: name, Save: save}
				if asText {
					raw := string(data)
					in.Raw = raw
					in.IsPDFLike = extract.IsPDFLike(raw)
				} else {
					doc, err := extract.FromBytes(ctx, data, "", name)
					if err != nil {
						return fmt.Errorf("extract %s: %w", name, err)
					}
					in.Text = doc.Text
				}
				outcome, err := rt.Service.Analyze(ctx, in)
				if err != nil {
					return err
				}
				if outcome.IsSample {
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning: model quota exceeded; showing sample data")
				}
				if outcome.Degraded {
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning: little text could be recovered; results may be unreliable")
				}
				return writeJSON(cmd.OutOrStdout(), outcome)
			})
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Save the result to history")
	cmd.Flags().BoolVar(&asText, "raw", false, "Treat the input as pasted text instead of a document")
	cmd.Flags().StringVar(&filename, "name", "", "Filename recorded in history (defaults to the input file name)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin.txt", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input file: %w", err)
	}
	return data, filepath.Base(path), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
