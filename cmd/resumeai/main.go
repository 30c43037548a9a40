// Command resumeai analyzes resumes from the terminal using the same
// pipeline and history storage as the API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/analyses"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/bootstrap"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/history"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/config"
)

// runtime is what subcommands need from the wired application.
type runtime struct {
	Service *analyses.Service
	History history.Store
	Close   func() error
}

type buildFunc func(ctx context.Context) (*runtime, error)

func buildFromConfig(ctx context.Context) (*runtime, error) {
	app, err := bootstrap.Build(ctx, config.Load(), bootstrap.Options{SkipRouter: true})
	if err != nil {
		return nil, err
	}
	return &runtime{Service: app.AnalysesService, History: app.History, Close: app.Close}, nil
}

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "resumeai",
		Short:         "Resume analysis from the command line",
		Long:          "resumeai extracts text from PDF, DOCX or plain-text resumes, scores them with the configured model and manages saved analyses.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newAnalyzeCmd(build),
		newImproveCmd(build),
		newHistoryCmd(build),
		newPromptCmd(),
	)
	return root
}

// withRuntime builds the runtime for one command invocation and closes it afterwards.
func withRuntime(cmd *cobra.Command, build buildFunc, fn func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := build(ctx)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if rt.Close != nil {
		defer rt.Close()
	}
	return fn(ctx, rt)
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(buildFromConfig).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
