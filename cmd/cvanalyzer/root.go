package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cv-analyzer/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "cvanalyzer",
	Short: "AI-powered CV analyzer and optimizer",
	Long:  "Extracts text from PDF or DOCX resumes, scores them against a job description with a hosted LLM, and rewrites them for a target job title.",
	// Running the binary without a subcommand starts the web UI.
	RunE:         runServe,
	SilenceUsage: true,
}

// buildDeps wires dependencies logging to logOut, or exits; startup failures
// are fatal.
func buildDeps(ctx context.Context, logOut io.Writer) app.Deps {
	deps, err := app.Build(ctx, logOut)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	return deps
}
