package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cv-analyzer/internal/store"
)

var (
	optimizeFile     string
	optimizeJobTitle string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Rewrite a resume for a job title",
	Long:  "Extracts the resume text and asks the model for an ATS-friendly rewrite targeting the job title.",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeFile, "file", "f", "", "resume to optimize (.pdf or .docx)")
	optimizeCmd.Flags().StringVarP(&optimizeJobTitle, "job-title", "t", "", "target job title")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	up, err := loadUpload(optimizeFile)
	if err != nil {
		return err
	}

	deps := buildDeps(cmd.Context(), cmd.ErrOrStderr())
	defer deps.Close()

	res := deps.Workflows.Optimize(cmd.Context(), up, optimizeJobTitle)
	fmt.Fprintln(cmd.OutOrStdout(), res.OptimizedResume)

	if res.Outcome != store.OutcomeSucceeded {
		return fmt.Errorf("optimization %s", res.Outcome)
	}
	return nil
}
