package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cv-analyzer/internal/store"
	"cv-analyzer/internal/workflow"
)

var (
	analyzeFile           string
	analyzeJobDescription string
	analyzeOut            string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CV against a job description",
	Long:  "Extracts the CV text, asks the model for a summary, assessment and 0-10 score, and writes the PDF report.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "CV to analyze (.pdf or .docx)")
	analyzeCmd.Flags().StringVarP(&analyzeJobDescription, "job-description", "j", "", "job description text")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "also copy the PDF report to this path")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	up, err := loadUpload(analyzeFile)
	if err != nil {
		return err
	}

	deps := buildDeps(cmd.Context(), cmd.ErrOrStderr())
	defer deps.Close()

	res := deps.Workflows.Analyze(cmd.Context(), up, analyzeJobDescription)
	printAnalysis(cmd.OutOrStdout(), res)

	if res.Outcome != store.OutcomeSucceeded {
		return fmt.Errorf("analysis %s", res.Outcome)
	}
	if analyzeOut == "" {
		return nil
	}

	rc, err := deps.Reports.Open(cmd.Context(), res.Report.ID)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer rc.Close()
	if err := writeFile(analyzeOut, rc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", analyzeOut)
	return nil
}

// loadUpload reads path into memory. An empty path means no file was given.
func loadUpload(path string) (*workflow.Upload, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return workflow.NewUpload(path, data), nil
}

func printAnalysis(w io.Writer, res workflow.AnalysisResult) {
	fmt.Fprintf(w, "Extracted CV Content:\n%s\n\n", res.ExtractedText)
	if res.Analysis != "" {
		fmt.Fprintf(w, "%s\n", res.Analysis)
	}
	if res.Report != nil {
		fmt.Fprintf(w, "\nReport ID: %s\n", res.Report.ID)
	}
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
