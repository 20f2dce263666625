// Package workflow runs the two user-facing pipelines: CV analysis against a
// job description and resume optimization for a job title.
package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cv-analyzer/internal/extract"
	"cv-analyzer/internal/llm"
	"cv-analyzer/internal/report"
	"cv-analyzer/internal/store"
)

// User-facing messages.
const (
	MsgNoCV             = "Please upload a CV file."
	MsgNoResume         = "Please upload a resume file."
	MsgUnsupported      = "Unsupported file format. Please upload a PDF or DOCX file."
	MsgExtractionFailed = "Error during text extraction. Please check the file."
	ReportHeader        = "--- Analysis Report ---\n"
)

// Default output bounds.
const (
	DefaultAnalysisMaxTokens = 512
	DefaultOptimizeMaxTokens = 1024
)

// Upload is a document received from the user. It is read once and never retained.
type Upload struct {
	FileName string
	Content  io.ReaderAt
	Size     int64
}

// NewUpload wraps in-memory file contents.
func NewUpload(fileName string, data []byte) *Upload {
	return &Upload{FileName: fileName, Content: bytes.NewReader(data), Size: int64(len(data))}
}

// ReportCreator renders and stores an analysis report.
type ReportCreator interface {
	Create(ctx context.Context, text string) (report.Artifact, error)
}

// Options bound the model output per workflow.
type Options struct {
	AnalysisMaxTokens int
	OptimizeMaxTokens int
}

// Service runs both workflows against one inference client.
type Service struct {
	llm     llm.Client
	reports ReportCreator
	runs    store.Store
	opts    Options
	log     *slog.Logger
}

// NewService wires a Service. A nil runs store disables history.
func NewService(client llm.Client, reports ReportCreator, runs store.Store, opts Options, log *slog.Logger) *Service {
	if opts.AnalysisMaxTokens <= 0 {
		opts.AnalysisMaxTokens = DefaultAnalysisMaxTokens
	}
	if opts.OptimizeMaxTokens <= 0 {
		opts.OptimizeMaxTokens = DefaultOptimizeMaxTokens
	}
	if runs == nil {
		runs = store.NewNopStore()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{llm: client, reports: reports, runs: runs, opts: opts, log: log}
}

// AnalysisResult is what the analysis tab shows.
type AnalysisResult struct {
	RunID         uuid.UUID
	Outcome       store.Outcome
	ExtractedText string
	Analysis      string
	Report        *report.Artifact
	Err           error
}

// OptimizationResult is what the optimizer tab shows.
type OptimizationResult struct {
	RunID           uuid.UUID
	Outcome         store.Outcome
	OptimizedResume string
	Err             error
}

// Analyze extracts the CV, asks the model to assess it against jobDescription
// and renders the answer into a PDF report. Failures are reported through the
// result, never as a Go error.
func (s *Service) Analyze(ctx context.Context, up *Upload, jobDescription string) (res AnalysisResult) {
	start := time.Now()
	res.RunID = uuid.New()
	defer func() {
		s.record(ctx, store.KindAnalysis, res.RunID, up, res.Outcome, res.Err, reportID(res.Report), start)
	}()

	if up == nil {
		res.Outcome = store.OutcomeMissingFile
		res.ExtractedText = MsgNoCV
		res.Err = ErrNoFile
		return res
	}

	text, err := extractUpload(up)
	if err != nil {
		res.Err = err
		res.Outcome, res.ExtractedText = extractionOutcome(err)
		if res.Outcome == store.OutcomeExtractionFailed {
			res.Analysis = MsgExtractionFailed
		}
		return res
	}
	res.ExtractedText = text

	prompt, err := AnalysisPrompt(jobDescription, text)
	if err != nil {
		res.Outcome = store.OutcomeInferenceFailed
		res.Err = &InferenceError{Err: err}
		res.Analysis = "Analysis Error: " + err.Error()
		return res
	}

	inferStart := time.Now()
	answer, err := s.llm.Generate(ctx, prompt, s.opts.AnalysisMaxTokens)
	s.log.Debug("analysis inference finished", "run_id", res.RunID, "duration_ms", time.Since(inferStart).Milliseconds())
	if err != nil {
		res.Outcome = store.OutcomeInferenceFailed
		res.Err = &InferenceError{Err: err}
		res.Analysis = "Analysis Error: " + err.Error()
		return res
	}

	reportText := ReportHeader + answer
	artifact, err := s.reports.Create(ctx, reportText)
	if err != nil {
		res.Outcome = store.OutcomeReportFailed
		res.Err = &ReportError{Err: err}
		res.Analysis = "Analysis Error: " + err.Error()
		return res
	}

	res.Outcome = store.OutcomeSucceeded
	res.Analysis = reportText
	res.Report = &artifact
	return res
}

// Optimize extracts the resume and asks the model to rewrite it for jobTitle.
func (s *Service) Optimize(ctx context.Context, up *Upload, jobTitle string) (res OptimizationResult) {
	start := time.Now()
	res.RunID = uuid.New()
	defer func() {
		s.record(ctx, store.KindOptimization, res.RunID, up, res.Outcome, res.Err, "", start)
	}()

	if up == nil {
		res.Outcome = store.OutcomeMissingFile
		res.OptimizedResume = MsgNoResume
		res.Err = ErrNoFile
		return res
	}

	text, err := extractUpload(up)
	if err != nil {
		res.Err = err
		res.Outcome, res.OptimizedResume = extractionOutcome(err)
		return res
	}

	prompt, err := OptimizePrompt(jobTitle, text)
	if err != nil {
		return s.optimizeFailed(res, err)
	}
	answer, err := s.llm.Generate(ctx, prompt, s.opts.OptimizeMaxTokens)
	if err != nil {
		return s.optimizeFailed(res, err)
	}
	res.Outcome = store.OutcomeSucceeded
	res.OptimizedResume = answer
	return res
}

func (s *Service) optimizeFailed(res OptimizationResult, err error) OptimizationResult {
	res.Outcome = store.OutcomeInferenceFailed
	res.Err = &InferenceError{Err: err}
	res.OptimizedResume = "Error processing resume: " + err.Error()
	return res
}

func extractUpload(up *Upload) (string, error) {
	format, err := extract.DetectFormat(up.FileName)
	if err != nil {
		return "", err
	}
	if up.Content == nil {
		return "", &extract.Error{Format: format, Err: errors.New("empty upload")}
	}
	return extract.Extract(format, up.Content, up.Size)
}

// extractionOutcome maps an extraction failure to its outcome and the text
// shown in place of the extracted content.
func extractionOutcome(err error) (store.Outcome, string) {
	var extErr *extract.Error
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return store.OutcomeUnsupportedFormat, MsgUnsupported
	case errors.As(err, &extErr):
		return store.OutcomeExtractionFailed, extErr.Message()
	default:
		return store.OutcomeExtractionFailed, fmt.Sprintf("Error reading file: %v", err)
	}
}

func reportID(a *report.Artifact) string {
	if a == nil {
		return ""
	}
	return a.ID.String()
}

func (s *Service) record(ctx context.Context, kind store.Kind, id uuid.UUID, up *Upload, outcome store.Outcome, runErr error, reportID string, start time.Time) {
	run := store.Run{
		ID:        id,
		Kind:      kind,
		Outcome:   outcome,
		ReportID:  reportID,
		CreatedAt: start.UTC(),
	}
	if up != nil {
		run.FileName = up.FileName
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	attrs := []any{"run_id", id, "kind", kind, "outcome", outcome, "duration_ms", time.Since(start).Milliseconds()}
	if runErr != nil && outcome != store.OutcomeMissingFile {
		s.log.Warn("workflow finished", append(attrs, "err", runErr)...)
	} else {
		s.log.Info("workflow finished", attrs...)
	}

	// History survives a cancelled request.
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.Error("failed to record run", "run_id", id, "err", err)
	}
}
