package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind names the workflow a run belongs to.
type Kind string

const (
	KindAnalysis     Kind = "analysis"
	KindOptimization Kind = "optimization"
)

// Valid reports whether k is a known workflow kind.
func (k Kind) Valid() bool {
	return k == KindAnalysis || k == KindOptimization
}

// Outcome is the terminal state of a workflow run.
type Outcome string

const (
	OutcomeSucceeded         Outcome = "succeeded"
	OutcomeMissingFile       Outcome = "missing_file"
	OutcomeUnsupportedFormat Outcome = "unsupported_format"
	OutcomeExtractionFailed  Outcome = "extraction_failed"
	OutcomeInferenceFailed   Outcome = "inference_failed"
	OutcomeReportFailed      Outcome = "report_failed"
)

var ErrRunNotFound = errors.New("run not found")

// List limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Run is the history record of one workflow invocation.
type Run struct {
	ID        uuid.UUID `json:"id"`
	Kind      Kind      `json:"kind"`
	FileName  string    `json:"file_name"`
	Outcome   Outcome   `json:"outcome"`
	ReportID  string    `json:"report_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows ListRuns. Empty Kinds matches every kind.
type ListFilter struct {
	Kinds []Kind
	Limit int
}

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}

func (f ListFilter) kinds() []string {
	out := make([]string, 0, len(f.Kinds))
	for _, k := range f.Kinds {
		out = append(out, string(k))
	}
	return out
}

// Store persists run history. Runs are listed newest first.
type Store interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id uuid.UUID) (Run, error)
	ListRuns(ctx context.Context, filter ListFilter) ([]Run, error)
	Close() error
}
