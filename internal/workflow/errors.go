package workflow

import (
	"errors"
	"fmt"
)

// ErrNoFile is the result error when a workflow runs without an upload.
var ErrNoFile = errors.New("no file uploaded")

// InferenceError wraps a failed model call.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// ReportError wraps a failure to render or store the PDF report.
type ReportError struct {
	Err error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report: %v", e.Err)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}
