// Package extract pulls plain text out of uploaded CV documents.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ErrUnsupportedFormat is returned for any extension other than .pdf and .docx.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Label is the upper-case name used in user-facing messages.
func (f Format) Label() string {
	return strings.ToUpper(string(f))
}

// Placeholder is returned in place of an empty extraction result.
func (f Format) Placeholder() string {
	switch f {
	case FormatPDF:
		return "No text could be extracted from the PDF."
	case FormatDOCX:
		return "No text could be extracted from the DOCX file."
	default:
		return "No text could be extracted."
	}
}

// Error reports a document that could not be opened or read.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("read %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message renders the error for display next to the extracted text.
func (e *Error) Message() string {
	return fmt.Sprintf("Error reading %s: %v", e.Format.Label(), e.Err)
}

// DetectFormat maps a file name to its format by extension, case-insensitively.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Extract returns the document text in reading order, trimmed of surrounding
// whitespace. An empty document yields the format's placeholder text. Read
// failures are returned as *Error.
func Extract(format Format, r io.ReaderAt, size int64) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case FormatPDF:
		text, err = readPDF(r, size)
	case FormatDOCX:
		text, err = readDOCX(r, size)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", &Error{Format: format, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return format.Placeholder(), nil
	}
	return text, nil
}

// ExtractFile detects the format of path from its extension and extracts it.
func ExtractFile(path string) (string, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Format: format, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &Error{Format: format, Err: err}
	}
	return Extract(format, f, info.Size())
}
