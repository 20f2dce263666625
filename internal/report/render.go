// Package report renders analysis text into a downloadable PDF.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	// Title is printed at the top of every report.
	Title = "Analysis Report"

	emptyReportText = "No analysis report to convert."

	fontFamily    = "Helvetica"
	titleFontSize = 18
	bodyFontSize  = 10
	bodyLineMM    = 5
	spacerMM      = 12 * 25.4 / 72 // 12pt
	marginMM      = 25.4
)

// Renderer lays out report text on Letter pages.
type Renderer struct{}

// NewRenderer returns a Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces a PDF with the title, a spacer and text as one paragraph.
// Newlines in text become line breaks; long lines wrap and flow onto new
// pages. Text is drawn literally.
func (r *Renderer) Render(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		text = emptyReportText
	}

	doc := fpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(marginMM, marginMM, marginMM)
	doc.SetAutoPageBreak(true, marginMM)
	doc.SetTitle(Title, true)
	doc.AddPage()

	// Core fonts cover cp1252 only; model output is UTF-8.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont(fontFamily, "B", titleFontSize)
	doc.CellFormat(0, 10, Title, "", 1, "C", false, 0, "")
	doc.Ln(spacerMM)

	doc.SetFont(fontFamily, "", bodyFontSize)
	doc.MultiCell(0, bodyLineMM, tr(normalizeNewlines(text)), "", "L", false)

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
