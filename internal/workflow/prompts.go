package workflow

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("prompts").ParseFS(promptFS, "prompts/*.tmpl"))

type analysisPrompt struct {
	JobDescription string
	Resume         string
}

type optimizePrompt struct {
	JobTitle string
	Resume   string
}

// AnalysisPrompt embeds the job description and CV text verbatim.
func AnalysisPrompt(jobDescription, resume string) (string, error) {
	return renderPrompt("analysis.tmpl", analysisPrompt{JobDescription: jobDescription, Resume: resume})
}

// OptimizePrompt asks for an ATS-friendly rewrite targeting jobTitle.
func OptimizePrompt(jobTitle, resume string) (string, error) {
	return renderPrompt("optimize.tmpl", optimizePrompt{JobTitle: jobTitle, Resume: resume})
}

func renderPrompt(name string, data any) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
