package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageTitle is the heading shown above both tabs.
const PageTitle = "AI-powered CV Analyzer and Optimizer"

type pageData struct {
	Title        string
	Accept       string
	AnalyzePath  string
	OptimizePath string
}

func indexHandler(log *slog.Logger) http.HandlerFunc {
	data := pageData{
		Title:        PageTitle,
		Accept:       ".pdf,.docx",
		AnalyzePath:  "/api/analyze",
		OptimizePath: "/api/optimize",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := indexTemplate.Execute(&buf, data); err != nil {
			log.Error("render index failed", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := buf.WriteTo(w); err != nil {
			log.Warn("index write failed", "err", err)
		}
	}
}
