// Package web serves the two-tab CV analyzer UI and its JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cv-analyzer/internal/httputil"
	"cv-analyzer/internal/storage"
	"cv-analyzer/internal/store"
	"cv-analyzer/internal/workflow"
)

// Room for the text fields sent alongside the file.
const formOverhead = 1 << 20

// ReportFileName is the download name of every analysis report.
const ReportFileName = "analysis_report.pdf"

// Workflows runs the analysis and optimization pipelines.
type Workflows interface {
	Analyze(ctx context.Context, up *workflow.Upload, jobDescription string) workflow.AnalysisResult
	Optimize(ctx context.Context, up *workflow.Upload, jobTitle string) workflow.OptimizationResult
}

// ReportOpener reads stored reports.
type ReportOpener interface {
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Workflows      Workflows
	Reports        ReportOpener
	Runs           store.Store
	Log            *slog.Logger
	MaxUploadSize  int64
	RequestTimeout time.Duration
}

// NewRouter registers the page, API and health routes.
func NewRouter(deps Deps) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.RequestTimeout)

	r.Get("/", indexHandler(deps.Log))
	r.Post("/api/analyze", analyzeHandler(deps))
	r.Post("/api/optimize", optimizeHandler(deps))
	r.Get("/api/reports/{id}", reportHandler(deps))
	r.Get("/api/runs", listRunsHandler(deps))
	r.Get("/api/runs/{id}", getRunHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}

type analyzeResponse struct {
	RunID         string `json:"run_id"`
	Outcome       string `json:"outcome"`
	ExtractedText string `json:"extracted_text"`
	Analysis      string `json:"analysis"`
	ReportURL     string `json:"report_url,omitempty"`
}

type optimizeResponse struct {
	RunID           string `json:"run_id"`
	Outcome         string `json:"outcome"`
	OptimizedResume string `json:"optimized_resume"`
}

func analyzeHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, file, ok := readUpload(deps, w, r)
		if !ok {
			return
		}
		if file != nil {
			defer file.Close()
		}

		res := deps.Workflows.Analyze(r.Context(), up, r.FormValue("job_description"))
		resp := analyzeResponse{
			RunID:         res.RunID.String(),
			Outcome:       string(res.Outcome),
			ExtractedText: res.ExtractedText,
			Analysis:      res.Analysis,
		}
		if res.Report != nil {
			resp.ReportURL = "/api/reports/" + res.Report.ID.String()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func optimizeHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		up, file, ok := readUpload(deps, w, r)
		if !ok {
			return
		}
		if file != nil {
			defer file.Close()
		}

		res := deps.Workflows.Optimize(r.Context(), up, r.FormValue("job_title"))
		httputil.WriteJSON(w, http.StatusOK, optimizeResponse{
			RunID:           res.RunID.String(),
			Outcome:         string(res.Outcome),
			OptimizedResume: res.OptimizedResume,
		})
	}
}

// readUpload parses the multipart form. A request without a file yields a
// nil upload; the workflow reports that to the user.
func readUpload(deps Deps, w http.ResponseWriter, r *http.Request) (*workflow.Upload, multipart.File, bool) {
	maxFileSize := deps.MaxUploadSize

	// Validate size before parsing
	if r.ContentLength > maxFileSize+formOverhead {
		httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusRequestEntityTooLarge)
		return nil, nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+formOverhead)

	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), err, http.StatusRequestEntityTooLarge)
			return nil, nil, false
		}
		httputil.Fail(deps.Log, w, "invalid multipart form", err, http.StatusBadRequest)
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, true
	}
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid file field", err, http.StatusBadRequest)
		return nil, nil, false
	}

	if header.Size > maxFileSize {
		file.Close()
		httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusRequestEntityTooLarge)
		return nil, nil, false
	}

	return &workflow.Upload{FileName: header.Filename, Content: file, Size: header.Size}, file, true
}

type idParam struct {
	ID string `validate:"required,uuid"`
}

func parseID(deps Deps, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	param := idParam{ID: chi.URLParam(r, "id")}
	if err := httputil.Validator.Struct(&param); err != nil {
		httputil.ValidationError(deps.Log, w, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(param.ID)
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid id", err, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func reportHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(deps, w, r)
		if !ok {
			return
		}

		rc, err := deps.Reports.Open(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			httputil.Fail(deps.Log, w, "report not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to open report", err, http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ReportFileName))
		if _, err := io.Copy(w, rc); err != nil {
			deps.Log.Error("failed to copy report", "report_id", id, "err", err)
		}
	}
}

type listRunsQuery struct {
	Kind  string `validate:"omitempty,oneof=analysis optimization"`
	Limit int    `validate:"gte=0,lte=100"`
}

func listRunsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := listRunsQuery{Kind: r.URL.Query().Get("kind")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				httputil.Fail(deps.Log, w, "invalid limit", err, http.StatusBadRequest)
				return
			}
			q.Limit = limit
		}
		if err := httputil.Validator.Struct(&q); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		filter := store.ListFilter{Limit: q.Limit}
		if q.Kind != "" {
			filter.Kinds = []store.Kind{store.Kind(q.Kind)}
		}
		runs, err := deps.Runs.ListRuns(r.Context(), filter)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list runs", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

func getRunHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(deps, w, r)
		if !ok {
			return
		}
		run, err := deps.Runs.GetRun(r.Context(), id)
		if errors.Is(err, store.ErrRunNotFound) {
			httputil.Fail(deps.Log, w, "run not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to get run", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, run)
	}
}
