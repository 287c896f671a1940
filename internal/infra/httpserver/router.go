package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/bizverify/internal/application/analysis"
	"github.com/bryanwahyu/bizverify/internal/application/documents"
	domain "github.com/bryanwahyu/bizverify/internal/domain/verification"
	"github.com/bryanwahyu/bizverify/internal/middleware"
)

const sessionHeader = "Client-Session-ID"

type Router struct {
	analysisSvc *analysis.Service
	docsSvc     *documents.Service
}

func NewRouter(analysisSvc *analysis.Service, docsSvc *documents.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{analysisSvc: analysisSvc, docsSvc: docsSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", sessionHeader},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 1))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Post("/run_analysis", r.wrap(r.handleRunAnalysis))
	mux.Post("/upload_document", r.wrap(r.handleUploadDocument))
	mux.Post("/remove_document", r.wrap(r.handleRemoveDocument))
	mux.Get("/session_info/{session_id}", r.wrap(r.handleSessionInfo))
	mux.Get("/runs/latest", r.wrap(r.handleLatestRuns))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks client-side input problems so wrap can map them to 400.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return badRequestError{err: err} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br badRequestError
			if errors.As(err, &br) {
				writeJSONError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /run_analysis
// Form: business_details_json, documents_json. Header: Client-Session-ID,
// optional: an absent header gets a generated session, echoed back in the
// response header. 200 carries the parsed analysis result; a run that
// produced nothing parseable maps to 500. Unparseable input maps to 400.
func (r *Router) handleRunAnalysis(w http.ResponseWriter, req *http.Request) error {
	sessionID := req.Header.Get(sessionHeader)
	if sessionID != "" {
		if err := middleware.ValidateSessionID(sessionID); err != nil {
			return badRequest(err)
		}
	}

	if err := req.ParseForm(); err != nil {
		return badRequest(err)
	}
	detailsJSON := req.FormValue("business_details_json")
	docsJSON := req.FormValue("documents_json")

	details, err := domain.ParseBusinessDetails(detailsJSON)
	if err != nil {
		return badRequest(err)
	}
	if details.BusinessWebsite != "" {
		if err := middleware.ValidateURL(details.BusinessWebsite); err != nil {
			return badRequest(err)
		}
	}
	docs, err := domain.ParseDocumentRefs(docsJSON)
	if err != nil {
		return badRequest(err)
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	result, runErr := r.analysisSvc.Run(req.Context(), analysis.Command{
		SessionID:           sessionID,
		BusinessDetailsJSON: detailsJSON,
		Details:             details,
		Documents:           docs,
	})
	middleware.DecrementAnalysesRunning()
	if runErr != nil {
		middleware.IncrementAnalysesFailed()
	}

	// the ended/failed status event goes to the log, not the response body
	if result != nil {
		w.Header().Set(sessionHeader, result.Session.ID)
		logStatus(domain.StatusPayload(result.Session.ID, result.Parsed, result.Duration, runErr))
	}

	if runErr != nil {
		return runErr
	}
	return writeJSON(w, result.Parsed)
}

func logStatus(payload map[string]string) {
	attrs := make([]any, 0, len(payload)*2)
	for k, v := range payload {
		attrs = append(attrs, k, v)
	}
	slog.Info("analysis status", attrs...)
}

// POST /upload_document
// Form: contents (base64), mime_type, file_name, sub_dir.
func (r *Router) handleUploadDocument(w http.ResponseWriter, req *http.Request) error {
	sessionID := req.Header.Get(sessionHeader)
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		return badRequest(err)
	}
	if err := req.ParseForm(); err != nil {
		return badRequest(err)
	}

	category := middleware.SanitizeString(req.FormValue("sub_dir"))
	fileName := middleware.SanitizeString(req.FormValue("file_name"))
	mimeType := req.FormValue("mime_type")
	contents := req.FormValue("contents")

	if err := middleware.ValidateCategory(category); err != nil {
		return badRequest(err)
	}
	if fileName == "" {
		return badRequest(errors.New("file_name is required"))
	}

	url, err := r.docsSvc.Upload(req.Context(), sessionID, category, fileName, contents, mimeType)
	if err != nil {
		if errors.Is(err, documents.ErrInvalidInput) {
			return badRequest(err)
		}
		return err
	}

	return writeJSON(w, map[string]string{
		"status":    "uploaded",
		"file_name": fileName,
		"sub_dir":   category,
		"url":       url,
	})
}

// POST /remove_document
// Form: file_name, sub_dir.
func (r *Router) handleRemoveDocument(w http.ResponseWriter, req *http.Request) error {
	sessionID := req.Header.Get(sessionHeader)
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		return badRequest(err)
	}
	if err := req.ParseForm(); err != nil {
		return badRequest(err)
	}

	category := middleware.SanitizeString(req.FormValue("sub_dir"))
	fileName := middleware.SanitizeString(req.FormValue("file_name"))
	if err := middleware.ValidateCategory(category); err != nil {
		return badRequest(err)
	}
	if fileName == "" {
		return badRequest(errors.New("file_name is required"))
	}

	if err := r.docsSvc.Remove(req.Context(), sessionID, category, fileName); err != nil {
		return err
	}

	return writeJSON(w, map[string]string{
		"status":    "removed",
		"file_name": fileName,
		"sub_dir":   category,
	})
}

// GET /session_info/{session_id}
func (r *Router) handleSessionInfo(w http.ResponseWriter, req *http.Request) error {
	sessionID := chi.URLParam(req, "session_id")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		return badRequest(err)
	}

	refs, err := r.docsSvc.ListSession(req.Context(), sessionID)
	if err != nil {
		return err
	}

	return writeJSON(w, map[string]any{
		"session_id": sessionID,
		"documents":  refs,
	})
}

// GET /runs/latest?limit=20
func (r *Router) handleLatestRuns(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	runs, err := r.analysisSvc.LatestRuns(req.Context(), limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*domain.AnalysisRun{}
	}
	return writeJSON(w, runs)
}
