// Package http exposes the analysis pipeline and attempt history over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/observability/logging"
	"explanation-coach-service/internal/observability/metrics"
	"explanation-coach-service/internal/service/chunker"
	"explanation-coach-service/internal/service/pipeline"
	"explanation-coach-service/internal/service/relevance"
	"explanation-coach-service/internal/store"
)

// maxBodyBytes bounds request bodies; source documents arrive inline.
const maxBodyBytes = 8 << 20

// Analyzer runs one analysis. *pipeline.Analyzer implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error)
}

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Analyzer     Analyzer
	History      store.Repository
	Windowing    chunker.Options
	TopK         int
	HistoryLimit int
}

type handler struct {
	deps    Deps
	metrics *metrics.Metrics
}

// ChunkRequest asks for a chunking preview of a document.
type ChunkRequest struct {
	Text         string `json:"text"`
	Mode         string `json:"mode,omitempty"` // words (default) or chars
	Query        string `json:"query,omitempty"`
	TopK         int    `json:"top_k,omitempty"`
	RelevantOnly bool   `json:"relevant_only,omitempty"`
}

// ChunkResponse lists the chunks of a document and, when a query was given,
// the ones selected for it.
type ChunkResponse struct {
	Mode     string               `json:"mode"`
	Count    int                  `json:"count"`
	Chunks   []models.Chunk       `json:"chunks"`
	Selected []models.ScoredChunk `json:"selected,omitempty"`
}

// HistoryResponse is a newest-first page of attempts.
type HistoryResponse struct {
	Count    int              `json:"count"`
	Attempts []models.Attempt `json:"attempts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Deps) http.Handler {
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = 20
	}
	if deps.Windowing.MaxSize <= 0 {
		deps.Windowing = chunker.DefaultWordOptions()
	}
	h := &handler{deps: deps, metrics: metrics.DefaultMetrics}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", h.analyze)
		r.Get("/history", h.history)
		r.Get("/history/{attemptID}", h.attempt)
		r.Post("/documents/chunk", h.chunk)
	})

	return r
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.deps.Analyzer.Analyze(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		logger := logging.WithRequest(middleware.GetReqID(r.Context()))
		logger.Error().
			Err(err).
			Int("status", status).
			Msg("Analysis request failed")
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	limit := h.deps.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	attempts := h.deps.History.LoadAll(r.Context(), limit)
	writeJSON(w, http.StatusOK, HistoryResponse{Count: len(attempts), Attempts: attempts})
}

func (h *handler) attempt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attemptID")
	a, ok := h.deps.History.LoadByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "attempt not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) chunk(w http.ResponseWriter, r *http.Request) {
	var req ChunkRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	opts := h.deps.Windowing
	if req.Mode != "" && chunker.ParseUnit(req.Mode) == chunker.UnitChars {
		opts = chunker.DefaultParagraphOptions()
	}

	chunks := chunker.Chunk(req.Text, opts)
	h.metrics.RecordChunks(opts.Unit.String(), len(chunks))

	resp := ChunkResponse{Mode: opts.Unit.String(), Count: len(chunks), Chunks: chunks}
	if strings.TrimSpace(req.Query) != "" {
		topK := req.TopK
		if topK <= 0 {
			topK = h.deps.TopK
		}
		if req.RelevantOnly {
			resp.Selected = relevance.SelectRelevant(req.Query, chunks, topK)
		} else {
			resp.Selected = relevance.Select(req.Query, chunks, topK)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// instrument records a request counter labelled by route pattern.
func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.RecordHTTPRequest(route, r.Method, status)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
