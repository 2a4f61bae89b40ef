// Package api exposes the statement pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finreview/statement-pipeline/internal/category"
	"github.com/finreview/statement-pipeline/internal/pipeline"
	"github.com/finreview/statement-pipeline/internal/statement"
)

// DefaultMaxUploadBytes caps statement uploads at 20 MB.
const DefaultMaxUploadBytes = 20 << 20

// Processor runs one uploaded statement through the pipeline.
type Processor interface {
	Process(ctx context.Context, pdfBytes []byte, password string) (*pipeline.Result, error)
}

// Handler serves the statement endpoints.
type Handler struct {
	processor Processor
	catalog   category.Store
	log       zerolog.Logger
	maxUpload int64
}

// NewHandler creates the HTTP handler set.
func NewHandler(processor Processor, catalog category.Store, log zerolog.Logger) *Handler {
	return &Handler{
		processor: processor,
		catalog:   catalog,
		log:       log.With().Str("component", "api").Logger(),
		maxUpload: DefaultMaxUploadBytes,
	}
}

// Register wires the routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/statements/parse", h.handleParse)
	mux.HandleFunc("GET /v1/categories", h.handleListCategories)
	mux.HandleFunc("GET /v1/categories/suggest", h.handleSuggest)
	mux.HandleFunc("GET /health", h.handleHealth)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.writeError(w, http.StatusBadRequest, errorResponse{Error: "expected multipart form with a \"file\" field"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errorResponse{Error: "missing \"file\" field"})
		return
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, errorResponse{Error: "failed to read uploaded file"})
		return
	}

	password := r.FormValue("password")

	result, err := h.processor.Process(r.Context(), pdfBytes, password)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list categories")
		h.writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to list categories"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.writeError(w, http.StatusBadRequest, errorResponse{Error: "missing \"q\" query parameter"})
		return
	}

	categories, err := h.catalog.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list categories")
		h.writeError(w, http.StatusInternalServerError, errorResponse{Error: "failed to list categories"})
		return
	}

	suggestions := category.NewMapper(categories).Suggest(q)
	if suggestions == nil {
		suggestions = []category.Suggestion{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writePipelineError maps pipeline failure codes onto HTTP statuses:
// password problems are the client's to fix, unusable documents are
// unprocessable, model failures are upstream errors.
func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	var pe *statement.PipelineError
	if errors.As(err, &pe) {
		resp.Error = pe.Message
		resp.Code = string(pe.Code)
		resp.Retryable = pe.Retryable
	}

	status := http.StatusInternalServerError
	switch statement.CodeOf(err) {
	case statement.ErrPasswordRequired, statement.ErrIncorrectPassword:
		status = http.StatusBadRequest
	case statement.ErrEmptyExtraction, statement.ErrExtractionFailed, statement.ErrShapeInvalid:
		status = http.StatusUnprocessableEntity
	case statement.ErrModelBlocked, statement.ErrEmptyResponse, statement.ErrInvalidResponse, statement.ErrModelUnavailable:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("statement processing failed")
	} else {
		h.log.Warn().Err(err).Msg("statement rejected")
	}

	h.writeError(w, status, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, resp errorResponse) {
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}
