// Package server exposes the extraction pipeline over HTTP. Request-level
// problems (bad JSON, unknown document type, missing file) are HTTP errors;
// extraction outcomes, including failures, are always HTTP 200 envelopes so
// clients branch on the envelope's success flag, not the status code.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/infradyn/docextract/constants"
	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/pipeline"
)

type Handler struct {
	pipeline      *pipeline.Pipeline
	maxUploadSize int64
	logger        *slog.Logger
}

func NewHandler(p *pipeline.Pipeline, maxUploadSize int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = 32 << 20
	}
	return &Handler{pipeline: p, maxUploadSize: maxUploadSize, logger: logger}
}

// Router builds the HTTP surface.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	// Propagate the edge request id so downstream client logs correlate.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := common.WithRequestID(req.Context(), middleware.GetReqID(req.Context()))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/healthz", h.health)
	r.Route("/extraction", func(r chi.Router) {
		r.Post("/document", h.extractDocument)
		r.Post("/upload", h.extractUpload)
		r.Post("/milestones", h.extractMilestones)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type documentRequest struct {
	FileURL      string `json:"file_url"`
	DocumentType string `json:"document_type"`
}

func (h *Handler) extractDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FileURL == "" {
		h.httpError(w, http.StatusBadRequest, "file_url is required")
		return
	}
	if req.DocumentType == "" {
		req.DocumentType = string(constants.PurchaseOrder)
	}
	docType, okType := constants.ParseDocumentType(req.DocumentType)
	if !okType {
		h.httpError(w, http.StatusBadRequest, "unknown document_type: "+req.DocumentType)
		return
	}

	var res pipeline.Result
	switch docType {
	case constants.Invoice:
		res = h.pipeline.ExtractInvoice(r.Context(), req.FileURL)
	case constants.Milestone:
		res = h.pipeline.ExtractMilestones(r.Context(), req.FileURL)
	default:
		res = h.pipeline.ExtractPurchaseOrder(r.Context(), req.FileURL)
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) extractUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.httpError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		h.httpError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	typeValue := r.FormValue("document_type")
	if typeValue == "" {
		typeValue = string(constants.PurchaseOrder)
	}
	docType, okType := constants.ParseDocumentType(typeValue)
	if !okType {
		// Unknown type on the upload path reports through the envelope, same
		// as every other extraction outcome.
		h.writeJSON(w, http.StatusOK, pipeline.Result{
			Success: false,
			Error:   "Unknown document type: " + typeValue,
		})
		return
	}

	res := h.pipeline.ExtractFromBytes(r.Context(), content, header.Filename, docType)
	h.writeJSON(w, http.StatusOK, res)
}

type milestonesRequest struct {
	FileURL string `json:"file_url"`
}

func (h *Handler) extractMilestones(w http.ResponseWriter, r *http.Request) {
	var req milestonesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FileURL == "" {
		h.httpError(w, http.StatusBadRequest, "file_url is required")
		return
	}
	h.writeJSON(w, http.StatusOK, h.pipeline.ExtractMilestones(r.Context(), req.FileURL))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("server.write_response_error", "error", err)
	}
}

func (h *Handler) httpError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
