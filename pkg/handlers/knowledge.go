package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/duahurufo/exeloka-engine/pkg/services"
)

// maxIngestionBatch bounds the number of sources one batch request may carry.
const maxIngestionBatch = 20

// KnowledgeHandler handles knowledge source ingestion.
type KnowledgeHandler struct {
	ingestion services.IngestionService
	logger    *zap.Logger
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(ingestion services.IngestionService, logger *zap.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{ingestion: ingestion, logger: logger}
}

// RegisterRoutes registers the knowledge handler's routes on the given mux.
func (h *KnowledgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/knowledge/sources", h.Ingest)
	mux.HandleFunc("POST /api/knowledge/sources/batch", h.IngestBatch)
}

// Ingest handles POST /api/knowledge/sources
// Ingests one piece of raw content into the knowledge base.
func (h *KnowledgeHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if _, ok := OwnerID(w, r, h.logger); !ok {
		return
	}

	var req services.IngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.ingestion.Ingest(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// BatchItemResponse reports the outcome of one item in a batch ingestion.
type BatchItemResponse struct {
	Title  string                    `json:"title"`
	Result *services.IngestionResult `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

// IngestBatch handles POST /api/knowledge/sources/batch
// Accepts a list of sources and ingests them with bounded provider
// concurrency. Individual failures do not abort the batch; each item reports
// its own outcome.
func (h *KnowledgeHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := OwnerID(w, r, h.logger); !ok {
		return
	}

	var reqs []*services.IngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if len(reqs) == 0 || len(reqs) > maxIngestionBatch {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_batch_size", "Batch must contain between 1 and 20 sources"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	results := h.ingestion.IngestBatch(r.Context(), reqs)

	items := make([]BatchItemResponse, len(results))
	succeeded := 0
	for i, result := range results {
		items[i] = BatchItemResponse{Title: result.Title, Result: result.Result}
		if result.Err != nil {
			items[i].Error = result.Err.Error()
			continue
		}
		succeeded++
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":     items,
		"succeeded": succeeded,
		"failed":    len(items) - succeeded,
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
