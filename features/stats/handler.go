package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/saurabh4269/website-content-search/internal/middleware"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
)

type VectorStore interface {
	CountChunks(ctx context.Context) (int, error)
}

type Handler struct {
	mode        retrieval.Mode
	vectorStore VectorStore
}

// NewHandler reports on the store in ModeStore. v is ignored and may be nil
// in ModeFallback.
func NewHandler(mode retrieval.Mode, v VectorStore) *Handler {
	return &Handler{mode: mode, vectorStore: v}
}

type StatsResponse struct {
	Mode   retrieval.Mode `json:"mode"`
	Chunks int            `json:"chunks"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	resp := StatsResponse{Mode: h.mode}

	if h.mode == retrieval.ModeStore && h.vectorStore != nil {
		count, err := h.vectorStore.CountChunks(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to count chunks", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "failed to count chunks", http.StatusInternalServerError)
			return
		}
		resp.Chunks = count
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
