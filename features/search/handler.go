package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/saurabh4269/website-content-search/internal/fetch"
	"github.com/saurabh4269/website-content-search/internal/middleware"
)

type Searcher interface {
	Search(ctx context.Context, req Request) ([]Result, error)
}

type Handler struct {
	service Searcher
}

func NewHandler(s Searcher) *Handler {
	return &Handler{service: s}
}

// Search accepts url, query and an optional limit as form fields or JSON.
// An unreachable page answers 200 with an empty list; the failure is logged.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	req, err := decodeRequest(r)
	if err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	slog.InfoContext(ctx, "search requested", "url", req.URL, "query", req.Query, "correlationId", correlationID)

	results, err := h.service.Search(ctx, req)
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) {
			slog.ErrorContext(ctx, "failed to fetch url", "error", err, "url", fetchErr.URL, "correlationId", correlationID)
			results = []Result{}
		} else {
			slog.ErrorContext(ctx, "search failed", "error", err, "correlationId", correlationID)
			h.writeError(ctx, w, "INTERNAL_ERROR", "search failed", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(results); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func decodeRequest(r *http.Request) (Request, error) {
	var req Request

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid JSON body")
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, errors.New("invalid form body")
	}
	req.URL = r.FormValue("url")
	req.Query = r.FormValue("query")
	if raw := r.FormValue("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, errors.New("limit must be an integer")
		}
		req.Limit = n
	}
	return req, nil
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
