package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/logger"
)

const (
	maxBodyBytes         = 1 << 20
	idempotencyKeyHeader = "Idempotency-Key"
)

// BookIngester is implemented by *publisher.Publisher.
type BookIngester interface {
	Ingest(ctx context.Context, req *ingestion.BookRequest) (*ingestion.BookResponse, error)
}

type Handler struct {
	ingester BookIngester
	logger   *slog.Logger
}

func New(ingester BookIngester) *Handler {
	return &Handler{
		ingester: ingester,
		logger:   slog.Default().With("component", "ingestion-handler"),
	}
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	req, ok := DecodeBookRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.ingester.Ingest(ctx, req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("ingestion failed",
			"error", err,
			"status_code", statusCode,
		)
		writeError(w, statusCode, "ingestion failed")
		return
	}
	log.Info("book accepted",
		"book_id", resp.BookID,
		"title", req.Title,
		"status", resp.Status,
	)
	WriteJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DecodeBookRequest reads and validates a BookRequest body. On failure it
// writes a 400 response and returns false.
func DecodeBookRequest(w http.ResponseWriter, r *http.Request) (*ingestion.BookRequest, bool) {
	var req ingestion.BookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get(idempotencyKeyHeader)
	}
	if err := validator.ValidateBookRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			WriteJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return nil, false
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

// WriteJSON encodes data as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
