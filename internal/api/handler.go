// Package api serves the catalog over HTTP: search, direct book adds, and
// hide/unhide/validate operations on subject and author filters.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion/handler"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/logger"
)

// Catalog is implemented by *service.Service.
type Catalog interface {
	Search(ctx context.Context, query string) []catalog.Entry
	HideSubject(ctx context.Context, subject string) error
	HideAuthor(ctx context.Context, author string) error
	RemoveSubject(ctx context.Context, subject string) error
	RemoveAuthor(ctx context.Context, author string) error
	ValidateSubject(subject string) bool
	ValidateAuthor(author string) bool
	Filters() (subjects, authors []string)
	Source(source string) catalog.Adder
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query     string          `json:"query"`
	TotalHits int             `json:"total_hits"`
	Results   []catalog.Entry `json:"results"`
}

// FiltersResponse is the body of GET /api/v1/filters.
type FiltersResponse struct {
	HiddenSubjects []string `json:"hidden_subjects"`
	HiddenAuthors  []string `json:"hidden_authors"`
}

// ValidationResponse is the body of the filter validation endpoints.
type ValidationResponse struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

type Handler struct {
	catalog      Catalog
	apiSource    catalog.Adder
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(c Catalog, defaultLimit, maxResults int) *Handler {
	return &Handler{
		catalog:      c,
		apiSource:    c.Source("api"),
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "catalog-handler"),
	}
}

// Search answers title queries. The q parameter may be absent or empty, in
// which case every visible entry matches. total_hits counts all matches
// before limit is applied.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	query := r.URL.Query().Get("q")

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	results := h.catalog.Search(ctx, query)
	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}
	log.Info("search completed",
		"query", query,
		"total_hits", total,
		"returned", len(results),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{Query: query, TotalHits: total, Results: results})
}

// AddBook appends one book to the catalog directly, bypassing Kafka.
func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	req, ok := ingesthandler.DecodeBookRequest(w, r)
	if !ok {
		return
	}
	h.apiSource.AddBook(req.Title, req.Author, req.Subjects)
	logger.FromContext(r.Context()).Info("book added", "title", req.Title, "author", req.Author)
	h.writeJSON(w, http.StatusCreated, req.Entry())
}

func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	subjects, authors := h.catalog.Filters()
	h.writeJSON(w, http.StatusOK, FiltersResponse{HiddenSubjects: subjects, HiddenAuthors: authors})
}

func (h *Handler) HideSubject(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "subject", h.catalog.HideSubject)
}

func (h *Handler) RemoveSubject(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "subject", h.catalog.RemoveSubject)
}

func (h *Handler) HideAuthor(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "author", h.catalog.HideAuthor)
}

func (h *Handler) RemoveAuthor(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "author", h.catalog.RemoveAuthor)
}

func (h *Handler) ValidateSubject(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, "subject", h.catalog.ValidateSubject)
}

func (h *Handler) ValidateAuthor(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, "author", h.catalog.ValidateAuthor)
}

// filterValue reads the filter from the {name} path segment or, on the
// collection routes, from the value query parameter. Only the query form can
// carry the empty string.
func filterValue(r *http.Request, name string) (string, bool) {
	if v := r.PathValue(name); v != "" {
		return v, true
	}
	q := r.URL.Query()
	if !q.Has("value") {
		return "", false
	}
	return q.Get("value"), true
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request, name string, check func(string) bool) {
	v, ok := filterValue(r, name)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "value query parameter is required")
		return
	}
	h.writeJSON(w, http.StatusOK, ValidationResponse{Value: v, Valid: check(v)})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, name string, op func(context.Context, string) error) {
	value, ok := filterValue(r, name)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "value query parameter is required")
		return
	}
	if err := op(r.Context(), value); err != nil {
		status := apperrors.HTTPStatusCode(err)
		logger.FromContext(r.Context()).Error("filter update failed", "value", value, "error", err, "status_code", status)
		h.writeError(w, status, "filter applied but could not be persisted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
