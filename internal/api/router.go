package api

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/middleware"
)

// NewRouter registers every catalog route and wraps the mux in the request
// ID, timeout and metrics middleware. checker and m may be nil.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, timeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/books", h.AddBook)
	mux.HandleFunc("GET /api/v1/filters", h.Filters)
	mux.HandleFunc("PUT /api/v1/filters/subjects/{subject}", h.HideSubject)
	mux.HandleFunc("DELETE /api/v1/filters/subjects/{subject}", h.RemoveSubject)
	mux.HandleFunc("GET /api/v1/filters/subjects/{subject}/valid", h.ValidateSubject)
	mux.HandleFunc("PUT /api/v1/filters/authors/{author}", h.HideAuthor)
	mux.HandleFunc("DELETE /api/v1/filters/authors/{author}", h.RemoveAuthor)
	mux.HandleFunc("GET /api/v1/filters/authors/{author}/valid", h.ValidateAuthor)

	// ?value= forms, needed for values a path segment cannot hold such as "".
	mux.HandleFunc("PUT /api/v1/filters/subjects", h.HideSubject)
	mux.HandleFunc("DELETE /api/v1/filters/subjects", h.RemoveSubject)
	mux.HandleFunc("GET /api/v1/filters/subjects/valid", h.ValidateSubject)
	mux.HandleFunc("PUT /api/v1/filters/authors", h.HideAuthor)
	mux.HandleFunc("DELETE /api/v1/filters/authors", h.RemoveAuthor)
	mux.HandleFunc("GET /api/v1/filters/authors/valid", h.ValidateAuthor)
	if checker != nil {
		mux.HandleFunc("GET /health/live", checker.LiveHandler())
		mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	}

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	if timeout > 0 {
		chain = middleware.Timeout(timeout)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
