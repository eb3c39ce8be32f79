// Package service coordinates the catalog engine with filter persistence and
// metrics. HTTP handlers, the Kafka consumer and the startup loader all go
// through it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/filterstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/metrics"
)

// FilterStore persists hidden filter values.
type FilterStore interface {
	Add(ctx context.Context, kind catalog.FilterKind, value string) error
	Remove(ctx context.Context, kind catalog.FilterKind, value string) error
	Load(ctx context.Context) (filterstore.Snapshot, error)
}

// Service is safe for concurrent use; the engine does its own locking.
type Service struct {
	engine  *catalog.Engine
	store   FilterStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New wires a Service. store and m may be nil.
func New(engine *catalog.Engine, store FilterStore, m *metrics.Metrics) *Service {
	s := &Service{
		engine:  engine,
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "catalog-service"),
	}
	s.refreshGauges()
	return s
}

// InvalidFilterCounter returns an engine hook that counts hide operations on
// values that match no entry.
func InvalidFilterCounter(m *metrics.Metrics) func(catalog.FilterKind, string) {
	return func(kind catalog.FilterKind, _ string) {
		if m != nil {
			m.InvalidFiltersTotal.WithLabelValues(string(kind)).Inc()
		}
	}
}

// Source returns an Adder that attributes added books to source in metrics.
func (s *Service) Source(source string) catalog.Adder {
	return sourceAdder{svc: s, source: source}
}

type sourceAdder struct {
	svc    *Service
	source string
}

func (a sourceAdder) AddBook(title, author string, subjects []string) {
	a.svc.engine.AddBook(title, author, subjects)
	if a.svc.metrics != nil {
		a.svc.metrics.BooksIngestedTotal.WithLabelValues(a.source).Inc()
		a.svc.metrics.CatalogEntries.Set(float64(a.svc.engine.Len()))
	}
}

const (
	opHide   = "hide"
	opRemove = "remove"
)

func (s *Service) HideSubject(ctx context.Context, subject string) error {
	return s.mutate(ctx, catalog.KindSubject, opHide, subject)
}

func (s *Service) HideAuthor(ctx context.Context, author string) error {
	return s.mutate(ctx, catalog.KindAuthor, opHide, author)
}

func (s *Service) RemoveSubject(ctx context.Context, subject string) error {
	return s.mutate(ctx, catalog.KindSubject, opRemove, subject)
}

func (s *Service) RemoveAuthor(ctx context.Context, author string) error {
	return s.mutate(ctx, catalog.KindAuthor, opRemove, author)
}

// mutate applies the change to the engine, which always succeeds, and then
// writes it through to the store. A store failure leaves the engine change in
// place and is returned wrapped in ErrStoreUnavailable.
func (s *Service) mutate(ctx context.Context, kind catalog.FilterKind, op, value string) error {
	apply, err := s.operation(kind, op)
	if err != nil {
		return err
	}
	apply(value)
	if s.metrics != nil {
		s.metrics.FilterOpsTotal.WithLabelValues(string(kind), op).Inc()
	}
	s.refreshGauges()

	if s.store == nil {
		return nil
	}
	if op == opHide {
		err = s.store.Add(ctx, kind, value)
	} else {
		err = s.store.Remove(ctx, kind, value)
	}
	if err != nil {
		s.logger.Error("filter persistence failed", "kind", kind, "op", op, "value", value, "error", err)
		return fmt.Errorf("%s %s: %w: %w", op, kind, apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// operation resolves kind and op to the engine method. Unknown values are
// rejected with ErrInvalidInput before anything changes.
func (s *Service) operation(kind catalog.FilterKind, op string) (func(string), error) {
	switch {
	case kind == catalog.KindSubject && op == opHide:
		return s.engine.HideSubject, nil
	case kind == catalog.KindSubject && op == opRemove:
		return s.engine.RemoveSubject, nil
	case kind == catalog.KindAuthor && op == opHide:
		return s.engine.HideAuthor, nil
	case kind == catalog.KindAuthor && op == opRemove:
		return s.engine.RemoveAuthor, nil
	default:
		return nil, fmt.Errorf("%s %s: %w", op, kind, apperrors.ErrInvalidInput)
	}
}

// Restore re-applies persisted filters to the engine. It should run after the
// catalog is loaded so the invalid-filter policy sees the real entries.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restoring filters: %w", err)
	}
	for _, subject := range snap.Subjects {
		s.engine.HideSubject(subject)
	}
	for _, author := range snap.Authors {
		s.engine.HideAuthor(author)
	}
	s.refreshGauges()
	s.logger.Info("filters restored",
		"hidden_subjects", len(snap.Subjects),
		"hidden_authors", len(snap.Authors),
	)
	return nil
}

// Search runs the engine query and records latency and outcome.
func (s *Service) Search(ctx context.Context, query string) []catalog.Entry {
	start := time.Now()
	results := s.engine.Search(query)
	if s.metrics != nil {
		s.metrics.SearchLatency.Observe(time.Since(start).Seconds())
		s.metrics.SearchResultsCount.Observe(float64(len(results)))
		resultType := "hit"
		if len(results) == 0 {
			resultType = "zero_result"
		}
		s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
	return results
}

// Filters returns the current hidden subjects and authors, sorted.
func (s *Service) Filters() (subjects, authors []string) {
	return s.engine.HiddenSubjects(), s.engine.HiddenAuthors()
}

func (s *Service) ValidateSubject(subject string) bool {
	return s.engine.ValidateSubjectFilter(subject)
}

func (s *Service) ValidateAuthor(author string) bool {
	return s.engine.ValidateAuthorFilter(author)
}

// Len returns the number of catalog entries.
func (s *Service) Len() int {
	return s.engine.Len()
}

func (s *Service) refreshGauges() {
	if s.metrics == nil {
		return
	}
	s.metrics.CatalogEntries.Set(float64(s.engine.Len()))
	s.metrics.HiddenFilters.WithLabelValues(string(catalog.KindSubject)).Set(float64(len(s.engine.HiddenSubjects())))
	s.metrics.HiddenFilters.WithLabelValues(string(catalog.KindAuthor)).Set(float64(len(s.engine.HiddenAuthors())))
}
