// Package publisher optionally persists books to PostgreSQL and publishes a
// BookEvent to Kafka for each one so running catalog services pick it up.
// Writes are idempotent per idempotency key.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/books"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/kafka"
)

// EventProducer is the subset of *kafka.Producer the publisher needs.
type EventProducer interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// BookWriter persists books. *books.Repository implements it.
type BookWriter interface {
	Insert(ctx context.Context, entry catalog.Entry, idempotencyKey string) (books.Stored, error)
	MarkPublished(ctx context.Context, id int64) error
}

// Publisher coordinates book persistence and Kafka event production.
type Publisher struct {
	writer   BookWriter
	producer EventProducer
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Publisher. writer may be nil, in which case books only go
// to Kafka.
func New(writer BookWriter, producer EventProducer) *Publisher {
	return &Publisher{
		writer:   writer,
		producer: producer,
		now:      time.Now,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Ingest stores the book as PENDING (when a writer is configured) and
// publishes a BookEvent keyed by author so one author's books stay in order
// on a single partition.
//
// A stored book whose publish fails is reported as PENDING rather than an
// error; resubmitting with the same idempotency key publishes it without a
// second row. A key that already reached Kafka returns the existing book.
// Without a writer nothing is stored, so a publish failure is returned as
// ErrPublishFailed and the caller may retry.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.BookRequest) (*ingestion.BookResponse, error) {
	var bookID int64
	if p.writer != nil {
		stored, err := p.writer.Insert(ctx, req.Entry(), req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("persisting book: %w", err)
		}
		if !stored.Created && stored.Status == ingestion.StatusPublished {
			return &ingestion.BookResponse{BookID: stored.ID, Status: stored.Status}, nil
		}
		bookID = stored.ID
	}

	event := kafka.Event{
		Key: req.Author,
		Value: ingestion.BookEvent{
			BookID:     bookID,
			Title:      req.Title,
			Author:     req.Author,
			Subjects:   req.Subjects,
			IngestedAt: p.now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		if p.writer == nil {
			return nil, fmt.Errorf("publishing book event: %w: %w", apperrors.ErrPublishFailed, err)
		}
		p.logger.Error("failed to publish to kafka, book stays PENDING",
			"book_id", bookID,
			"idempotency_key", req.IdempotencyKey,
			"error", err,
		)
		return &ingestion.BookResponse{BookID: bookID, Status: ingestion.StatusPending}, nil
	}
	if p.writer != nil {
		if err := p.writer.MarkPublished(ctx, bookID); err != nil {
			p.logger.Warn("book published but status not updated", "book_id", bookID, "error", err)
		}
	}
	p.logger.Debug("book event published", "book_id", bookID, "title", req.Title)
	return &ingestion.BookResponse{BookID: bookID, Status: ingestion.StatusPublished}, nil
}
