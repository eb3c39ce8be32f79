// Package consumer applies BookEvents read from Kafka to the catalog.
package consumer

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/books"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/kafka"
)

// BookConsumer wraps a Kafka consumer feeding the catalog.
type BookConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *BookConsumer {
	return &BookConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "book-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (bc *BookConsumer) Start(ctx context.Context) error {
	bc.logger.Info("book consumer starting")
	return bc.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that adds each BookEvent to
// dst. Messages that cannot be decoded are logged and acknowledged so they do
// not block the partition. When applied is non-nil, events carrying a book ID
// it has already seen (loaded from PostgreSQL or delivered earlier) are
// acknowledged without adding the book again. Events without an ID are always
// applied.
func HandleMessage(dst catalog.Adder, applied books.IDMarker) kafka.MessageHandler {
	logger := slog.Default().With("component", "book-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.BookEvent](value)
		if err != nil {
			logger.Error("failed to decode book event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if event.BookID != 0 && applied != nil && !applied.Mark(event.BookID) {
			logger.Debug("skipping book already in catalog", "book_id", event.BookID)
			return nil
		}
		dst.AddBook(event.Title, event.Author, event.Subjects)
		logger.Debug("book added from kafka",
			"book_id", event.BookID,
			"title", event.Title,
		)
		return nil
	}
}
