// Package ingestion defines the request/response types and Kafka event schema
// used to feed books into the catalog.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
)

// Book statuses reported by the ingestion service. A PENDING book is stored
// but its event has not reached Kafka; resubmitting it with the same
// idempotency key publishes it.
const (
	StatusPending   = "PENDING"
	StatusPublished = "PUBLISHED"
)

// BookRequest is the JSON body accepted by the book ingestion endpoints.
// IdempotencyKey may also arrive in the Idempotency-Key header.
type BookRequest struct {
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	Subjects       []string `json:"subjects"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// Entry converts the request into a catalog entry.
func (r BookRequest) Entry() catalog.Entry {
	return catalog.Entry{Title: r.Title, Author: r.Author, Subjects: r.Subjects}
}

// BookResponse is returned to the caller after a book is accepted.
type BookResponse struct {
	BookID int64  `json:"book_id,omitempty"`
	Status string `json:"status"`
}

// BookEvent is the Kafka message payload produced for each accepted book and
// consumed by the catalog service.
type BookEvent struct {
	BookID     int64     `json:"book_id,omitempty"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Subjects   []string  `json:"subjects"`
	IngestedAt time.Time `json:"ingested_at"`
}
