// Package books stores catalog records in PostgreSQL. The ingestion service
// writes through it and the catalog service bulk-loads from it at startup.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		author      TEXT NOT NULL,
		subjects    TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE books ADD COLUMN IF NOT EXISTS idempotency_key TEXT`,
	`ALTER TABLE books ADD COLUMN IF NOT EXISTS status TEXT NOT NULL DEFAULT 'PENDING'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS books_idempotency_key_idx ON books (idempotency_key)`,
}

// Stored describes a row returned by Insert. Created is false when the
// idempotency key matched an existing row, which is returned unchanged.
type Stored struct {
	ID      int64
	Status  string
	Created bool
}

// IDMarker records the IDs of loaded books. Mark reports whether id was new.
type IDMarker interface {
	Mark(id int64) bool
}

type Repository struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{
		db:     db,
		logger: slog.Default().With("component", "books-repository"),
	}
}

// EnsureSchema creates the books table and its idempotency index if they do
// not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating books table: %w", err)
		}
	}
	return nil
}

// Insert stores one book as PENDING. With a non-empty idempotencyKey that is
// already in use, the existing row is returned and nothing is written.
func (r *Repository) Insert(ctx context.Context, entry catalog.Entry, idempotencyKey string) (Stored, error) {
	var stored Stored
	err := r.db.InTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO books (title, author, subjects, idempotency_key)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (idempotency_key) DO NOTHING
			RETURNING id, status`,
			entry.Title, entry.Author, pq.Array(subjectsOrEmpty(entry.Subjects)), nullableString(idempotencyKey),
		).Scan(&stored.ID, &stored.Status)
		if err == nil {
			stored.Created = true
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT id, status FROM books WHERE idempotency_key = $1`, idempotencyKey,
		).Scan(&stored.ID, &stored.Status)
	})
	if err != nil {
		return Stored{}, fmt.Errorf("inserting book: %w", err)
	}
	if !stored.Created {
		r.logger.Info("duplicate ingestion detected",
			"idempotency_key", idempotencyKey,
			"existing_id", stored.ID,
			"status", stored.Status,
		)
	}
	return stored, nil
}

// MarkPublished records that the book's event reached Kafka.
func (r *Repository) MarkPublished(ctx context.Context, id int64) error {
	if _, err := r.db.DB.ExecContext(ctx,
		`UPDATE books SET status = $1 WHERE id = $2`, ingestion.StatusPublished, id,
	); err != nil {
		return fmt.Errorf("marking book %d published: %w", id, err)
	}
	return nil
}

// LoadInto streams every stored book, in insertion order, into dst and
// returns how many were added. Each row ID is passed to loaded when it is
// non-nil so later Kafka replays of the same book can be skipped.
func (r *Repository) LoadInto(ctx context.Context, dst catalog.Adder, loaded IDMarker) (int, error) {
	rows, err := r.db.DB.QueryContext(ctx, `SELECT id, title, author, subjects FROM books ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var (
			id            int64
			title, author string
			subjects      []string
		)
		if err := rows.Scan(&id, &title, &author, pq.Array(&subjects)); err != nil {
			return n, fmt.Errorf("scanning book row: %w", err)
		}
		if loaded != nil && !loaded.Mark(id) {
			continue
		}
		dst.AddBook(title, author, subjects)
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterating book rows: %w", err)
	}
	r.logger.Info("catalog loaded from postgres", "books", n)
	return n, nil
}

func subjectsOrEmpty(subjects []string) []string {
	if subjects == nil {
		return []string{}
	}
	return subjects
}

// nullableString stores the empty key as NULL so keyless books never
// conflict with each other.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
