// Package filterstore persists the hidden-subject and hidden-author sets in
// Redis so filters survive a restart of the catalog service. Only filter
// membership is stored; search results are never cached.
package filterstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
)

const (
	keyPrefix      = "catalog:hidden:"
	subjectsSuffix = "subjects"
	authorsSuffix  = "authors"
)

// SetClient is the subset of the Redis client the store needs.
type SetClient interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Snapshot is the persisted filter state.
type Snapshot struct {
	Subjects []string
	Authors  []string
}

// Store reads and writes hidden filter sets.
type Store struct {
	client SetClient
	prefix string
	logger *slog.Logger
}

// New creates a Store. namespace, when non-empty, is inserted into every key
// so several catalogs can share one Redis database.
func New(client SetClient, namespace string) *Store {
	prefix := keyPrefix
	if namespace != "" {
		prefix = keyPrefix + namespace + ":"
	}
	return &Store{
		client: client,
		prefix: prefix,
		logger: slog.Default().With("component", "filter-store"),
	}
}

func (s *Store) key(kind catalog.FilterKind) (string, error) {
	switch kind {
	case catalog.KindSubject:
		return s.prefix + subjectsSuffix, nil
	case catalog.KindAuthor:
		return s.prefix + authorsSuffix, nil
	default:
		return "", fmt.Errorf("filter kind %q: %w", kind, apperrors.ErrInvalidInput)
	}
}

// Add records value as hidden for kind.
func (s *Store) Add(ctx context.Context, kind catalog.FilterKind, value string) error {
	key, err := s.key(kind)
	if err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, key, value); err != nil {
		return fmt.Errorf("persisting hidden %s %q: %w", kind, value, err)
	}
	s.logger.Debug("filter persisted", "kind", kind, "value", value)
	return nil
}

// Remove deletes value from the hidden set for kind.
func (s *Store) Remove(ctx context.Context, kind catalog.FilterKind, value string) error {
	key, err := s.key(kind)
	if err != nil {
		return err
	}
	if err := s.client.SRem(ctx, key, value); err != nil {
		return fmt.Errorf("removing hidden %s %q: %w", kind, value, err)
	}
	s.logger.Debug("filter unpersisted", "kind", kind, "value", value)
	return nil
}

// Load returns the persisted hidden sets.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	subjects, err := s.client.SMembers(ctx, s.prefix+subjectsSuffix)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading hidden subjects: %w", err)
	}
	authors, err := s.client.SMembers(ctx, s.prefix+authorsSuffix)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading hidden authors: %w", err)
	}
	return Snapshot{Subjects: subjects, Authors: authors}, nil
}
