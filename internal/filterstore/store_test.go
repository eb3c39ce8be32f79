package filterstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/redis"
)

type memSets struct {
	sets map[string]map[string]bool
	err  error
}

func newMemSets() *memSets {
	return &memSets{sets: make(map[string]map[string]bool)}
}

func (m *memSets) SAdd(_ context.Context, key string, members ...string) error {
	if m.err != nil {
		return m.err
	}
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]bool)
	}
	for _, v := range members {
		m.sets[key][v] = true
	}
	return nil
}

func (m *memSets) SRem(_ context.Context, key string, members ...string) error {
	if m.err != nil {
		return m.err
	}
	for _, v := range members {
		delete(m.sets[key], v)
	}
	return nil
}

func (m *memSets) SMembers(_ context.Context, key string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]string, 0, len(m.sets[key]))
	for v := range m.sets[key] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	sets := newMemSets()
	s := New(sets, "")

	require.NoError(t, s.Add(ctx, catalog.KindSubject, "Terror"))
	require.NoError(t, s.Add(ctx, catalog.KindSubject, "Terror"))
	require.NoError(t, s.Add(ctx, catalog.KindSubject, "Drama"))
	require.NoError(t, s.Add(ctx, catalog.KindAuthor, "Stephen King"))
	require.NoError(t, s.Remove(ctx, catalog.KindSubject, "Drama"))
	require.NoError(t, s.Remove(ctx, catalog.KindAuthor, "Nobody"))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Terror"}, snap.Subjects)
	assert.Equal(t, []string{"Stephen King"}, snap.Authors)

	assert.Contains(t, sets.sets, "catalog:hidden:subjects")
	assert.Contains(t, sets.sets, "catalog:hidden:authors")
}

func TestStoreNamespace(t *testing.T) {
	sets := newMemSets()
	s := New(sets, "tenant-a")
	require.NoError(t, s.Add(context.Background(), catalog.KindAuthor, "X"))
	assert.Contains(t, sets.sets, "catalog:hidden:tenant-a:authors")
}

func TestStoreWrapsClientErrors(t *testing.T) {
	sets := newMemSets()
	sets.err = errors.New("connection refused")
	s := New(sets, "")

	err := s.Add(context.Background(), catalog.KindSubject, "Terror")
	require.Error(t, err)
	assert.ErrorIs(t, err, sets.err)

	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, sets.err)
}

func TestStoreAgainstRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := pkgredis.NewClient(config.RedisConfig{Addr: addr, PoolSize: 2})
	if err != nil {
		t.Skipf("skipping: redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	ns := fmt.Sprintf("test-%d", time.Now().UnixNano())
	s := New(client, ns)
	ctx := context.Background()
	t.Cleanup(func() {
		client.Del(ctx, s.prefix+subjectsSuffix, s.prefix+authorsSuffix)
	})

	require.NoError(t, s.Add(ctx, catalog.KindSubject, "Terror"))
	require.NoError(t, s.Add(ctx, catalog.KindAuthor, "Stephen King"))
	require.NoError(t, s.Remove(ctx, catalog.KindAuthor, "Stephen King"))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Terror"}, snap.Subjects)
	assert.Empty(t, snap.Authors)
}

func TestStoreRejectsUnknownKind(t *testing.T) {
	sets := newMemSets()
	s := New(sets, "")

	assert.ErrorIs(t, s.Add(context.Background(), catalog.FilterKind("isbn"), "x"), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, s.Remove(context.Background(), catalog.FilterKind("isbn"), "x"), apperrors.ErrInvalidInput)
	assert.Empty(t, sets.sets)
}
