package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/filterstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/metrics"
)

type fakeStore struct {
	added, removed []string
	snapshot       filterstore.Snapshot
	err            error
}

func (f *fakeStore) Add(_ context.Context, kind catalog.FilterKind, value string) error {
	f.added = append(f.added, string(kind)+":"+value)
	return f.err
}

func (f *fakeStore) Remove(_ context.Context, kind catalog.FilterKind, value string) error {
	f.removed = append(f.removed, string(kind)+":"+value)
	return f.err
}

func (f *fakeStore) Load(context.Context) (filterstore.Snapshot, error) {
	return f.snapshot, f.err
}

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName()
			for _, lp := range m.GetLabel() {
				key += "," + lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func newService(t *testing.T, store FilterStore) (*Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	engine := catalog.NewEngine(catalog.WithInvalidFilterHook(InvalidFilterCounter(m)))
	svc := New(engine, store, m)
	api := svc.Source("api")
	api.AddBook("It", "Stephen King", []string{"Terror", "Suspense"})
	api.AddBook("Diário de uma Paixão", "Nicholas Sparks", []string{"Romance", "Drama"})
	return svc, reg
}

func TestServiceWritesThroughToStore(t *testing.T) {
	store := &fakeStore{}
	svc, reg := newService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.HideSubject(ctx, "Terror"))
	require.NoError(t, svc.HideAuthor(ctx, "Nicholas Sparks"))
	require.NoError(t, svc.RemoveAuthor(ctx, "Nicholas Sparks"))

	assert.Equal(t, []string{"subject:Terror", "author:Nicholas Sparks"}, store.added)
	assert.Equal(t, []string{"author:Nicholas Sparks"}, store.removed)

	subjects, authors := svc.Filters()
	assert.Equal(t, []string{"Terror"}, subjects)
	assert.Empty(t, authors)

	values := gather(t, reg)
	assert.Equal(t, 1.0, values["catalog_hidden_filters,kind=subject"])
	assert.Equal(t, 0.0, values["catalog_hidden_filters,kind=author"])
	assert.Equal(t, 1.0, values["catalog_filter_ops_total,kind=author,op=remove"])
	assert.Equal(t, 2.0, values["catalog_books_ingested_total,source=api"])
	assert.Equal(t, 2.0, values["catalog_entries"])
}

func TestServiceStoreFailureKeepsEngineChange(t *testing.T) {
	store := &fakeStore{err: errors.New("redis down")}
	svc, _ := newService(t, store)

	err := svc.HideSubject(context.Background(), "Terror")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.ErrorIs(t, err, store.err)

	subjects, _ := svc.Filters()
	assert.Equal(t, []string{"Terror"}, subjects)
	assert.Empty(t, svc.Search(context.Background(), "It"))
}

func TestServiceWithoutStore(t *testing.T) {
	svc, _ := newService(t, nil)
	require.NoError(t, svc.HideAuthor(context.Background(), "Stephen King"))
	require.NoError(t, svc.Restore(context.Background()))
	assert.Len(t, svc.Search(context.Background(), ""), 1)
}

func TestServiceRestore(t *testing.T) {
	store := &fakeStore{snapshot: filterstore.Snapshot{
		Subjects: []string{"Romance"},
		Authors:  []string{"Inexistente"},
	}}
	svc, reg := newService(t, store)

	require.NoError(t, svc.Restore(context.Background()))

	subjects, authors := svc.Filters()
	assert.Equal(t, []string{"Romance"}, subjects)
	assert.Equal(t, []string{"Inexistente"}, authors)
	assert.Empty(t, store.added, "restore must not write back")

	results := svc.Search(context.Background(), "")
	require.Len(t, results, 1)
	assert.Equal(t, "It", results[0].Title)

	values := gather(t, reg)
	assert.Equal(t, 1.0, values["catalog_invalid_filters_total,kind=author"])
}

func TestServiceRestoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	svc, _ := newService(t, store)
	assert.Error(t, svc.Restore(context.Background()))
}

func TestServiceSearchMetrics(t *testing.T) {
	svc, reg := newService(t, nil)
	ctx := context.Background()

	assert.Len(t, svc.Search(ctx, "it"), 1)
	assert.Empty(t, svc.Search(ctx, "Carrie"))

	values := gather(t, reg)
	assert.Equal(t, 1.0, values["catalog_search_queries_total,result_type=hit"])
	assert.Equal(t, 1.0, values["catalog_search_queries_total,result_type=zero_result"])
	assert.Equal(t, 2.0, values["catalog_search_latency_seconds"])
}

func TestServiceValidate(t *testing.T) {
	svc, _ := newService(t, nil)
	assert.True(t, svc.ValidateSubject("Drama"))
	assert.False(t, svc.ValidateSubject("Inexistente"))
	assert.True(t, svc.ValidateAuthor("Stephen King"))
	assert.Equal(t, 2, svc.Len())
}

func TestServiceRejectsUnknownKindOrOp(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newService(t, store)
	ctx := context.Background()

	assert.ErrorIs(t, svc.mutate(ctx, catalog.FilterKind("isbn"), opHide, "Stephen King"), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, svc.mutate(ctx, catalog.KindAuthor, "rename", "Stephen King"), apperrors.ErrInvalidInput)

	subjects, authors := svc.Filters()
	assert.Empty(t, subjects)
	assert.Empty(t, authors)
	assert.Empty(t, store.added)
	assert.Empty(t, store.removed)
}
