package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/filterstore"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/internal/service"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/catalog-filter/pkg/metrics"
)

type failingStore struct{}

func (failingStore) Add(context.Context, catalog.FilterKind, string) error {
	return errors.New("redis down")
}

func (failingStore) Remove(context.Context, catalog.FilterKind, string) error {
	return errors.New("redis down")
}

func (failingStore) Load(context.Context) (filterstore.Snapshot, error) {
	return filterstore.Snapshot{}, nil
}

func newTestServer(t *testing.T, store service.FilterStore) *httptest.Server {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	engine := catalog.NewEngine()
	engine.AddBook("It", "Stephen King", []string{"Terror", "Suspense"})
	engine.AddBook("O Iluminado", "Stephen King", []string{"Terror", "Suspense"})
	engine.AddBook("Diário de uma Paixão", "Nicholas Sparks", []string{"Romance", "Drama"})
	svc := service.New(engine, store, m)

	checker := health.NewChecker(time.Second)
	checker.Register("catalog", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp}
	})
	srv := httptest.NewServer(NewRouter(New(svc, 2, 10), checker, m, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, rawURL, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func search(t *testing.T, srv *httptest.Server, q string, extra string) SearchResponse {
	t.Helper()
	resp := do(t, http.MethodGet, srv.URL+"/api/v1/search?q="+url.QueryEscape(q)+extra, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func resultTitles(r SearchResponse) []string {
	out := make([]string, len(r.Results))
	for i, e := range r.Results {
		out[i] = e.Title
	}
	return out
}

func TestSearchHideRemoveAuthorFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	got := search(t, srv, "i", "&limit=10")
	assert.Equal(t, []string{"It", "O Iluminado", "Diário de uma Paixão"}, resultTitles(got))

	resp := do(t, http.MethodPut, srv.URL+"/api/v1/filters/authors/"+url.PathEscape("Stephen King"), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	got = search(t, srv, "i", "&limit=10")
	assert.Equal(t, []string{"Diário de uma Paixão"}, resultTitles(got))

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/filters/authors/"+url.PathEscape("Stephen King"), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	got = search(t, srv, "i", "&limit=10")
	assert.Len(t, got.Results, 3)
}

func TestSearchDefaultLimitAndTotalHits(t *testing.T) {
	srv := newTestServer(t, nil)

	got := search(t, srv, "", "")
	assert.Equal(t, 3, got.TotalHits)
	assert.Equal(t, []string{"It", "O Iluminado"}, resultTitles(got))

	got = search(t, srv, "", "&limit=1000")
	assert.Len(t, got.Results, 3, "limit is capped at maxResults, which exceeds the catalog")
}

func TestSearchRejectsBadLimit(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, limit := range []string{"0", "-1", "abc"} {
		resp := do(t, http.MethodGet, srv.URL+"/api/v1/search?q=it&limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, limit)
	}
}

func TestSubjectFiltersAndListing(t *testing.T) {
	srv := newTestServer(t, nil)

	require.Equal(t, http.StatusNoContent, do(t, http.MethodPut, srv.URL+"/api/v1/filters/subjects/Terror", "").StatusCode)
	require.Equal(t, http.StatusNoContent, do(t, http.MethodPut, srv.URL+"/api/v1/filters/subjects/Inexistente", "").StatusCode)

	got := search(t, srv, "", "&limit=10")
	assert.Equal(t, []string{"Diário de uma Paixão"}, resultTitles(got))

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/filters", "")
	var filters FiltersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&filters))
	assert.Equal(t, []string{"Inexistente", "Terror"}, filters.HiddenSubjects)
	assert.Empty(t, filters.HiddenAuthors)

	require.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, srv.URL+"/api/v1/filters/subjects/Terror", "").StatusCode)
	assert.Equal(t, 3, search(t, srv, "", "").TotalHits)
}

func TestValidateEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := []struct {
		path  string
		valid bool
	}{
		{"/api/v1/filters/subjects/Terror/valid", true},
		{"/api/v1/filters/subjects/Inexistente/valid", false},
		{"/api/v1/filters/authors/" + url.PathEscape("Nicholas Sparks") + "/valid", true},
		{"/api/v1/filters/authors/" + url.PathEscape("nicholas sparks") + "/valid", false},
	}
	for _, tc := range cases {
		resp := do(t, http.MethodGet, srv.URL+tc.path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var v ValidationResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
		assert.Equal(t, tc.valid, v.Valid, tc.path)
	}
}

func TestAddBook(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/books",
		`{"title":"A Coisa","author":"Stephen King","subjects":["Terror","Suspense"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := search(t, srv, "coisa", "")
	assert.Equal(t, []string{"A Coisa"}, resultTitles(got))

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/books", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFilterPersistenceFailure(t *testing.T) {
	srv := newTestServer(t, failingStore{})

	resp := do(t, http.MethodPut, srv.URL+"/api/v1/filters/subjects/Terror", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	got := search(t, srv, "", "&limit=10")
	assert.Equal(t, []string{"Diário de uma Paixão"}, resultTitles(got), "engine keeps the filter")
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/health/live", "").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/health/ready", "").StatusCode)
}

func TestEmptyAuthorFilterViaQueryParameter(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/books", `{"title":"Anônimo Inédito","author":"","subjects":[]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/filters/authors/valid?value=", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v ValidationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, ValidationResponse{Value: "", Valid: true}, v)

	resp = do(t, http.MethodPut, srv.URL+"/api/v1/filters/authors?value=", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/filters", "")
	var filters FiltersResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&filters))
	assert.Equal(t, []string{""}, filters.HiddenAuthors)

	got := search(t, srv, "", "&limit=10")
	assert.NotContains(t, resultTitles(got), "Anônimo Inédito")

	resp = do(t, http.MethodDelete, srv.URL+"/api/v1/filters/authors?value=", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	got = search(t, srv, "", "&limit=10")
	assert.Contains(t, resultTitles(got), "Anônimo Inédito")
}

func TestQueryFormSubjectAndMissingValue(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := do(t, http.MethodPut, srv.URL+"/api/v1/filters/subjects?value="+url.QueryEscape("Terror"), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	got := search(t, srv, "", "&limit=10")
	assert.Equal(t, []string{"Diário de uma Paixão"}, resultTitles(got))

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/v1/filters/subjects"},
		{http.MethodDelete, "/api/v1/filters/authors"},
		{http.MethodGet, "/api/v1/filters/subjects/valid"},
	} {
		resp := do(t, tc.method, srv.URL+tc.path, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.method+" "+tc.path)
	}
}
