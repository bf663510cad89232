package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/newsfinder/internal/db"
)

type fakeArticleStore struct {
	connected    bool
	articles     []db.DisplayArticle
	similarByID  map[int64][]db.SimilarArticle
	similarByURL map[string][]db.SimilarArticle
	latestRun    *db.SimilarityRun
	listErr      error
	lastQuery    db.ListArticlesQuery
}

func (s *fakeArticleStore) IsConnected(context.Context) bool { return s.connected }

func (s *fakeArticleStore) ListArticlesForDisplay(_ context.Context, query db.ListArticlesQuery) ([]db.DisplayArticle, error) {
	s.lastQuery = query
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.articles, nil
}

func (s *fakeArticleStore) ListSimilarPairs(_ context.Context, articleID int64) ([]db.SimilarArticle, error) {
	return s.similarByID[articleID], nil
}

func (s *fakeArticleStore) ListSimilarArticlesByURL(_ context.Context, url string) ([]db.SimilarArticle, error) {
	items, ok := s.similarByURL[url]
	if !ok {
		return nil, db.ErrNoRows
	}
	return items, nil
}

func (s *fakeArticleStore) LatestSimilarityRun(context.Context) (*db.SimilarityRun, error) {
	if s.latestRun == nil {
		return nil, db.ErrNoRows
	}
	return s.latestRun, nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, store articleStore, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	server := NewServer(store, zerolog.Nop(), Options{})
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	server.router().ServeHTTP(rec, req)

	var body envelope
	if strings.HasPrefix(target, "/metrics") {
		return rec, body
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func similar(id, sourceID int64, sameSource bool) db.SimilarArticle {
	return db.SimilarArticle{
		DisplayArticle: db.DisplayArticle{ArticleID: id, SourceID: sourceID, Title: "t"},
		Similarity:     0.9,
		SameSource:     sameSource,
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	store := &fakeArticleStore{
		connected: true,
		latestRun: &db.SimilarityRun{RunUUID: "6f1c6f7e-0f38-4f6e-9a4b-0d1f3c2d5e77", Status: db.RunStatusCompleted, Matches: 3},
	}
	rec, body := serve(t, store, "/health")
	if rec.Code != http.StatusOK || body.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}

	var data struct {
		Datastore bool `json:"datastore"`
		LastRun   struct {
			Status  string `json:"status"`
			Matches int    `json:"matches"`
		} `json:"last_run"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.Datastore || data.LastRun.Status != db.RunStatusCompleted || data.LastRun.Matches != 3 {
		t.Fatalf("unexpected health payload: %+v", data)
	}
}

func TestHandleArticlesPagination(t *testing.T) {
	t.Parallel()

	store := &fakeArticleStore{articles: []db.DisplayArticle{{ArticleID: 1, Title: "a"}}}
	rec, body := serve(t, store, "/api/v1/articles?page=3&page_size=10&source=NOS")
	if rec.Code != http.StatusOK || body.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}
	if store.lastQuery.Limit != 10 || store.lastQuery.Offset != 20 || store.lastQuery.Source != "NOS" {
		t.Fatalf("unexpected query: %+v", store.lastQuery)
	}
}

func TestHandleArticlesValidation(t *testing.T) {
	t.Parallel()

	tests := []string{
		"/api/v1/articles?page=0",
		"/api/v1/articles?page_size=abc",
		"/api/v1/articles?page_size=1000",
	}
	for _, target := range tests {
		rec, body := serve(t, &fakeArticleStore{}, target)
		if rec.Code != http.StatusBadRequest || body.Status != "fail" {
			t.Fatalf("%s: expected validation failure, got %d %+v", target, rec.Code, body)
		}
	}
}

func TestHandleArticlesStoreError(t *testing.T) {
	t.Parallel()

	rec, body := serve(t, &fakeArticleStore{listErr: errors.New("boom")}, "/api/v1/articles")
	if rec.Code != http.StatusInternalServerError || body.Status != "error" {
		t.Fatalf("expected internal error, got %d %+v", rec.Code, body)
	}
}

func TestHandleSimilarByURL(t *testing.T) {
	t.Parallel()

	store := &fakeArticleStore{
		similarByURL: map[string][]db.SimilarArticle{
			"https://a.test/1": {similar(2, 2, false), similar(3, 1, true)},
		},
	}

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantItems int
	}{
		{name: "cross-source only", target: "/api/v1/articles/similar?url=https://a.test/1", wantCode: http.StatusOK, wantItems: 1},
		{name: "include same source", target: "/api/v1/articles/similar?url=https://a.test/1&include_same_source=true", wantCode: http.StatusOK, wantItems: 2},
		{name: "unknown url", target: "/api/v1/articles/similar?url=https://a.test/404", wantCode: http.StatusNotFound},
		{name: "missing url", target: "/api/v1/articles/similar", wantCode: http.StatusBadRequest},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec, body := serve(t, store, tc.target)
			if rec.Code != tc.wantCode {
				t.Fatalf("unexpected status: got %d want %d (%s)", rec.Code, tc.wantCode, rec.Body.String())
			}
			if tc.wantCode != http.StatusOK {
				return
			}
			var data struct {
				Items []db.SimilarArticle `json:"items"`
			}
			if err := json.Unmarshal(body.Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if len(data.Items) != tc.wantItems {
				t.Fatalf("expected %d items, got %d", tc.wantItems, len(data.Items))
			}
		})
	}
}

func TestHandleSimilarByID(t *testing.T) {
	t.Parallel()

	store := &fakeArticleStore{
		similarByID: map[int64][]db.SimilarArticle{7: {similar(8, 2, false)}},
	}

	rec, body := serve(t, store, "/api/v1/articles/7/similar")
	if rec.Code != http.StatusOK || body.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}

	rec, body = serve(t, store, "/api/v1/articles/nope/similar")
	if rec.Code != http.StatusBadRequest || body.Status != "fail" {
		t.Fatalf("expected validation failure, got %d %+v", rec.Code, body)
	}
}

func TestUnknownRouteUsesJSendEnvelope(t *testing.T) {
	t.Parallel()

	rec, body := serve(t, &fakeArticleStore{}, "/api/v1/nothing-here")
	if rec.Code != http.StatusNotFound || body.Status != "fail" {
		t.Fatalf("expected jsend 404, got %d %+v", rec.Code, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	rec, _ := serve(t, &fakeArticleStore{}, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("expected default Go collector metrics in output")
	}
}
