package fetchtext

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/news"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertArticle(t *testing.T, db *database.DB, id, articleURL string) {
	t.Helper()
	_, err := db.InsertArticle(news.Article{
		ID:          id,
		Title:       "Title " + id,
		URL:         articleURL,
		Source:      "Test",
		PublishedAt: time.Now(),
		Categories:  []classify.Category{classify.GlobalProgress},
	})
	if err != nil {
		t.Fatalf("InsertArticle: %v", err)
	}
}

func newTestFetcher(db *database.DB, readerBaseURL string) *ContentFetcher {
	f := NewContentFetcher(db, 5*time.Second)
	f.readerBaseURL = readerBaseURL
	return f
}

func TestFetchMissingViaReader(t *testing.T) {
	body := strings.Repeat("Real article text about a hopeful recovery. ", 10)
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer reader.Close()

	db := openTestDB(t)
	insertArticle(t, db, "a1", "https://example.com/a1")

	result := newTestFetcher(db, reader.URL+"/").FetchMissing()

	if result.Fetched != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 fetched, got %+v", result)
	}

	stored, err := db.GetArticle("a1")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if !strings.Contains(stored.Content, "hopeful recovery") {
		t.Errorf("content not stored, got %q", stored.Content)
	}
}

func TestFetchMissingFallsBackToDirect(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer reader.Close()

	paragraph := strings.Repeat("Scientists describe an encouraging result in the trial. ", 8)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><article><h1>Study</h1><p>" + paragraph + "</p></article></body></html>"))
	}))
	defer origin.Close()

	db := openTestDB(t)
	insertArticle(t, db, "a1", origin.URL+"/story")

	result := newTestFetcher(db, reader.URL+"/").FetchMissing()

	if result.Fetched != 1 {
		t.Fatalf("expected direct fallback fetch, got %+v", result)
	}
}

func TestFetchMissingSkipsFailedDomain(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer reader.Close()

	var originHits int
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originHits++
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer origin.Close()

	db := openTestDB(t)
	insertArticle(t, db, "a1", origin.URL+"/one")
	insertArticle(t, db, "a2", origin.URL+"/two")
	insertArticle(t, db, "a3", origin.URL+"/three")

	result := newTestFetcher(db, reader.URL+"/").FetchMissing()

	if result.Failed != 3 {
		t.Errorf("expected 3 failed, got %+v", result)
	}
	if originHits != 1 {
		t.Errorf("expected a single origin hit before short-circuit, got %d", originHits)
	}

	remaining, err := db.GetArticlesNeedingFetch()
	if err != nil {
		t.Fatalf("GetArticlesNeedingFetch: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected all articles marked attempted, got %d remaining", len(remaining))
	}
}

func TestFetchMissingNothingToDo(t *testing.T) {
	db := openTestDB(t)
	result := newTestFetcher(db, "http://127.0.0.1:0/").FetchMissing()
	if result.Fetched != 0 || result.Failed != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
