package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/news"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testArticle(id string, published time.Time) news.Article {
	return news.Article{
		ID:          id,
		Title:       "Title " + id,
		Description: "Description " + id,
		URL:         "https://example.com/" + id,
		Source:      "BBC News",
		PublishedAt: published,
		Categories:  []classify.Category{classify.Environment, classify.Community},
		Positivity:  2,
	}
}

var published = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func TestInsertArticle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertArticle(testArticle("a1", published))
	if err != nil {
		t.Fatalf("InsertArticle: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero row ID")
	}
}

func TestInsertDuplicateArticle(t *testing.T) {
	db := openTestDB(t)

	db.InsertArticle(testArticle("a1", published))
	id, err := db.InsertArticle(testArticle("a1", published))
	if err != nil {
		t.Fatalf("InsertArticle duplicate: %v", err)
	}
	if id != 0 {
		t.Errorf("expected 0 for duplicate, got %d", id)
	}
}

func TestGetArticlesNewestFirst(t *testing.T) {
	db := openTestDB(t)

	db.InsertArticle(testArticle("old", published.Add(-48*time.Hour)))
	db.InsertArticle(testArticle("new", published))
	db.InsertArticle(testArticle("mid", published.Add(-24*time.Hour)))

	articles, err := db.GetArticles(0)
	if err != nil {
		t.Fatalf("GetArticles: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}
	if articles[0].ID != "new" || articles[2].ID != "old" {
		t.Errorf("expected newest first, got %s ... %s", articles[0].ID, articles[2].ID)
	}

	limited, err := db.GetArticles(2)
	if err != nil {
		t.Fatalf("GetArticles limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit respected, got %d", len(limited))
	}
}

func TestArticleRoundTrip(t *testing.T) {
	db := openTestDB(t)

	want := testArticle("a1", published)
	want.Author = "Jane Doe"
	want.ImageURL = "https://example.com/a1.jpg"
	db.InsertArticle(want)

	got, err := db.GetArticle("a1")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got == nil {
		t.Fatal("expected article, got nil")
	}
	if got.Title != want.Title || got.Author != want.Author || got.ImageURL != want.ImageURL {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.PublishedAt.Equal(want.PublishedAt) {
		t.Errorf("published at mismatch: %v vs %v", got.PublishedAt, want.PublishedAt)
	}
	if len(got.Categories) != 2 || got.Categories[0] != classify.Environment {
		t.Errorf("categories mismatch: %v", got.Categories)
	}
	if got.Positivity != 2 {
		t.Errorf("positivity mismatch: %d", got.Positivity)
	}
}

func TestGetArticleMissing(t *testing.T) {
	db := openTestDB(t)

	got, err := db.GetArticle("nope")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing article, got %+v", got)
	}
}

func TestGetArticlesByCategory(t *testing.T) {
	db := openTestDB(t)

	a := testArticle("env", published)
	db.InsertArticle(a)

	b := testArticle("tech", published)
	b.Categories = []classify.Category{classify.Technology}
	db.InsertArticle(b)

	envArticles, err := db.GetArticlesByCategory(classify.Environment)
	if err != nil {
		t.Fatalf("GetArticlesByCategory: %v", err)
	}
	if len(envArticles) != 1 || envArticles[0].ID != "env" {
		t.Errorf("expected only the environment article, got %+v", envArticles)
	}
}

func TestContentFetchFlow(t *testing.T) {
	db := openTestDB(t)

	db.InsertArticle(testArticle("a1", published))

	withContent := testArticle("a2", published)
	withContent.Content = "already have text"
	db.InsertArticle(withContent)

	needing, err := db.GetArticlesNeedingFetch()
	if err != nil {
		t.Fatalf("GetArticlesNeedingFetch: %v", err)
	}
	if len(needing) != 1 || needing[0].ID != "a1" {
		t.Fatalf("expected only a1 to need fetch, got %+v", needing)
	}

	if err := db.UpdateArticleContent("a1", "fetched body"); err != nil {
		t.Fatalf("UpdateArticleContent: %v", err)
	}

	needing, _ = db.GetArticlesNeedingFetch()
	if len(needing) != 0 {
		t.Errorf("expected no articles needing fetch, got %d", len(needing))
	}

	got, _ := db.GetArticle("a1")
	if got.Content != "fetched body" {
		t.Errorf("content not updated: %q", got.Content)
	}
}

func TestMarkArticleFetchAttempted(t *testing.T) {
	db := openTestDB(t)

	db.InsertArticle(testArticle("a1", published))
	if err := db.MarkArticleFetchAttempted("a1"); err != nil {
		t.Fatalf("MarkArticleFetchAttempted: %v", err)
	}

	needing, _ := db.GetArticlesNeedingFetch()
	if len(needing) != 0 {
		t.Errorf("attempted article must not be retried, got %d", len(needing))
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	db := openTestDB(t)

	db.InsertArticle(testArticle("a1", published))
	if err := db.UpdateArticleSummary("a1", "A short summary."); err != nil {
		t.Fatalf("UpdateArticleSummary: %v", err)
	}

	got, err := db.GetArticleSummary("a1")
	if err != nil {
		t.Fatalf("GetArticleSummary: %v", err)
	}
	if got != "A short summary." {
		t.Errorf("summary mismatch: %q", got)
	}

	missing, err := db.GetArticleSummary("nope")
	if err != nil || missing != "" {
		t.Errorf("expected empty summary for missing article, got %q, %v", missing, err)
	}
}

func TestToggleLike(t *testing.T) {
	db := openTestDB(t)
	db.InsertArticle(testArticle("a1", published))

	liked, err := db.ToggleLike("a1")
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked {
		t.Error("expected first toggle to like")
	}

	if got, _ := db.IsLiked("a1"); !got {
		t.Error("expected IsLiked true")
	}

	liked, err = db.ToggleLike("a1")
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if liked {
		t.Error("expected second toggle to unlike")
	}
	if got, _ := db.IsLiked("a1"); got {
		t.Error("expected IsLiked false")
	}
}

func TestDigestUpsert(t *testing.T) {
	db := openTestDB(t)

	if err := db.UpsertDigest("2026-08-31", "# Digest", 5); err != nil {
		t.Fatalf("UpsertDigest: %v", err)
	}
	if err := db.UpsertDigest("2026-08-31", "# Digest v2", 6); err != nil {
		t.Fatalf("UpsertDigest replace: %v", err)
	}

	d, err := db.GetDigest("2026-08-31")
	if err != nil {
		t.Fatalf("GetDigest: %v", err)
	}
	if d == nil || d.BodyMarkdown != "# Digest v2" || d.ArticleCount != 6 {
		t.Errorf("digest mismatch: %+v", d)
	}

	latest, err := db.GetLatestDigest()
	if err != nil || latest == nil || latest.Date != "2026-08-31" {
		t.Errorf("latest digest mismatch: %+v, %v", latest, err)
	}

	missing, err := db.GetDigest("2000-01-01")
	if err != nil || missing != nil {
		t.Errorf("expected nil for missing digest, got %+v, %v", missing, err)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)

	a := testArticle("a1", published)
	a.Content = "text"
	db.InsertArticle(a)
	db.InsertArticle(testArticle("a2", published))
	db.ToggleLike("a1")
	db.UpsertDigest("2026-08-31", "# D", 2)

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalArticles != 2 || stats.WithContent != 1 || stats.LikedArticles != 1 || stats.Digests != 1 {
		t.Errorf("stats mismatch: %+v", stats)
	}
}
