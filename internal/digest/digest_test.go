package digest

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/history"
	"github.com/kindlingnews/kindling/internal/news"
)

type mockProvider struct {
	response string
}

func (m *mockProvider) Generate(_ context.Context, _ string, _ int) (string, error) {
	return m.response, nil
}

func (m *mockProvider) IsConfigured() bool { return true }

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var noon = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestBuilder(db *database.DB, provider *mockProvider) *Builder {
	var b *Builder
	if provider != nil {
		b = NewBuilder(db, provider)
	} else {
		b = NewBuilder(db, nil)
	}
	b.now = func() time.Time { return noon }
	return b
}

func insert(t *testing.T, db *database.DB, id, title, description string) {
	t.Helper()
	_, err := db.InsertArticle(news.Article{
		ID:          id,
		Title:       title,
		Description: description,
		URL:         "https://example.com/" + id,
		Source:      "Test Source",
		PublishedAt: noon.Add(-time.Hour),
		Categories:  []classify.Category{classify.GlobalProgress},
	})
	if err != nil {
		t.Fatalf("InsertArticle: %v", err)
	}
}

func TestBuildDaily(t *testing.T) {
	db := openTestDB(t)
	insert(t, db, "best", "Inspiring breakthrough brings hope", "A conservation success")
	insert(t, db, "other", "City council meets", "Agenda set")

	builder := newTestBuilder(db, &mockProvider{response: "What a day for good news."})
	digest, err := builder.BuildDaily(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("BuildDaily: %v", err)
	}
	if digest == nil {
		t.Fatal("expected digest")
	}

	if digest.Date != "2026-08-31" {
		t.Errorf("expected today's date, got %q", digest.Date)
	}
	if !strings.Contains(digest.BodyMarkdown, "Today's Pick") {
		t.Error("expected a pick section")
	}
	if !strings.Contains(digest.BodyMarkdown, "Inspiring breakthrough brings hope") {
		t.Error("expected the highest-positivity article as the pick")
	}
	if !strings.Contains(digest.BodyMarkdown, "What a day for good news.") {
		t.Error("expected generated intro in body")
	}
	if !strings.Contains(digest.BodyMarkdown, "Recommended For You") {
		t.Error("expected recommendations section")
	}
}

func TestBuildDailyUsesStoredSummary(t *testing.T) {
	db := openTestDB(t)
	insert(t, db, "best", "Inspiring breakthrough brings hope", "Feed description")
	if err := db.UpdateArticleContent("best", "full text"); err != nil {
		t.Fatalf("UpdateArticleContent: %v", err)
	}
	if err := db.UpdateArticleSummary("best", "The stored LLM summary."); err != nil {
		t.Fatalf("UpdateArticleSummary: %v", err)
	}

	digest, err := newTestBuilder(db, nil).BuildDaily(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("BuildDaily: %v", err)
	}
	if !strings.Contains(digest.BodyMarkdown, "The stored LLM summary.") {
		t.Error("expected stored summary preferred over description")
	}
	if strings.Contains(digest.BodyMarkdown, "Feed description") {
		t.Error("expected description replaced by summary")
	}
}

func TestBuildDailyEmptyCache(t *testing.T) {
	db := openTestDB(t)

	digest, err := newTestBuilder(db, nil).BuildDaily(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("BuildDaily: %v", err)
	}
	if digest == nil {
		t.Fatal("expected placeholder digest")
	}
	if digest.ArticleCount != 0 {
		t.Errorf("expected 0 articles, got %d", digest.ArticleCount)
	}
	if !strings.Contains(digest.BodyMarkdown, "kindling collect") {
		t.Errorf("expected collect hint, got %q", digest.BodyMarkdown)
	}
}

func TestBuildDailyRebuildReplaces(t *testing.T) {
	db := openTestDB(t)
	insert(t, db, "a1", "Hopeful story", "Good things")

	builder := newTestBuilder(db, nil)
	if _, err := builder.BuildDaily(context.Background(), nil, 10); err != nil {
		t.Fatalf("first build: %v", err)
	}

	insert(t, db, "a2", "Another inspiring success", "More good things")
	digest, err := builder.BuildDaily(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if !strings.Contains(digest.BodyMarkdown, "Another inspiring success") {
		t.Error("expected rebuild to include the new article")
	}

	latest, err := db.GetLatestDigest()
	if err != nil {
		t.Fatalf("GetLatestDigest: %v", err)
	}
	if latest.Date != "2026-08-31" {
		t.Errorf("expected one digest row per date, got %q", latest.Date)
	}
}

func TestBuildDailyScoresAgainstHistory(t *testing.T) {
	db := openTestDB(t)
	insert(t, db, "read-one", "Hopeful story", "Good things")
	insert(t, db, "fresh", "Another inspiring success", "More good things")

	entries := []history.Entry{
		{
			ArticleID:  "read-one",
			Categories: []classify.Category{classify.GlobalProgress},
			Date:       "2026-08-31",
			Timestamp:  noon.Add(-time.Hour).UnixMilli(),
		},
	}

	digest, err := newTestBuilder(db, nil).BuildDaily(context.Background(), entries, 10)
	if err != nil {
		t.Fatalf("BuildDaily: %v", err)
	}

	recs := digest.BodyMarkdown[strings.Index(digest.BodyMarkdown, "Recommended For You"):]
	if strings.Contains(recs, "read-one") {
		t.Error("expected read article excluded from recommendations")
	}
	if !strings.Contains(recs, "fresh") {
		t.Error("expected unread article recommended")
	}
}
