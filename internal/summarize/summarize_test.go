package summarize

import (
	"context"
	"errors"
	"fmt"
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

// mockProvider implements Provider for testing.
type mockProvider struct {
	response string
	err      error
	prompts  []string
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

func insertWithContent(t *testing.T, db *database.DB, id, content string) {
	t.Helper()
	_, err := db.InsertArticle(news.Article{
		ID:          id,
		Title:       "Title " + id,
		URL:         "https://example.com/" + id,
		Source:      "Test",
		PublishedAt: time.Now(),
		Categories:  []classify.Category{classify.GlobalProgress},
		Content:     content,
	})
	if err != nil {
		t.Fatalf("InsertArticle: %v", err)
	}
}

func TestSummarizeMissing(t *testing.T) {
	db := openTestDB(t)
	insertWithContent(t, db, "a1", "Full text of an encouraging story.")

	mock := &mockProvider{response: "  A short summary.  "}
	result := NewSummarizer(db, mock, 0).SummarizeMissing(context.Background(), 0)

	if result.Summarized != 1 || result.Failed != 0 {
		t.Fatalf("expected 1 summarized, got %+v", result)
	}
	if len(mock.prompts) != 1 || !strings.Contains(mock.prompts[0], "Title a1") {
		t.Errorf("prompt missing article title: %v", mock.prompts)
	}

	summary, err := db.GetArticleSummary("a1")
	if err != nil {
		t.Fatalf("GetArticleSummary: %v", err)
	}
	if summary != "A short summary." {
		t.Errorf("expected trimmed summary stored, got %q", summary)
	}
}

func TestSummarizeMissingSkipsSummarized(t *testing.T) {
	db := openTestDB(t)
	insertWithContent(t, db, "a1", "Text one.")
	insertWithContent(t, db, "a2", "Text two.")
	if err := db.UpdateArticleSummary("a1", "done"); err != nil {
		t.Fatalf("UpdateArticleSummary: %v", err)
	}

	mock := &mockProvider{response: "New summary."}
	result := NewSummarizer(db, mock, 0).SummarizeMissing(context.Background(), 0)

	if result.Summarized != 1 {
		t.Errorf("expected only the unsummarized article, got %+v", result)
	}
	if len(mock.prompts) != 1 || !strings.Contains(mock.prompts[0], "Title a2") {
		t.Errorf("expected a2 prompted, got %v", mock.prompts)
	}
}

func TestSummarizeMissingCountsFailures(t *testing.T) {
	db := openTestDB(t)
	insertWithContent(t, db, "a1", "Text.")

	mock := &mockProvider{err: errors.New("model offline")}
	result := NewSummarizer(db, mock, 0).SummarizeMissing(context.Background(), 0)

	if result.Summarized != 0 || result.Failed != 1 {
		t.Errorf("expected 1 failed, got %+v", result)
	}
}

func TestSummarizeMissingNilProvider(t *testing.T) {
	db := openTestDB(t)
	insertWithContent(t, db, "a1", "Text.")

	result := NewSummarizer(db, nil, 0).SummarizeMissing(context.Background(), 0)
	if result.Summarized != 0 || result.Failed != 0 {
		t.Errorf("expected no-op without provider, got %+v", result)
	}
}

func TestBuildPromptTruncatesContent(t *testing.T) {
	long := strings.Repeat("x", maxPromptContent+500)
	prompt := buildPrompt(news.Article{Title: "T", Source: "S", Content: long})
	if strings.Count(prompt, "x") != maxPromptContent {
		t.Errorf("expected content capped at %d chars", maxPromptContent)
	}
}

func TestOllamaProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"message": {"content": "Generated summary."}}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider("qwen2.5:7b", srv.URL)
	got, err := p.Generate(context.Background(), "prompt", 100)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Generated summary." {
		t.Errorf("unexpected response %q", got)
	}
}

func TestOllamaProviderIsConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"models": [{"name": "qwen2.5:7b"}]}`)
	}))
	defer srv.Close()

	if !NewOllamaProvider("qwen2.5:7b", srv.URL).IsConfigured() {
		t.Error("expected configured when model listed")
	}
	if NewOllamaProvider("llama3:8b", srv.URL).IsConfigured() {
		t.Error("expected unconfigured when model missing")
	}
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"choices": [{"message": {"content": "OpenAI summary."}}]}`)
	}))
	defer srv.Close()

	p := &OpenAIProvider{Model: "gpt-4o-mini", APIKey: "test-key", BaseURL: srv.URL, client: srv.Client()}
	got, err := p.Generate(context.Background(), "prompt", 100)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "OpenAI summary." {
		t.Errorf("unexpected response %q", got)
	}
}

func TestOpenAIProviderUnconfigured(t *testing.T) {
	p := &OpenAIProvider{Model: "gpt-4o-mini"}
	if p.IsConfigured() {
		t.Error("expected unconfigured without key")
	}
	if _, err := p.Generate(context.Background(), "prompt", 10); err == nil {
		t.Error("expected error without key")
	}
}
