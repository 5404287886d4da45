// Package summarize generates short article summaries through an LLM
// provider, preferring a local Ollama instance with an OpenAI fallback.
package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/news"
)

// maxPromptContent caps the article text included in a prompt so long
// articles stay within the model context window.
const maxPromptContent = 4000

// Result holds the counts of a summarization run.
type Result struct {
	Summarized int
	Failed     int
}

// Summarizer generates and stores summaries for fetched articles.
type Summarizer struct {
	db        *database.DB
	provider  Provider
	maxTokens int
}

// NewSummarizer creates a summarizer using the given provider.
func NewSummarizer(db *database.DB, provider Provider, maxTokens int) *Summarizer {
	if maxTokens == 0 {
		maxTokens = 300
	}
	return &Summarizer{db: db, provider: provider, maxTokens: maxTokens}
}

// SummarizeMissing generates summaries for articles that have content
// but no summary, up to limit articles (0 means all).
func (s *Summarizer) SummarizeMissing(ctx context.Context, limit int) *Result {
	if s.provider == nil {
		log.Println("No summarization provider configured, skipping")
		return &Result{}
	}

	articles, err := s.db.GetArticlesNeedingSummary(limit)
	if err != nil {
		log.Printf("Error getting articles needing summary: %v", err)
		return &Result{}
	}

	if len(articles) == 0 {
		log.Println("No articles need summarization")
		return &Result{}
	}

	result := &Result{}
	for _, article := range articles {
		summary, err := s.provider.Generate(ctx, buildPrompt(article), s.maxTokens)
		if err != nil {
			log.Printf("Summary failed for %s: %v", article.Title, err)
			result.Failed++
			continue
		}

		summary = strings.TrimSpace(summary)
		if summary == "" {
			result.Failed++
			continue
		}

		if err := s.db.UpdateArticleSummary(article.ID, summary); err != nil {
			log.Printf("Error storing summary for %s: %v", article.ID, err)
			result.Failed++
			continue
		}
		result.Summarized++
		log.Printf("Summarized: %s", article.Title)
	}

	log.Printf("Summarization complete: %d summarized, %d failed", result.Summarized, result.Failed)
	return result
}

func buildPrompt(a news.Article) string {
	content := a.Content
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent]
	}

	return fmt.Sprintf(`Summarize this news article in 2-3 sentences.
Focus on the positive development it reports and what it means for the people affected.
Write in plain language, no headline, no preamble.

Title: %s
Source: %s

%s`, a.Title, a.Source, content)
}
