// Package digest composes the daily good-news digest in markdown and
// stores it alongside the article cache.
package digest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/history"
	"github.com/kindlingnews/kindling/internal/news"
	"github.com/kindlingnews/kindling/internal/recommend"
	"github.com/kindlingnews/kindling/internal/summarize"
)

// candidatePool bounds how many recent articles a digest is built from.
const candidatePool = 50

const introPrompt = `You are writing the opening line of a daily positive-news digest.

Today's top story:

Title: %s
Summary: %s

Write ONE warm, encouraging sentence introducing today's digest. No quotes, no emoji, no preamble.`

// Builder composes daily digests.
type Builder struct {
	db       *database.DB
	provider summarize.Provider
	now      func() time.Time
}

// NewBuilder creates a digest builder. The provider may be nil, in which
// case the digest is composed without a generated introduction.
func NewBuilder(db *database.DB, provider summarize.Provider) *Builder {
	return &Builder{db: db, provider: provider, now: time.Now}
}

// BuildDaily composes and stores the digest for today, scored against
// the reader's history. Rebuilding on the same date replaces the stored
// digest.
func (b *Builder) BuildDaily(ctx context.Context, entries []history.Entry, limit int) (*database.Digest, error) {
	now := b.now()
	date := history.DateOf(now)

	articles, err := b.db.GetArticles(candidatePool)
	if err != nil {
		return nil, err
	}

	if len(articles) == 0 {
		log.Println("No articles cached, storing empty digest")
		if err := b.db.UpsertDigest(date, "No articles collected today. Run `kindling collect` first.", 0); err != nil {
			return nil, err
		}
		return b.db.GetDigest(date)
	}

	pick := news.DailyPick(articles)
	scores := recommend.NewScorer(entries, now).Recommendations(articles, limit)

	body := b.assembleBody(ctx, date, pick, scores)

	if err := b.db.UpsertDigest(date, body, len(scores)); err != nil {
		return nil, err
	}

	digest, err := b.db.GetDigest(date)
	if err != nil {
		return nil, err
	}
	log.Printf("Digest composed for %s: %d articles", date, len(scores))
	return digest, nil
}

func (b *Builder) assembleBody(ctx context.Context, date string, pick *news.Article, scores []recommend.Score) string {
	var sections []string

	sections = append(sections, fmt.Sprintf("# Your Good News Digest\n\n*%s*", date))

	if intro := b.generateIntro(ctx, pick); intro != "" {
		sections = append(sections, intro)
	}

	sections = append(sections, "## Today's Pick\n\n"+articleSection(*pick, b.pickSummary(pick)))

	if len(scores) > 0 {
		var lines []string
		lines = append(lines, "## Recommended For You")
		for _, s := range scores {
			if s.Article.ID == pick.ID {
				continue
			}
			line := fmt.Sprintf("- [%s](%s) (%s)", s.Article.Title, s.Article.URL, s.Article.Source)
			if len(s.Reasons) > 0 {
				line += "\n  - " + s.Reasons[0]
			}
			lines = append(lines, line)
		}
		if len(lines) > 1 {
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}

	if stats, err := b.db.GetStats(); err == nil {
		sections = append(sections, fmt.Sprintf(
			"---\n\n*%d articles cached, %d with full text, %d liked.*",
			stats.TotalArticles, stats.WithContent, stats.LikedArticles))
	}

	return strings.Join(sections, "\n\n")
}

// pickSummary prefers the stored LLM summary and falls back to the feed
// description.
func (b *Builder) pickSummary(pick *news.Article) string {
	summary, err := b.db.GetArticleSummary(pick.ID)
	if err == nil && summary != "" {
		return summary
	}
	return pick.Description
}

func (b *Builder) generateIntro(ctx context.Context, pick *news.Article) string {
	if b.provider == nil {
		return ""
	}

	prompt := fmt.Sprintf(introPrompt, pick.Title, b.pickSummary(pick))
	intro, err := b.provider.Generate(ctx, prompt, 128)
	if err != nil {
		log.Printf("Digest intro generation failed: %v", err)
		return ""
	}
	return strings.TrimSpace(intro)
}

func articleSection(a news.Article, summary string) string {
	section := fmt.Sprintf("**[%s](%s)**", a.Title, a.URL)
	if a.Source != "" {
		section += fmt.Sprintf("\n*%s*", a.Source)
	}
	if summary != "" {
		section += "\n\n" + summary
	}
	return section
}
