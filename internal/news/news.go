// Package news holds the shared article model produced by ingestion and
// consumed by the recommendation and presentation layers.
package news

import (
	"sort"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
)

// Article is a candidate article admitted through the quality gate.
// Immutable once fetched; ID is stable (typically the source URL) and is
// the dedup and read-tracking key.
type Article struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url"`
	ImageURL    string              `json:"imageUrl,omitempty"`
	PublishedAt time.Time           `json:"publishedAt"`
	Source      string              `json:"source"`
	Author      string              `json:"author,omitempty"`
	Categories  []classify.Category `json:"categories"`
	Positivity  int                 `json:"positivity"`
	Content     string              `json:"content,omitempty"`
}

// Dedupe merges articles from multiple providers by URL, last write wins,
// preserving first-seen order of the surviving keys.
func Dedupe(articles []Article) []Article {
	byURL := make(map[string]int, len(articles))
	var out []Article

	for _, a := range articles {
		if i, seen := byURL[a.URL]; seen {
			out[i] = a
			continue
		}
		byURL[a.URL] = len(out)
		out = append(out, a)
	}
	return out
}

// SortByPublished orders articles newest first, in place.
func SortByPublished(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

// DailyPick returns the article with the highest positivity score of its
// title and description, or nil when there are no articles.
func DailyPick(articles []Article) *Article {
	if len(articles) == 0 {
		return nil
	}

	best := 0
	bestScore := classify.PositivityScore(articles[0].Title + " " + articles[0].Description)
	for i := 1; i < len(articles); i++ {
		score := classify.PositivityScore(articles[i].Title + " " + articles[i].Description)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return &articles[best]
}
