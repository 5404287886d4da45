// Package aggregate collects candidate articles from the configured
// news providers, applies the quality gate, and caches the survivors.
package aggregate

import (
	"log"
	"sync"

	"github.com/kindlingnews/kindling/internal/config"
	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/news"
)

// Provider is a source of quality-gated candidate articles. Fetch
// returns nil on any failure; providers never fail the run.
type Provider interface {
	Fetch() []news.Article
	IsConfigured() bool
}

// Result holds the results of a collection run.
type Result struct {
	TotalFound  int
	NewArticles int
	Duplicates  int
	Sources     map[string]int
}

// Aggregator orchestrates article collection.
type Aggregator struct {
	db        *database.DB
	providers []Provider
}

// New creates an Aggregator with the providers enabled in cfg.
func New(cfg *config.Config, db *database.DB) *Aggregator {
	a := &Aggregator{db: db}

	if cfg.Sources.NewsAPI.Enabled {
		a.providers = append(a.providers, NewNewsAPIClient(cfg.Sources.NewsAPI.APIKeyEnv))
	}
	if cfg.Sources.Guardian.Enabled {
		a.providers = append(a.providers, NewGuardianClient(cfg.Sources.Guardian.APIKeyEnv))
	}
	if cfg.Sources.NYT.Enabled {
		a.providers = append(a.providers, NewNYTClient(cfg.Sources.NYT.APIKeyEnv))
	}
	if len(cfg.Sources.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Sources.Feeds))
		for i, f := range cfg.Sources.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		a.providers = append(a.providers, NewFeedParser(feeds))
	}

	return a
}

// NewWithProviders creates an Aggregator over explicit providers, for
// tests.
func NewWithProviders(db *database.DB, providers ...Provider) *Aggregator {
	return &Aggregator{db: db, providers: providers}
}

// Collect fetches from all providers in parallel, merges the results,
// and caches new articles.
func (a *Aggregator) Collect() *Result {
	merged := a.fetchAll()
	merged = news.Dedupe(merged)
	news.SortByPublished(merged)

	r := &Result{TotalFound: len(merged), Sources: make(map[string]int)}
	for _, article := range merged {
		id, err := a.db.InsertArticle(article)
		if err != nil {
			log.Printf("Failed to cache article %s: %v", article.URL, err)
			continue
		}
		if id > 0 {
			r.NewArticles++
			r.Sources[article.Source]++
		} else {
			r.Duplicates++
		}
	}

	log.Printf("Collection complete: %d found, %d new, %d duplicates",
		r.TotalFound, r.NewArticles, r.Duplicates)
	return r
}

// fetchAll runs every configured provider concurrently. Providers have
// no ordering requirement; duplicates across providers are resolved by
// the URL dedup afterwards.
func (a *Aggregator) fetchAll() []news.Article {
	results := make([][]news.Article, len(a.providers))

	var wg sync.WaitGroup
	for i, p := range a.providers {
		if !p.IsConfigured() {
			continue
		}
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			results[i] = p.Fetch()
		}(i, p)
	}
	wg.Wait()

	var merged []news.Article
	for _, batch := range results {
		merged = append(merged, batch...)
	}
	return merged
}

// FeedParser always participates; the feed list in config is its
// configuration.
func (fp *FeedParser) IsConfigured() bool {
	return len(fp.feeds) > 0
}
