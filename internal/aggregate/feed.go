package aggregate

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/news"
)

const maxPerFeed = 20

// FeedConfig is one RSS/Atom feed to collect from.
type FeedConfig struct {
	URL  string
	Name string
}

// FeedParser collects candidates from RSS/Atom feeds. Feed articles skip
// the trusted-domain check (the feed list itself is the trust decision)
// but still pass positivity and exclusion filtering.
type FeedParser struct {
	feeds []FeedConfig
}

// NewFeedParser creates a FeedParser.
func NewFeedParser(feeds []FeedConfig) *FeedParser {
	return &FeedParser{feeds: feeds}
}

// Fetch parses all configured feeds and returns admitted articles.
func (fp *FeedParser) Fetch() []news.Article {
	parser := gofeed.NewParser()
	var all []news.Article

	for _, fc := range fp.feeds {
		name := fc.Name
		if name == "" {
			name = sourceNameFromURL(fc.URL)
		}

		articles, err := parseFeed(parser, fc.URL, name)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, articles...)
		log.Printf("Parsed %d admitted entries from %s", len(articles), name)
	}
	return all
}

func parseFeed(parser *gofeed.Parser, feedURL, sourceName string) ([]news.Article, error) {
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, err
	}

	var articles []news.Article
	for _, item := range feed.Items {
		if len(articles) >= maxPerFeed {
			break
		}

		a := feedArticle(item, sourceName)
		if a == nil {
			continue
		}
		articles = append(articles, *a)
	}
	return articles, nil
}

func feedArticle(item *gofeed.Item, source string) *news.Article {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" || item.Title == "" {
		return nil
	}

	description := item.Description
	text := item.Title + " " + description
	if classify.SportsOrEntertainment(text) || classify.PositivityScore(text) < 1 {
		return nil
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	}

	imageURL := ""
	if item.Image != nil {
		imageURL = item.Image.URL
	}

	return &news.Article{
		ID:          itemURL,
		Title:       item.Title,
		Description: description,
		URL:         itemURL,
		ImageURL:    imageURL,
		PublishedAt: published,
		Source:      source,
		Categories:  classify.DetectCategories(item.Title, description),
		Positivity:  classify.PositivityScore(text),
	}
}

func sourceNameFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
