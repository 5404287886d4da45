package aggregate

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/news"
)

const defaultNYTBaseURL = "https://api.nytimes.com/svc/search/v2/articlesearch.json"

// NYTClient fetches candidates from the New York Times article search
// API, restricted to the optimism-adjacent news desks.
type NYTClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNYTClient creates a NYT client reading its key from the named
// environment variable.
func NewNYTClient(apiKeyEnv string) *NYTClient {
	return &NYTClient{
		apiKey:  os.Getenv(apiKeyEnv),
		baseURL: defaultNYTBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *NYTClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Fetch returns quality-gated articles, or nil on any error.
func (c *NYTClient) Fetch() []news.Article {
	if c.apiKey == "" {
		log.Println("NYT API not configured, skipping")
		return nil
	}

	params := url.Values{
		"sort":    {"newest"},
		"fq":      {`news_desk:("Science" "Health" "Climate" "Technology")`},
		"api-key": {c.apiKey},
	}

	resp, err := c.client.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		log.Printf("NYT API error: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("NYT API HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Status   string `json:"status"`
		Response struct {
			Docs []struct {
				ID       string `json:"_id"`
				Headline struct {
					Main string `json:"main"`
				} `json:"headline"`
				Abstract   string `json:"abstract"`
				Snippet    string `json:"snippet"`
				WebURL     string `json:"web_url"`
				PubDate    string `json:"pub_date"`
				Multimedia []struct {
					URL string `json:"url"`
				} `json:"multimedia"`
				Byline struct {
					Original string `json:"original"`
				} `json:"byline"`
			} `json:"docs"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("NYT API decode error: %v", err)
		return nil
	}
	if result.Status != "OK" {
		log.Printf("NYT API status %q", result.Status)
		return nil
	}

	var articles []news.Article
	for _, raw := range result.Response.Docs {
		description := raw.Abstract
		if description == "" {
			description = raw.Snippet
		}

		if !classify.QualityArticle(raw.Headline.Main, description, raw.WebURL) {
			continue
		}

		imageURL := ""
		if len(raw.Multimedia) > 0 && raw.Multimedia[0].URL != "" {
			imageURL = "https://www.nytimes.com/" + raw.Multimedia[0].URL
		}

		published, _ := time.Parse(time.RFC3339, raw.PubDate)
		articles = append(articles, news.Article{
			ID:          raw.ID,
			Title:       raw.Headline.Main,
			Description: description,
			URL:         raw.WebURL,
			ImageURL:    imageURL,
			PublishedAt: published,
			Source:      "The New York Times",
			Author:      raw.Byline.Original,
			Categories:  classify.DetectCategories(raw.Headline.Main, description),
			Positivity:  classify.PositivityScore(raw.Headline.Main + " " + description),
		})
	}
	return articles
}
