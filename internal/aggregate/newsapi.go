package aggregate

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/news"
)

const defaultNewsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPIClient fetches candidates from NewsAPI, restricted to the
// trusted publisher domains.
type NewsAPIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNewsAPIClient creates a NewsAPI client reading its key from the
// named environment variable.
func NewNewsAPIClient(apiKeyEnv string) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  os.Getenv(apiKeyEnv),
		baseURL: defaultNewsAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *NewsAPIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Fetch returns quality-gated articles from the trusted domains, or nil
// on any error.
func (c *NewsAPIClient) Fetch() []news.Article {
	if c.apiKey == "" {
		log.Println("NewsAPI not configured, skipping")
		return nil
	}

	params := url.Values{
		"domains":  {strings.Join(classify.TrustedDomains(20), ",")},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {"100"},
	}

	req, err := http.NewRequest("GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("NewsAPI request error: %v", err)
		return nil
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("NewsAPI error: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("NewsAPI HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Status   string `json:"status"`
		Articles []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			Description string `json:"description"`
			URLToImage  string `json:"urlToImage"`
			PublishedAt string `json:"publishedAt"`
			Author      string `json:"author"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("NewsAPI decode error: %v", err)
		return nil
	}
	if result.Status != "ok" {
		log.Printf("NewsAPI status %q", result.Status)
		return nil
	}

	var articles []news.Article
	for _, raw := range result.Articles {
		if !classify.QualityArticle(raw.Title, raw.Description, raw.URL) {
			continue
		}

		published, _ := time.Parse(time.RFC3339, raw.PublishedAt)
		articles = append(articles, news.Article{
			ID:          raw.URL,
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
			ImageURL:    raw.URLToImage,
			PublishedAt: published,
			Source:      raw.Source.Name,
			Author:      raw.Author,
			Categories:  classify.DetectCategories(raw.Title, raw.Description),
			Positivity:  classify.PositivityScore(raw.Title + " " + raw.Description),
		})
	}
	return articles
}
