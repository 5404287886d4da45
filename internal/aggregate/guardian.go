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

const defaultGuardianBaseURL = "https://content.guardianapis.com/search"

// GuardianClient fetches candidates from the Guardian content API.
type GuardianClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGuardianClient creates a Guardian client reading its key from the
// named environment variable.
func NewGuardianClient(apiKeyEnv string) *GuardianClient {
	return &GuardianClient{
		apiKey:  os.Getenv(apiKeyEnv),
		baseURL: defaultGuardianBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *GuardianClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Fetch returns quality-gated articles, or nil on any error.
func (c *GuardianClient) Fetch() []news.Article {
	if c.apiKey == "" {
		log.Println("Guardian API not configured, skipping")
		return nil
	}

	params := url.Values{
		"show-fields": {"thumbnail,trailText"},
		"page-size":   {"50"},
		"order-by":    {"newest"},
		"api-key":     {c.apiKey},
	}

	resp, err := c.client.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		log.Printf("Guardian API error: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Guardian API HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Response struct {
			Status  string `json:"status"`
			Results []struct {
				ID                 string `json:"id"`
				WebTitle           string `json:"webTitle"`
				WebURL             string `json:"webUrl"`
				WebPublicationDate string `json:"webPublicationDate"`
				Fields             struct {
					TrailText string `json:"trailText"`
					Thumbnail string `json:"thumbnail"`
				} `json:"fields"`
			} `json:"results"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Guardian API decode error: %v", err)
		return nil
	}
	if result.Response.Status != "ok" {
		log.Printf("Guardian API status %q", result.Response.Status)
		return nil
	}

	var articles []news.Article
	for _, raw := range result.Response.Results {
		if !classify.QualityArticle(raw.WebTitle, raw.Fields.TrailText, raw.WebURL) {
			continue
		}

		published, _ := time.Parse(time.RFC3339, raw.WebPublicationDate)
		articles = append(articles, news.Article{
			ID:          raw.ID,
			Title:       raw.WebTitle,
			Description: raw.Fields.TrailText,
			URL:         raw.WebURL,
			ImageURL:    raw.Fields.Thumbnail,
			PublishedAt: published,
			Source:      "The Guardian",
			Categories:  classify.DetectCategories(raw.WebTitle, raw.Fields.TrailText),
			Positivity:  classify.PositivityScore(raw.WebTitle + " " + raw.Fields.TrailText),
		})
	}
	return articles
}
