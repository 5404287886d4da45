// Package fetchtext retrieves full article text for stored articles,
// preferring the Jina reader proxy and falling back to direct fetch with
// readability extraction. Fetched text is cleaned before storage.
package fetchtext

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/kindlingnews/kindling/internal/database"
	"github.com/kindlingnews/kindling/internal/sanitize"
)

const (
	defaultReaderBaseURL = "https://r.jina.ai/"
	userAgent            = "kindling/1.0 (positive news reader)"
	minContentLength     = 100
)

// Result holds the counts of a content fetch run.
type Result struct {
	Fetched int
	Failed  int
}

// ContentFetcher fills in missing article text.
type ContentFetcher struct {
	db            *database.DB
	client        *http.Client
	readerBaseURL string
}

// NewContentFetcher creates a content fetcher with the given timeout.
func NewContentFetcher(db *database.DB, timeout time.Duration) *ContentFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ContentFetcher{
		db:            db,
		readerBaseURL: defaultReaderBaseURL,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissing fetches content for articles that have none yet. A hard
// HTTP error from a domain skips the remaining articles of that domain
// for the rest of the run.
func (f *ContentFetcher) FetchMissing() *Result {
	articles, err := f.db.GetArticlesNeedingFetch()
	if err != nil {
		log.Printf("Error getting articles needing fetch: %v", err)
		return &Result{}
	}

	if len(articles) == 0 {
		log.Println("No articles need content fetching")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, article := range articles {
		u, _ := url.Parse(article.URL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkArticleFetchAttempted(article.ID)
			result.Failed++
			continue
		}

		content, httpErr := f.fetchArticleContent(article.URL)
		if httpErr != nil {
			f.db.MarkArticleFetchAttempted(article.ID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s, skipping remaining from %s", article.URL, domain)
			continue
		}

		if content != "" {
			f.db.UpdateArticleContent(article.ID, content)
			result.Fetched++
			log.Printf("Fetched content for: %s", article.Title)
		} else {
			f.db.MarkArticleFetchAttempted(article.ID)
			result.Failed++
			log.Printf("No extractable content from: %s", article.URL)
		}
	}

	log.Printf("Content fetch complete: %d fetched, %d failed", result.Fetched, result.Failed)
	return result
}

// fetchArticleContent tries the reader proxy first and falls back to a
// direct fetch with readability extraction. A non-nil error means the
// origin answered with an HTTP error status; extraction failures and
// connection errors return empty content instead.
func (f *ContentFetcher) fetchArticleContent(articleURL string) (string, error) {
	if text := f.fetchViaReader(articleURL); text != "" {
		return text, nil
	}
	return f.fetchDirect(articleURL)
}

func (f *ContentFetcher) fetchViaReader(articleURL string) string {
	req, err := http.NewRequest("GET", f.readerBaseURL+articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	text := sanitize.Clean(string(body))
	if len(text) > minContentLength {
		return text
	}
	return ""
}

func (f *ContentFetcher) fetchDirect(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := sanitize.Clean(strings.TrimSpace(article.TextContent))
	if len(text) > minContentLength {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
