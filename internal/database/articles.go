package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/news"
)

const articleColumns = `article_id, url, title, description, source, author,
	image_url, published_at, categories, positivity, content, content_fetched,
	summary, collected_at`

// InsertArticle stores an admitted candidate. Returns the row ID on
// success, 0 when the article was already cached (by article_id or URL).
func (db *DB) InsertArticle(a news.Article) (int64, error) {
	cats, err := json.Marshal(a.Categories)
	if err != nil {
		return 0, err
	}

	var author, imageURL, content *string
	if a.Author != "" {
		author = &a.Author
	}
	if a.ImageURL != "" {
		imageURL = &a.ImageURL
	}
	if a.Content != "" {
		content = &a.Content
	}

	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO articles
		(article_id, url, title, description, source, author, image_url,
		 published_at, categories, positivity, content, content_fetched)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.URL, a.Title, a.Description, a.Source, author, imageURL,
		a.PublishedAt.UTC().Format(time.RFC3339), string(cats), a.Positivity,
		content, boolToInt(a.Content != ""),
	)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil || affected == 0 {
		return 0, err
	}
	return result.LastInsertId()
}

// GetArticles returns cached articles newest first, optionally limited.
func (db *DB) GetArticles(limit int) ([]news.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY published_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticlesByCategory returns cached articles carrying the category,
// newest first.
func (db *DB) GetArticlesByCategory(cat classify.Category) ([]news.Article, error) {
	// Categories are stored as a JSON array of quoted strings.
	rows, err := db.conn.Query(
		`SELECT `+articleColumns+` FROM articles
		WHERE categories LIKE ? ORDER BY published_at DESC`,
		`%"`+string(cat)+`"%`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticle returns one article by its stable article ID, or nil when
// absent.
func (db *DB) GetArticle(articleID string) (*news.Article, error) {
	row := db.conn.QueryRow(
		`SELECT `+articleColumns+` FROM articles WHERE article_id = ?`, articleID,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetArticlesNeedingFetch returns articles with no full text that have
// not been fetch-attempted.
func (db *DB) GetArticlesNeedingFetch() ([]news.Article, error) {
	rows, err := db.conn.Query(
		`SELECT ` + articleColumns + ` FROM articles
		WHERE (content IS NULL OR content = '') AND content_fetched = 0
		ORDER BY published_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleContent stores sanitized full text for an article.
func (db *DB) UpdateArticleContent(articleID, content string) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET content = ?, content_fetched = 1 WHERE article_id = ?",
		content, articleID,
	)
	return err
}

// MarkArticleFetchAttempted records that a fetch was tried and failed so
// the article is not retried every run.
func (db *DB) MarkArticleFetchAttempted(articleID string) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET content_fetched = 1 WHERE article_id = ?", articleID,
	)
	return err
}

// GetArticlesNeedingSummary returns articles that have full text but no
// summary yet, newest first, optionally limited.
func (db *DB) GetArticlesNeedingSummary(limit int) ([]news.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE content IS NOT NULL AND content != ''
		AND (summary IS NULL OR summary = '')
		ORDER BY published_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// UpdateArticleSummary stores a generated summary.
func (db *DB) UpdateArticleSummary(articleID, summary string) error {
	_, err := db.conn.Exec(
		"UPDATE articles SET summary = ? WHERE article_id = ?",
		summary, articleID,
	)
	return err
}

// GetArticleSummary returns the stored summary, or empty when absent.
func (db *DB) GetArticleSummary(articleID string) (string, error) {
	var summary sql.NullString
	err := db.conn.QueryRow(
		"SELECT summary FROM articles WHERE article_id = ?", articleID,
	).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return summary.String, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*news.Article, error) {
	var a news.Article
	var author, imageURL, publishedAt, content, summary, collectedAt sql.NullString
	var cats string
	var fetched sql.NullInt64

	err := row.Scan(&a.ID, &a.URL, &a.Title, &a.Description, &a.Source,
		&author, &imageURL, &publishedAt, &cats, &a.Positivity,
		&content, &fetched, &summary, &collectedAt)
	if err != nil {
		return nil, err
	}

	a.Author = author.String
	a.ImageURL = imageURL.String
	a.Content = content.String
	if publishedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, publishedAt.String); err == nil {
			a.PublishedAt = ts
		}
	}
	if err := json.Unmarshal([]byte(cats), &a.Categories); err != nil {
		a.Categories = []classify.Category{classify.GlobalProgress}
	}
	return &a, nil
}

func scanArticles(rows *sql.Rows) ([]news.Article, error) {
	var articles []news.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
