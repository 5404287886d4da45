package database

import "database/sql"

// Digest is a composed daily digest.
type Digest struct {
	ID           int64
	Date         string // YYYY-MM-DD
	BodyMarkdown string
	ArticleCount int
	GeneratedAt  *string
}

// UpsertDigest stores or replaces the digest for a date.
func (db *DB) UpsertDigest(date, bodyMarkdown string, articleCount int) error {
	_, err := db.conn.Exec(
		`INSERT INTO digests (digest_date, body_markdown, article_count)
		VALUES (?, ?, ?)
		ON CONFLICT(digest_date) DO UPDATE SET
			body_markdown = excluded.body_markdown,
			article_count = excluded.article_count,
			generated_at = datetime('now')`,
		date, bodyMarkdown, articleCount,
	)
	return err
}

// GetDigest returns the digest for a date, or nil when absent.
func (db *DB) GetDigest(date string) (*Digest, error) {
	row := db.conn.QueryRow(
		`SELECT id, digest_date, body_markdown, article_count, generated_at
		FROM digests WHERE digest_date = ?`, date,
	)
	return scanDigest(row)
}

// GetLatestDigest returns the most recent digest, or nil when none exist.
func (db *DB) GetLatestDigest() (*Digest, error) {
	row := db.conn.QueryRow(
		`SELECT id, digest_date, body_markdown, article_count, generated_at
		FROM digests ORDER BY digest_date DESC LIMIT 1`,
	)
	return scanDigest(row)
}

func scanDigest(row *sql.Row) (*Digest, error) {
	var d Digest
	err := row.Scan(&d.ID, &d.Date, &d.BodyMarkdown, &d.ArticleCount, &d.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
