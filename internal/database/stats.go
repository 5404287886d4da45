package database

// Stats holds cache counts for the status command.
type Stats struct {
	TotalArticles   int
	WithContent     int
	WithSummary     int
	LikedArticles   int
	Digests         int
	LatestCollected string
}

// GetStats returns cache counts.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM articles", &s.TotalArticles},
		{"SELECT COUNT(*) FROM articles WHERE content IS NOT NULL AND content != ''", &s.WithContent},
		{"SELECT COUNT(*) FROM articles WHERE summary IS NOT NULL AND summary != ''", &s.WithSummary},
		{"SELECT COUNT(*) FROM article_likes", &s.LikedArticles},
		{"SELECT COUNT(*) FROM digests", &s.Digests},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	err := db.conn.QueryRow(
		"SELECT COALESCE(MAX(collected_at), '') FROM articles",
	).Scan(&s.LatestCollected)
	if err != nil {
		return nil, err
	}

	return s, nil
}
