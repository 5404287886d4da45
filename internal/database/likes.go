package database

// ToggleLike flips the like state for an article and returns the new
// state.
func (db *DB) ToggleLike(articleID string) (bool, error) {
	var exists int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM article_likes WHERE article_id = ?", articleID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	if exists > 0 {
		_, err := db.conn.Exec("DELETE FROM article_likes WHERE article_id = ?", articleID)
		return false, err
	}

	_, err = db.conn.Exec("INSERT INTO article_likes (article_id) VALUES (?)", articleID)
	return true, err
}

// IsLiked reports the like state for an article.
func (db *DB) IsLiked(articleID string) (bool, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM article_likes WHERE article_id = ?", articleID,
	).Scan(&count)
	return count > 0, err
}

// LikedArticleIDs returns the IDs of all liked articles, most recent
// first.
func (db *DB) LikedArticleIDs() ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT article_id FROM article_likes ORDER BY liked_at DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
