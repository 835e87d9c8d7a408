package database

// GetStats returns aggregate counts for the status command and web UI.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByCategory: make(map[string]int)}

	row := db.conn.QueryRow(`
		SELECT
			COUNT(*),
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'responded' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'archived' THEN 1 ELSE 0 END),
			SUM(CASE WHEN is_duplicate = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN useful_for_daily = 1 THEN 1 ELSE 0 END)
		FROM insights`)

	var pending, responded, archived, duplicates, useful *int
	if err := row.Scan(&s.TotalInsights, &pending, &responded, &archived, &duplicates, &useful); err != nil {
		return nil, err
	}
	s.PendingInsights = deref(pending)
	s.Responded = deref(responded)
	s.Archived = deref(archived)
	s.Duplicates = deref(duplicates)
	s.UsefulForDaily = deref(useful)

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM responses").Scan(&s.Responses); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM generations").Scan(&s.Generations); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(
		"SELECT content_category, COUNT(*) FROM insights GROUP BY content_category",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		s.ByCategory[category] = count
	}
	return s, rows.Err()
}

func deref(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
