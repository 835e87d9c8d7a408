package database

import (
	"database/sql"
	"fmt"
)

// AddResponse records a response and flips the insight to responded in one
// transaction. If either write fails, neither sticks.
func (db *DB) AddResponse(insightID int64, responseText string) (int64, error) {
	if responseText == "" {
		return 0, fmt.Errorf("response text must not be empty")
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE insights SET status = 'responded' WHERE id = ?", insightID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("insight %d not found", insightID)
	}

	result, err := tx.Exec(
		"INSERT INTO responses (insight_id, response_text) VALUES (?, ?)",
		insightID, responseText,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting response: %w", err)
	}
	responseID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(
		"INSERT INTO user_actions (insight_id, action_type) VALUES (?, 'responded')", insightID,
	); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return responseID, nil
}

// GetResponsesForInsight returns all responses for an insight, newest first.
func (db *DB) GetResponsesForInsight(insightID int64) ([]Response, error) {
	rows, err := db.conn.Query(
		`SELECT id, insight_id, response_text, created_at FROM responses
		WHERE insight_id = ? ORDER BY created_at DESC, id DESC`, insightID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResponses(rows)
}

// SearchResponses returns responses whose text matches the keyword.
func (db *DB) SearchResponses(keyword string) ([]Response, error) {
	rows, err := db.conn.Query(
		`SELECT id, insight_id, response_text, created_at FROM responses
		WHERE response_text LIKE ? ORDER BY created_at DESC, id DESC`,
		"%"+keyword+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResponses(rows)
}

// UpdateResponse edits a response's text. The only mutation responses allow.
func (db *DB) UpdateResponse(responseID int64, responseText string) error {
	if responseText == "" {
		return fmt.Errorf("response text must not be empty")
	}
	res, err := db.conn.Exec(
		"UPDATE responses SET response_text = ? WHERE id = ?", responseText, responseID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("response %d not found", responseID)
	}
	return nil
}

func scanResponses(rows *sql.Rows) ([]Response, error) {
	var responses []Response
	for rows.Next() {
		var r Response
		if err := rows.Scan(&r.ID, &r.InsightID, &r.ResponseText, &r.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
