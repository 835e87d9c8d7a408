package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// InsertGeneration persists one complete synthesis result. The row is
// written in a single statement so a failed synthesis leaves nothing behind.
func (db *DB) InsertGeneration(topic string, sourceIDs []int64, linkedIn string, thread []string, blogOutline string, feedback *string) (int64, error) {
	if topic == "" {
		return 0, fmt.Errorf("generation topic must not be empty")
	}

	idsJSON, err := json.Marshal(sourceIDs)
	if err != nil {
		return 0, err
	}
	threadJSON, err := json.Marshal(thread)
	if err != nil {
		return 0, err
	}

	result, err := db.conn.Exec(
		`INSERT INTO generations (topic, source_insight_ids, linkedin_post, twitter_thread, blog_outline, feedback)
		VALUES (?, ?, ?, ?, ?, ?)`,
		topic, string(idsJSON), linkedIn, string(threadJSON), blogOutline, feedback,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetGeneration returns a single generation by ID, or nil if not found.
func (db *DB) GetGeneration(generationID int64) (*Generation, error) {
	row := db.conn.QueryRow(
		`SELECT id, topic, source_insight_ids, linkedin_post, twitter_thread, blog_outline, feedback, created_at
		FROM generations WHERE id = ?`, generationID,
	)
	g, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetAllGenerations returns all generations, newest first.
func (db *DB) GetAllGenerations() ([]Generation, error) {
	rows, err := db.conn.Query(
		`SELECT id, topic, source_insight_ids, linkedin_post, twitter_thread, blog_outline, feedback, created_at
		FROM generations ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var generations []Generation
	for rows.Next() {
		g, err := scanGenerationRow(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, *g)
	}
	return generations, rows.Err()
}

func scanGeneration(row *sql.Row) (*Generation, error) {
	return scanGenerationRow(row)
}

func scanGenerationRow(row rowScanner) (*Generation, error) {
	var g Generation
	var idsJSON, threadJSON string
	if err := row.Scan(&g.ID, &g.Topic, &idsJSON, &g.LinkedInPost, &threadJSON,
		&g.BlogOutline, &g.Feedback, &g.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(idsJSON), &g.SourceIDs); err != nil {
		g.SourceIDs = nil
	}
	if err := json.Unmarshal([]byte(threadJSON), &g.TwitterThread); err != nil {
		g.TwitterThread = nil
	}
	return &g, nil
}
