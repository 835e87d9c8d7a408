package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

const insightColumns = `id, content, source_url, shared_by, shared_date, context_message,
	content_category, tags, quality_score, extracted_text, extraction_status,
	status, last_shown_date, times_shown, times_skipped, is_duplicate,
	duplicate_of, useful_for_daily, created_at`

// NewInsight holds the fields needed to create an insight. Category, tags,
// quality and useful_for_daily come from the classifier, never hand-picked.
type NewInsight struct {
	Content        string
	SourceURL      *string
	SharedBy       *string
	SharedDate     *string
	ContextMessage *string
	Category       string
	Tags           []string
	QualityScore   int
	UsefulForDaily bool
}

// InsertInsight creates a new insight record and returns its ID.
func (db *DB) InsertInsight(in NewInsight) (int64, error) {
	if in.Content == "" {
		return 0, fmt.Errorf("insight content must not be empty")
	}
	tagsJSON, err := marshalTags(in.Tags)
	if err != nil {
		return 0, err
	}

	result, err := db.conn.Exec(
		`INSERT INTO insights (content, source_url, shared_by, shared_date, context_message,
		content_category, tags, quality_score, useful_for_daily)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Content, in.SourceURL, in.SharedBy, in.SharedDate, in.ContextMessage,
		in.Category, tagsJSON, in.QualityScore, boolToInt(in.UsefulForDaily),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetInsight returns a single insight by ID, or nil if not found.
func (db *DB) GetInsight(insightID int64) (*Insight, error) {
	row := db.conn.QueryRow(
		"SELECT "+insightColumns+" FROM insights WHERE id = ?", insightID,
	)
	i, err := scanInsight(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return i, nil
}

// GetSearchCandidates returns the searchable pool: useful insights that are
// not junk, personal, or duplicate markers.
func (db *DB) GetSearchCandidates() ([]Insight, error) {
	rows, err := db.conn.Query(
		`SELECT ` + insightColumns + ` FROM insights
		WHERE useful_for_daily = 1
		AND content_category NOT IN ('junk', 'personal')
		AND is_duplicate = 0
		ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsights(rows)
}

// GetDailyCandidates returns insights eligible for a daily session:
// pending, useful, and not duplicates.
func (db *DB) GetDailyCandidates() ([]Insight, error) {
	rows, err := db.conn.Query(
		`SELECT ` + insightColumns + ` FROM insights
		WHERE status = 'pending'
		AND useful_for_daily = 1
		AND is_duplicate = 0
		ORDER BY quality_score DESC, times_skipped ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsights(rows)
}

// GetInsightsNeedingExtraction returns link insights whose text has not been
// extracted yet.
func (db *DB) GetInsightsNeedingExtraction(limit int) ([]Insight, error) {
	query := `SELECT ` + insightColumns + ` FROM insights
		WHERE source_url IS NOT NULL AND source_url != ''
		AND extraction_status = 'pending'
		AND is_duplicate = 0
		ORDER BY quality_score DESC, id ASC`
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
	return scanInsights(rows)
}

// GetRecentInsights returns the most recently created insights.
func (db *DB) GetRecentInsights(limit int) ([]Insight, error) {
	rows, err := db.conn.Query(
		"SELECT "+insightColumns+" FROM insights ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInsights(rows)
}

// UpdateClassification rewrites category, tags, quality and the derived
// useful_for_daily flag in one statement.
func (db *DB) UpdateClassification(insightID int64, category string, tags []string, quality int, usefulForDaily bool) error {
	tagsJSON, err := marshalTags(tags)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`UPDATE insights SET content_category = ?, tags = ?, quality_score = ?, useful_for_daily = ?
		WHERE id = ?`,
		category, tagsJSON, quality, boolToInt(usefulForDaily), insightID,
	)
	return err
}

// UpdateExtraction stores the extracted text and status for an insight.
// UpdateQuality overwrites the quality score, typically after extraction
// made more text available.
func (db *DB) UpdateQuality(insightID int64, quality int) error {
	_, err := db.conn.Exec(
		"UPDATE insights SET quality_score = ? WHERE id = ?", quality, insightID,
	)
	return err
}

func (db *DB) UpdateExtraction(insightID int64, extractedText *string, status string) error {
	_, err := db.conn.Exec(
		"UPDATE insights SET extracted_text = ?, extraction_status = ? WHERE id = ?",
		extractedText, status, insightID,
	)
	return err
}

// MarkDuplicate flags an insight as a duplicate of a canonical record.
// The back-reference is weak: the canonical row may later be archived and
// readers must tolerate a dangling id.
func (db *DB) MarkDuplicate(duplicateID, canonicalID int64) error {
	_, err := db.conn.Exec(
		"UPDATE insights SET is_duplicate = 1, duplicate_of = ?, useful_for_daily = 0 WHERE id = ?",
		canonicalID, duplicateID,
	)
	return err
}

// ArchiveInsight soft-deletes an insight and logs the action.
func (db *DB) ArchiveInsight(insightID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE insights SET status = 'archived' WHERE id = ?", insightID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("insight %d not found", insightID)
	}
	if _, err := tx.Exec(
		"INSERT INTO user_actions (insight_id, action_type) VALUES (?, 'archived')", insightID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// SkipInsight increments the skip counter and logs the action.
func (db *DB) SkipInsight(insightID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE insights SET times_skipped = times_skipped + 1 WHERE id = ?", insightID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("insight %d not found", insightID)
	}
	if _, err := tx.Exec(
		"INSERT INTO user_actions (insight_id, action_type) VALUES (?, 'skipped')", insightID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordShown stamps last_shown_date, bumps the exposure counter, and logs
// the action for each selected insight.
func (db *DB) RecordShown(insightIDs []int64, shownDate string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range insightIDs {
		if _, err := tx.Exec(
			"UPDATE insights SET last_shown_date = ?, times_shown = times_shown + 1 WHERE id = ?",
			shownDate, id,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO user_actions (insight_id, action_type) VALUES (?, 'shown')", id,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func marshalTags(tags []string) (*string, error) {
	if tags == nil {
		return nil, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanInsights(rows *sql.Rows) ([]Insight, error) {
	var insights []Insight
	for rows.Next() {
		i, err := scanInsightRow(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, *i)
	}
	return insights, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInsight(row *sql.Row) (*Insight, error) {
	return scanInsightRow(row)
}

func scanInsightRow(row rowScanner) (*Insight, error) {
	var i Insight
	var tagsJSON *string
	var isDup, useful int
	if err := row.Scan(&i.ID, &i.Content, &i.SourceURL, &i.SharedBy, &i.SharedDate,
		&i.ContextMessage, &i.Category, &tagsJSON, &i.QualityScore, &i.ExtractedText,
		&i.ExtractionStatus, &i.Status, &i.LastShownDate, &i.TimesShown,
		&i.TimesSkipped, &isDup, &i.DuplicateOf, &useful, &i.CreatedAt); err != nil {
		return nil, err
	}
	i.IsDuplicate = isDup != 0
	i.UsefulForDaily = useful != 0
	if tagsJSON != nil {
		if err := json.Unmarshal([]byte(*tagsJSON), &i.Tags); err != nil {
			i.Tags = nil
		}
	}
	return &i, nil
}
