package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// GetToday returns today's date as YYYY-MM-DD.
func GetToday() string {
	return time.Now().Format("2006-01-02")
}

// LogSession records which insights were shown for a session date.
// Repeated sessions on the same date overwrite the previous log; the log is
// history only, selection never reads from it.
func (db *DB) LogSession(sessionDate string, insightIDs []int64) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO daily_sessions (session_date, insight_ids) VALUES (?, ?)",
		sessionDate, joinIDs(insightIDs),
	)
	return err
}

// MarkSessionComplete flags a session as finished.
func (db *DB) MarkSessionComplete(sessionDate string) error {
	_, err := db.conn.Exec(
		"UPDATE daily_sessions SET completed = 1 WHERE session_date = ?", sessionDate,
	)
	return err
}

// GetSession returns the session log for a date, or nil if none.
func (db *DB) GetSession(sessionDate string) (*DailySession, error) {
	row := db.conn.QueryRow(
		`SELECT id, session_date, insight_ids, completed, created_at
		FROM daily_sessions WHERE session_date = ?`, sessionDate,
	)

	var s DailySession
	var ids *string
	var completed int
	if err := row.Scan(&s.ID, &s.SessionDate, &ids, &completed, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.Completed = completed != 0
	if ids != nil {
		s.InsightIDs = splitIDs(*ids)
	}
	return &s, nil
}

// GetActionsForInsight returns the action log for an insight, newest first.
func (db *DB) GetActionsForInsight(insightID int64) ([]UserAction, error) {
	rows, err := db.conn.Query(
		`SELECT id, insight_id, action_type, action_date FROM user_actions
		WHERE insight_id = ? ORDER BY action_date DESC, id DESC`, insightID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []UserAction
	for rows.Next() {
		var a UserAction
		if err := rows.Scan(&a.ID, &a.InsightID, &a.ActionType, &a.ActionDate); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
