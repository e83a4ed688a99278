package store

import (
	"fmt"
	"time"
)

// Exchange is one completed question/answer pair, kept for audit. Writes are
// best-effort from the chat path: a failed insert is logged there, never
// surfaced to the caller.
type Exchange struct {
	ID        int64
	SessionID string
	UserID    *string
	Question  string
	Answer    string
	CreatedAt time.Time
}

func (s *Store) RecordExchange(sessionID string, userID *string, question, answer string) error {
	_, err := s.db.Exec(`INSERT INTO exchange_log (session_id, user_id, question, answer)
		VALUES (?, ?, ?, ?)`,
		sessionID, userID, question, answer)
	if err != nil {
		return fmt.Errorf("record exchange: %w", err)
	}
	return nil
}

// ListExchanges returns a session's audit rows, oldest first.
func (s *Store) ListExchanges(sessionID string) ([]*Exchange, error) {
	rows, err := s.db.Query(`SELECT id, session_id, user_id, question, answer, created_at
		FROM exchange_log WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []*Exchange
	for rows.Next() {
		e := &Exchange{}
		var createdAt string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.Question, &e.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
