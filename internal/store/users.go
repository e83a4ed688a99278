package store

import (
	"database/sql"
	"fmt"
	"time"
)

// User is a row in the identity directory. No credentials live here. The
// auth subsystem that issues tokens is a separate service; this table only
// answers "who is the subject of this token".
type User struct {
	ID        string
	Email     string
	Name      string
	Mobile    string
	Active    bool
	CreatedAt time.Time
}

func (s *Store) CreateUser(u *User) error {
	active := 0
	if u.Active {
		active = 1
	}
	_, err := s.db.Exec(`INSERT INTO users (id, email, name, mobile, active)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Mobile, active)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns the user or nil when no row matches.
func (s *Store) GetUser(id string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, name, mobile, active, created_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns the user or nil when no row matches.
func (s *Store) GetUserByEmail(email string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, name, mobile, active, created_at FROM users WHERE email = ?`, email))
}

func (s *Store) ListUsers() ([]*User, error) {
	rows, err := s.db.Query(
		`SELECT id, email, name, mobile, active, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u := &User{}
		var active int
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Mobile, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Active = active != 0
		u.CreatedAt = parseTime(createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	var active int
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Mobile, &active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Active = active != 0
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}
