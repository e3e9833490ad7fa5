package store

import (
	"database/sql"
	"fmt"
	"time"
)

// User owns courses and produces quiz attempts and flashcard reviews.
// Authentication lives in the presentation layer; this row only anchors
// ownership and per-user learning state.
type User struct {
	ID        int64
	Email     string
	Name      string
	CreatedAt int64
}

// CreateUser inserts a new user.
func (db *DB) CreateUser(email, name string) (*User, error) {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		INSERT INTO users (email, name, created_at) VALUES (?, ?, ?)
	`, email, name, now)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	id, _ := result.LastInsertId()
	return &User{ID: id, Email: email, Name: name, CreatedAt: now}, nil
}

// GetUser returns a user by ID, or nil if not found.
func (db *DB) GetUser(id int64) (*User, error) {
	var u User
	err := db.QueryRow(`
		SELECT id, email, name, created_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
