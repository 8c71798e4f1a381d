// Package chatlog keeps the session's chat transcript in an in-memory SQLite
// database. Nothing is written to disk; the log ends with the process.
package chatlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"marionette/internal/models"
)

// Log is an append-only sequence of chat messages.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates an empty transcript.
func Open() (*Log, error) {
	// Each log gets its own named shared-cache database so that every pooled
	// connection sees the same tables.
	dsn := fmt.Sprintf("file:chat-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			author TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &Log{db: db, now: time.Now}, nil
}

// Close releases the database; the transcript is gone afterwards.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append adds a message. author must be models.RoleUser or models.RoleAssistant.
func (l *Log) Append(author, text string) (models.ChatMessage, error) {
	if author != models.RoleUser && author != models.RoleAssistant {
		return models.ChatMessage{}, fmt.Errorf("unknown author %q", author)
	}
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		Timestamp: l.now(),
	}
	_, err := l.db.Exec(
		"INSERT INTO messages(id, author, text, created_at) VALUES(?, ?, ?, ?)",
		msg.ID,
		msg.Author,
		msg.Text,
		msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("append chat message: %w", err)
	}
	return msg, nil
}

// Messages returns the transcript in insertion order.
func (l *Log) Messages() ([]models.ChatMessage, error) {
	rows, err := l.db.Query("SELECT id, author, text, created_at FROM messages ORDER BY seq ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.ChatMessage{}
	for rows.Next() {
		var (
			m  models.ChatMessage
			ts int64
		)
		if err := rows.Scan(&m.ID, &m.Author, &m.Text, &ts); err != nil {
			return nil, err
		}
		m.Timestamp = time.Unix(0, ts)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Len is the number of messages appended so far.
func (l *Log) Len() (int, error) {
	var n int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
