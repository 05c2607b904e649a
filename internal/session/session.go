// Package session keeps organizer login state and flash messages on the
// server, keyed by an opaque id carried in a signed cookie.
package session

import (
	"context"
	"errors"
	"time"
)

// Flash message levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelError   = "error"
)

// ErrNotFound is returned by stores for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Message is a one-shot notice shown on the next page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Data is the server-side session payload.
type Data struct {
	LoggedIn bool      `json:"logged_in"`
	Username string    `json:"username,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

// Session is the per-request view of a stored session. ID is empty until
// something is written.
type Session struct {
	ID   string
	Data Data
}

// Authenticated reports whether the session belongs to a logged in organizer.
func (s *Session) Authenticated() bool {
	return s != nil && s.Data.LoggedIn && s.Data.Username != ""
}

// Store persists session data.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
