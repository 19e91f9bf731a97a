package store

import (
	"context"
	"errors"
	"time"

	"aselo/backend/internal/form"
)

// ErrNotFound is returned when a session or submission does not exist.
var ErrNotFound = errors.New("store: not found")

// Message is one chat turn. Ordering within a session is the conversation
// order and is significant.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds a conversation and its in-progress form draft. Sessions are
// created on first reference and never explicitly expire.
type Session struct {
	SessionID string      `json:"sessionId"`
	Messages  []Message   `json:"messages"`
	Form      form.Record `json:"form"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Submission is a finalized form for a session.
type Submission struct {
	SessionID    string      `json:"sessionId"`
	SubmissionID string      `json:"submissionId"`
	FormData     form.Record `json:"formData"`
	SubmittedAt  time.Time   `json:"submitted_at"`
	Status       string      `json:"status"`
}

// Store persists session state keyed by a caller-generated session id.
// Implementations provide last-write-wins semantics; conflict detection is
// the caller's problem.
type Store interface {
	GetSession(ctx context.Context, sessionID string) (Session, error)
	PutSession(ctx context.Context, session Session) error
	// AppendMessage adds one turn, creating the session if needed, and
	// returns the session state prior to the append (the conversation the
	// new turn replies to).
	AppendMessage(ctx context.Context, sessionID string, message Message) (Session, error)
	// UpdateForm replaces the session's draft form record.
	UpdateForm(ctx context.Context, sessionID string, record form.Record) error

	GetSubmission(ctx context.Context, sessionID string) (Submission, error)
	PutSubmission(ctx context.Context, submission Submission) error

	ListSessions(ctx context.Context) ([]string, error)
	ListSubmissions(ctx context.Context) ([]string, error)

	DeleteSession(ctx context.Context, sessionID string) error
	DeleteSubmission(ctx context.Context, sessionID string) error

	Close()
}

func newSession(sessionID string, now time.Time) Session {
	return Session{
		SessionID: sessionID,
		Messages:  []Message{},
		Form:      form.NewRecord(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
