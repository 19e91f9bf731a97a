package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aselo/backend/internal/form"
)

// PostgresStore is the Store implementation used when DATABASE_URL is set.
// It bootstraps its own schema so a fresh database works without a
// migration step.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, rawURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(normalizeDatabaseURL(rawURL))
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func normalizeDatabaseURL(rawURL string) string {
	normalized := strings.TrimSpace(rawURL)
	if strings.HasPrefix(normalized, "postgresql+psycopg://") {
		normalized = strings.Replace(normalized, "postgresql+psycopg://", "postgres://", 1)
	}
	if strings.HasPrefix(normalized, "postgresql://") {
		normalized = strings.Replace(normalized, "postgresql://", "postgres://", 1)
	}
	return normalized
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS "Session" (
			id TEXT PRIMARY KEY,
			"formJson" TEXT NOT NULL DEFAULT '{}',
			"createdAt" TIMESTAMPTZ NOT NULL,
			"updatedAt" TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS "SessionMessage" (
			id TEXT PRIMARY KEY,
			"sessionId" TEXT NOT NULL REFERENCES "Session"(id) ON DELETE CASCADE,
			sender TEXT NOT NULL,
			content TEXT NOT NULL,
			"createdAt" TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS "SessionMessage_sessionId_createdAt_idx"
			ON "SessionMessage" ("sessionId", "createdAt")`,
		`CREATE TABLE IF NOT EXISTS "FormSubmission" (
			"sessionId" TEXT PRIMARY KEY,
			"submissionId" TEXT NOT NULL,
			"formJson" TEXT NOT NULL,
			status TEXT NOT NULL,
			"submittedAt" TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, sessionID string) (Session, error) {
	session := Session{SessionID: sessionID}
	var formRaw []byte
	err := s.pool.QueryRow(
		ctx,
		`SELECT "formJson", "createdAt", "updatedAt" FROM "Session" WHERE id = $1`,
		sessionID,
	).Scan(&formRaw, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	session.Form = decodeFormJSON(formRaw)

	messages, err := s.loadMessages(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	session.Messages = messages
	return session, nil
}

func (s *PostgresStore) loadMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, sender, content, "createdAt"
		 FROM "SessionMessage"
		 WHERE "sessionId" = $1
		 ORDER BY "createdAt" ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, 16)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Message, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *PostgresStore) PutSession(ctx context.Context, session Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if _, err := s.pool.Exec(
		ctx,
		`INSERT INTO "Session" (id, "formJson", "createdAt", "updatedAt")
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET "formJson" = $2, "updatedAt" = $4`,
		session.SessionID,
		encodeFormJSON(session.Form),
		session.CreatedAt,
		now,
	); err != nil {
		return err
	}

	if _, err := s.pool.Exec(
		ctx,
		`DELETE FROM "SessionMessage" WHERE "sessionId" = $1`,
		session.SessionID,
	); err != nil {
		return err
	}
	for _, msg := range session.Messages {
		if err := s.insertMessage(ctx, session.SessionID, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) insertMessage(ctx context.Context, sessionID string, msg Message) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO "SessionMessage" (id, "sessionId", sender, content, "createdAt")
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID,
		sessionID,
		msg.Sender,
		msg.Message,
		msg.Timestamp.UTC(),
	)
	return err
}

func (s *PostgresStore) ensureSessionRow(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO "Session" (id, "formJson", "createdAt", "updatedAt")
		 VALUES ($1, '{}', NOW(), NOW())
		 ON CONFLICT (id) DO NOTHING`,
		sessionID,
	)
	return err
}

func (s *PostgresStore) AppendMessage(ctx context.Context, sessionID string, message Message) (Session, error) {
	if err := s.ensureSessionRow(ctx, sessionID); err != nil {
		return Session{}, err
	}
	prior, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if err := s.insertMessage(ctx, sessionID, message); err != nil {
		return Session{}, err
	}
	_, _ = s.pool.Exec(ctx, `UPDATE "Session" SET "updatedAt" = NOW() WHERE id = $1`, sessionID)
	return prior, nil
}

func (s *PostgresStore) UpdateForm(ctx context.Context, sessionID string, record form.Record) error {
	if err := s.ensureSessionRow(ctx, sessionID); err != nil {
		return err
	}
	_, err := s.pool.Exec(
		ctx,
		`UPDATE "Session" SET "formJson" = $2, "updatedAt" = NOW() WHERE id = $1`,
		sessionID,
		encodeFormJSON(record),
	)
	return err
}

func (s *PostgresStore) GetSubmission(ctx context.Context, sessionID string) (Submission, error) {
	submission := Submission{SessionID: sessionID}
	var formRaw []byte
	err := s.pool.QueryRow(
		ctx,
		`SELECT "submissionId", "formJson", status, "submittedAt"
		 FROM "FormSubmission" WHERE "sessionId" = $1`,
		sessionID,
	).Scan(&submission.SubmissionID, &formRaw, &submission.Status, &submission.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	if err != nil {
		return Submission{}, err
	}
	submission.FormData = decodeFormJSON(formRaw)
	return submission, nil
}

func (s *PostgresStore) PutSubmission(ctx context.Context, submission Submission) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO "FormSubmission" ("sessionId", "submissionId", "formJson", status, "submittedAt")
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT ("sessionId") DO UPDATE
		 SET "submissionId" = $2, "formJson" = $3, status = $4, "submittedAt" = $5`,
		submission.SessionID,
		submission.SubmissionID,
		encodeFormJSON(submission.FormData),
		submission.Status,
		submission.SubmittedAt.UTC(),
	)
	return err
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]string, error) {
	return s.listIDs(ctx, `SELECT id FROM "Session" ORDER BY id ASC`)
}

func (s *PostgresStore) ListSubmissions(ctx context.Context) ([]string, error) {
	return s.listIDs(ctx, `SELECT "sessionId" FROM "FormSubmission" ORDER BY "sessionId" ASC`)
}

func (s *PostgresStore) listIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) DeleteSession(ctx context.Context, sessionID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM "Session" WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSubmission(ctx context.Context, sessionID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM "FormSubmission" WHERE "sessionId" = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func encodeFormJSON(record form.Record) string {
	encoded, err := json.Marshal(record)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeFormJSON(raw []byte) form.Record {
	record := form.NewRecord()
	if len(raw) == 0 {
		return record
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return form.NewRecord()
	}
	return record
}
