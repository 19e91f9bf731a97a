package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"aselo/backend/internal/form"
)

// FileStore keeps the whole database in a single local JSON document and
// rewrites it on every mutation. Adequate for the single-session-at-a-time
// workload this service handles; a mutex serializes writers inside the
// process, last write wins across processes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Sessions    map[string]Session    `json:"sessions"`
	Submissions map[string]Submission `json:"form_submissions"`
	Metadata    fileMetadata          `json:"metadata"`
}

type fileMetadata struct {
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		initial := fileDocument{
			Sessions:    map[string]Session{},
			Submissions: map[string]Submission{},
			Metadata: fileMetadata{
				CreatedAt:   time.Now().UTC(),
				Version:     "1.0.0",
				Description: "Aselo Backend Local Database",
			},
		}
		if err := s.write(initial); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) read() (fileDocument, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fileDocument{}, fmt.Errorf("read database: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("decode database: %w", err)
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]Session{}
	}
	if doc.Submissions == nil {
		doc.Submissions = map[string]Submission{}
	}
	return doc, nil
}

func (s *FileStore) write(doc fileDocument) error {
	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}
	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		return fmt.Errorf("write database: %w", err)
	}
	return nil
}

func (s *FileStore) GetSession(_ context.Context, sessionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return Session{}, err
	}
	session, ok := doc.Sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *FileStore) PutSession(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()
	doc.Sessions[session.SessionID] = session
	return s.write(doc)
}

func (s *FileStore) AppendMessage(_ context.Context, sessionID string, message Message) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	session, ok := doc.Sessions[sessionID]
	if !ok {
		session = newSession(sessionID, now)
	}
	prior := session
	priorMessages := make([]Message, len(session.Messages))
	copy(priorMessages, session.Messages)
	prior.Messages = priorMessages

	session.Messages = append(session.Messages, message)
	session.UpdatedAt = now
	doc.Sessions[sessionID] = session
	if err := s.write(doc); err != nil {
		return Session{}, err
	}
	return prior, nil
}

func (s *FileStore) UpdateForm(_ context.Context, sessionID string, record form.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	session, ok := doc.Sessions[sessionID]
	if !ok {
		session = newSession(sessionID, now)
	}
	session.Form = record
	session.UpdatedAt = now
	doc.Sessions[sessionID] = session
	return s.write(doc)
}

func (s *FileStore) GetSubmission(_ context.Context, sessionID string) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return Submission{}, err
	}
	submission, ok := doc.Submissions[sessionID]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return submission, nil
}

func (s *FileStore) PutSubmission(_ context.Context, submission Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Submissions[submission.SessionID] = submission
	return s.write(doc)
}

func (s *FileStore) ListSessions(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedKeys(doc.Sessions), nil
}

func (s *FileStore) ListSubmissions(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return sortedKeys(doc.Submissions), nil
}

func (s *FileStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(doc.Sessions, sessionID)
	return s.write(doc)
}

func (s *FileStore) DeleteSubmission(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Submissions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(doc.Submissions, sessionID)
	return s.write(doc)
}

func (s *FileStore) Close() {}

func sortedKeys[V any](input map[string]V) []string {
	keys := make([]string, 0, len(input))
	for key := range input {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
