package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"aselo/backend/internal/form"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "db", "local_db.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return s
}

func testMessage(id, sender, text string) Message {
	return Message{
		ID:        id,
		Sender:    sender,
		Message:   text,
		Timestamp: time.Now().UTC(),
	}
}

func TestFileStoreGetSessionNotFound(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreAppendMessageReturnsPriorState(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	prior, err := s.AppendMessage(ctx, "s1", testMessage("m1", "user", "hello"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(prior.Messages) != 0 {
		t.Fatalf("first append should see an empty conversation, got %d messages", len(prior.Messages))
	}

	prior, err = s.AppendMessage(ctx, "s1", testMessage("m2", "bot", "hi there"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(prior.Messages) != 1 || prior.Messages[0].ID != "m1" {
		t.Fatalf("second append should see only the first message, got %+v", prior.Messages)
	}

	session, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(session.Messages))
	}
	if session.Messages[0].ID != "m1" || session.Messages[1].ID != "m2" {
		t.Fatalf("message order lost: %+v", session.Messages)
	}
}

func TestFileStoreUpdateFormCreatesSession(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	record := form.NewRecord()
	record.Child["firstName"] = "Amara"
	if err := s.UpdateForm(ctx, "s1", record); err != nil {
		t.Fatalf("update form: %v", err)
	}

	session, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.Form.Child["firstName"] != "Amara" {
		t.Fatalf("form not persisted: %+v", session.Form)
	}
}

func TestFileStoreSubmissionRoundtrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	record := form.NewRecord()
	record.Child["firstName"] = "Amara"
	submission := Submission{
		SessionID:    "s1",
		SubmissionID: "sub-1",
		FormData:     record,
		SubmittedAt:  time.Now().UTC(),
		Status:       "submitted",
	}

	if err := s.PutSubmission(ctx, submission); err != nil {
		t.Fatalf("put submission: %v", err)
	}
	loaded, err := s.GetSubmission(ctx, "s1")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if loaded.SubmissionID != "sub-1" || loaded.Status != "submitted" {
		t.Fatalf("unexpected submission: %+v", loaded)
	}
	if loaded.FormData.Child["firstName"] != "Amara" {
		t.Fatalf("form data lost: %+v", loaded.FormData)
	}

	_, err = s.GetSubmission(ctx, "other")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreListsAreSorted(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	for _, id := range []string{"s3", "s1", "s2"} {
		if _, err := s.AppendMessage(ctx, id, testMessage("m-"+id, "user", "hi")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ids, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"s1", "s2", "s3"}) {
		t.Fatalf("expected sorted session ids, got %v", ids)
	}

	ids, err = s.ListSubmissions(ctx)
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no submissions, got %v", ids)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if _, err := s.AppendMessage(ctx, "s1", testMessage("m1", "user", "hi")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := s.GetSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should report ErrNotFound, got %v", err)
	}
	if err := s.DeleteSubmission(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing submission, got %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local_db.json")
	ctx := context.Background()

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := first.AppendMessage(ctx, "s1", testMessage("m1", "user", "hi")); err != nil {
		t.Fatalf("append: %v", err)
	}
	first.Close()

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	session, err := second.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session after reopen: %v", err)
	}
	if len(session.Messages) != 1 || session.Messages[0].Message != "hi" {
		t.Fatalf("persisted data lost on reopen: %+v", session.Messages)
	}
}
