package store

import (
	"testing"
	"time"

	"github.com/nkarim/testcraft/internal/model"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s := New(ttl)
	t.Cleanup(s.Close)
	return s
}

func testState(stage model.Stage) model.SessionState {
	return model.SessionState{
		Stage:       stage,
		StudentName: "Alex",
		Answers:     model.AnswerMap{},
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t, time.Hour)

	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d sessions", s.Len())
	}

	id := s.Create(testState(model.StageReady))
	if id == "" {
		t.Fatal("expected non-empty session ID")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", s.Len())
	}

	got, ok := s.Get(id)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if got.Stage != model.StageReady || got.StudentName != "Alex" {
		t.Errorf("unexpected state %+v", got)
	}

	// Unknown ID.
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown ID")
	}

	// Update and re-read.
	next := got
	next.Stage = model.StageInProgress
	if !s.Update(id, next) {
		t.Fatal("Update should succeed for live session")
	}
	got, _ = s.Get(id)
	if got.Stage != model.StageInProgress {
		t.Errorf("expected updated stage, got %q", got.Stage)
	}

	if s.Update("missing", next) {
		t.Error("Update should fail for unknown ID")
	}

	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Error("expected session gone after delete")
	}
}

func TestDistinctIDs(t *testing.T) {
	s := newTestStore(t, time.Hour)
	a := s.Create(testState(model.StageReady))
	b := s.Create(testState(model.StageReady))
	if a == b {
		t.Error("expected distinct session IDs")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", s.Len())
	}
}

func TestExpiry(t *testing.T) {
	s := newTestStore(t, 10*time.Millisecond)

	id := s.Create(testState(model.StageReady))
	if _, ok := s.Get(id); !ok {
		t.Fatal("expected fresh session to exist")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Get(id); ok {
		t.Error("expected session expired")
	}
	if s.Update(id, testState(model.StageReady)) {
		t.Error("Update should fail for expired session")
	}
}

func TestGetSlidesExpiry(t *testing.T) {
	s := newTestStore(t, 40*time.Millisecond)

	id := s.Create(testState(model.StageInProgress))
	for range 4 {
		time.Sleep(20 * time.Millisecond)
		if _, ok := s.Get(id); !ok {
			t.Fatal("session should stay alive while accessed")
		}
	}
}

func TestRemoveExpired(t *testing.T) {
	s := newTestStore(t, time.Nanosecond)
	s.Create(testState(model.StageReady))
	s.Create(testState(model.StageReady))

	time.Sleep(time.Millisecond)
	s.removeExpired()
	if s.Len() != 0 {
		t.Errorf("expected all sessions swept, got %d", s.Len())
	}
}
