package sessionstore

import (
	"testing"
	"time"

	"github.com/assessments/shellcore/internal/recorder"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadSessionRoundTrips(t *testing.T) {
	s := openTestStore(t)
	sess := &Session{
		ID:        "sess-001",
		User:      "candidate",
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Events: []recorder.Event{
			recorder.NewCommandEvent(1000, "ls", 0),
			recorder.NewCommandEvent(2000, "pwd", 0),
		},
	}
	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadSession("sess-001")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if len(got.Events) != 2 || got.Events[1].Raw != "pwd" {
		t.Errorf("events did not round-trip: %+v", got.Events)
	}
}

func TestLoadSessionMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	got, err := s.LoadSession("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing session, got %+v", got)
	}
}

func TestLoadLastSessionReturnsMostRecent(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)
	s.SaveSession(&Session{ID: "older", User: "a", StartedAt: base})
	s.SaveSession(&Session{ID: "newer", User: "a", StartedAt: base.Add(time.Hour)})

	got, err := s.LoadLastSession()
	if err != nil {
		t.Fatalf("load last: %v", err)
	}
	if got == nil || got.ID != "newer" {
		t.Fatalf("expected 'newer', got %+v", got)
	}
}

func TestDeleteSessionRemovesRow(t *testing.T) {
	s := openTestStore(t)
	s.SaveSession(&Session{ID: "x", User: "a", StartedAt: time.Now().UTC()})
	if err := s.DeleteSession("x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.LoadSession("x")
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestListSessionIDsOrdersMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)
	s.SaveSession(&Session{ID: "first", User: "a", StartedAt: base})
	s.SaveSession(&Session{ID: "second", User: "a", StartedAt: base.Add(time.Minute)})

	ids, err := s.ListSessionIDs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "second" {
		t.Errorf("expected [second, first], got %v", ids)
	}
}
