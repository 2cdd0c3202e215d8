package history

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	events := []*Event{
		{Package: "lazygit", Action: ActionInstall, NewSource: "COPR:atim/lazygit:lazygit", At: now.Add(-2 * time.Hour)},
		{Package: "lazygit", Action: ActionMigrate, OldSource: "COPR:atim/lazygit:lazygit", NewSource: "official", At: now.Add(-time.Hour)},
		{Package: "htop", Action: ActionRemove, OldSource: "official", At: now},
	}
	for _, e := range events {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		if e.ID == 0 {
			t.Error("Record() should set a non-zero ID")
		}
	}

	got, err := s.List("", 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() returned %d events, want 3", len(got))
	}

	// Newest first.
	if got[0].Package != "htop" {
		t.Errorf("List()[0].Package = %q, want htop", got[0].Package)
	}
	if !got[0].At.Equal(now) {
		t.Errorf("List()[0].At = %v, want %v", got[0].At, now)
	}
}

func TestListFilterByAction(t *testing.T) {
	s := newTestStore(t)

	for _, e := range []*Event{
		{Package: "a", Action: ActionInstall},
		{Package: "b", Action: ActionMigrate},
		{Package: "c", Action: ActionMigrate},
	} {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	got, err := s.List(ActionMigrate, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(migrate) returned %d events, want 2", len(got))
	}
	for _, e := range got {
		if e.Action != ActionMigrate {
			t.Errorf("event %d action = %q, want %q", e.ID, e.Action, ActionMigrate)
		}
	}
}

func TestListLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Record(&Event{Package: "pkg", Action: ActionInstall}); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	got, err := s.List("", 2)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(limit=2) returned %d events, want 2", len(got))
	}
}

func TestCountByAction(t *testing.T) {
	s := newTestStore(t)

	for _, e := range []*Event{
		{Package: "a", Action: ActionInstall},
		{Package: "b", Action: ActionInstall},
		{Package: "c", Action: ActionRemove},
	} {
		if err := s.Record(e); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	counts, err := s.CountByAction()
	if err != nil {
		t.Fatalf("CountByAction() failed: %v", err)
	}
	if counts[ActionInstall] != 2 {
		t.Errorf("counts[install] = %d, want 2", counts[ActionInstall])
	}
	if counts[ActionRemove] != 1 {
		t.Errorf("counts[remove] = %d, want 1", counts[ActionRemove])
	}
	if counts[ActionMigrate] != 0 {
		t.Errorf("counts[migrate] = %d, want 0", counts[ActionMigrate])
	}
}
