package storage

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/workflow"
)

func newSession(id string, created time.Time, clock time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  created,
		Controller: workflow.New(nil, workflow.WithClock(func() time.Time { return clock })),
	}
}

func TestSessionStore(t *testing.T) {
	store := New()
	now := time.Now()

	store.Set(newSession("b", now.Add(time.Minute), now))
	store.Set(newSession("a", now, now))

	if _, ok := store.Get("a"); !ok {
		t.Fatal("expected session a")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("did not expect a session for an unknown id")
	}

	list := store.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("List order = %v", ids(list))
	}

	if !store.Delete("a") {
		t.Error("Delete(a) should report removal")
	}
	if store.Delete("a") {
		t.Error("second Delete(a) should report nothing removed")
	}
}

func TestPrune(t *testing.T) {
	store := New()
	now := time.Now()

	store.Set(newSession("old", now, now.Add(-2*time.Hour)))
	store.Set(newSession("fresh", now, now))

	if removed := store.Prune(now.Add(-time.Hour)); removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, ok := store.Get("old"); ok {
		t.Error("old session should be pruned")
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Error("fresh session should survive")
	}
}

func ids(sessions []*Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
