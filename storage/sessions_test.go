package storage

import (
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SessionStorage {
	t.Helper()
	s, err := NewSessionStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return s
}

func TestSessionSaveLoad(t *testing.T) {
	s := newTestStorage(t)

	session := &Session{
		Name:      "test chat",
		AgentType: "web_search",
		Model:     "gpt-4o",
		Messages: []Message{
			{Role: "user", Content: "hello", Timestamp: time.Now()},
			{Role: "assistant", Content: "hi there", Timestamp: time.Now()},
		},
		SystemPrompt: "be brief",
	}

	if err := s.Save(session); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("save did not assign an ID")
	}
	if session.CreatedAt.IsZero() || session.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	loaded, err := s.Load(session.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "test chat" || loaded.AgentType != "web_search" {
		t.Errorf("loaded session = %+v", loaded)
	}
	if len(loaded.Messages) != 2 || loaded.Messages[1].Content != "hi there" {
		t.Errorf("messages not preserved: %+v", loaded.Messages)
	}
}

func TestSessionListOrder(t *testing.T) {
	s := newTestStorage(t)

	old := &Session{Name: "old"}
	if err := s.Save(old); err != nil {
		t.Fatal(err)
	}
	// Force a distinct UpdatedAt ordering.
	time.Sleep(10 * time.Millisecond)
	recent := &Session{Name: "recent"}
	if err := s.Save(recent); err != nil {
		t.Fatal(err)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d sessions, want 2", len(list))
	}
	if list[0].Name != "recent" {
		t.Errorf("first listed = %q, want newest first", list[0].Name)
	}
}

func TestSessionDelete(t *testing.T) {
	s := newTestStorage(t)

	session := &Session{Name: "doomed"}
	if err := s.Save(session); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(session.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Load(session.ID); err == nil {
		t.Error("loaded a deleted session")
	}
}

func TestCurrentSessionID(t *testing.T) {
	s := newTestStorage(t)

	if err := s.SaveCurrentSessionID("abc-123"); err != nil {
		t.Fatal(err)
	}
	id, err := s.LoadCurrentSessionID()
	if err != nil {
		t.Fatal(err)
	}
	if id != "abc-123" {
		t.Errorf("current session id = %q", id)
	}
}

func TestRenameSession(t *testing.T) {
	s := newTestStorage(t)

	session := &Session{Name: "before"}
	if err := s.Save(session); err != nil {
		t.Fatal(err)
	}
	if err := s.RenameSession(session.ID, "after"); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "after" {
		t.Errorf("name = %q, want after", loaded.Name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"normal-name", "normal-name"},
		{"with spaces here", "with-spaces-here"},
		{"slashes/and\\backslashes", "slashes-and-backslashes"},
		{"..leading.dots..", "leading.dots"},
		{"", "session"},
		{"***", "session"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateSessionName(t *testing.T) {
	if got := GenerateSessionName("short question"); got != "short question" {
		t.Errorf("name = %q", got)
	}

	long := strings.Repeat("x", 60)
	if got := GenerateSessionName(long); got != strings.Repeat("x", 30)+"..." {
		t.Errorf("long name = %q", got)
	}

	if got := GenerateSessionName(""); !strings.HasPrefix(got, "Session ") {
		t.Errorf("empty message name = %q", got)
	}
}

func TestSearchMessages(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "contains needle but is system"},
		{Role: "user", Content: "where is the needle?"},
		{Role: "assistant", Content: "in the haystack"},
		{Role: "user", Content: "NEEDLE again, uppercase"},
	}

	matches := SearchMessages(messages, "needle")
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2 (system excluded, case-insensitive)", len(matches))
	}
	if matches[0].MessageIndex != 1 || matches[1].MessageIndex != 3 {
		t.Errorf("match indices = %d, %d", matches[0].MessageIndex, matches[1].MessageIndex)
	}

	if got := SearchMessages(messages, ""); len(got) != 0 {
		t.Error("empty query should match nothing")
	}
}

func TestSessionLock(t *testing.T) {
	s := newTestStorage(t)

	session := &Session{Name: "locked"}
	if err := s.Save(session); err != nil {
		t.Fatal(err)
	}

	locked, err := s.CheckSessionLock(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if locked {
		t.Error("fresh session reported locked")
	}

	if err := s.LockSession(session.ID); err != nil {
		t.Fatal(err)
	}
	locked, err = s.CheckSessionLock(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !locked {
		t.Error("session not reported locked after LockSession")
	}

	if err := s.UnlockSession(session.ID); err != nil {
		t.Fatal(err)
	}
	locked, _ = s.CheckSessionLock(session.ID)
	if locked {
		t.Error("session still locked after UnlockSession")
	}
}
