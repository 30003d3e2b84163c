// ABOUTME: Tests for the SQLite session repository
// ABOUTME: Covers round-trip exactness, not-found behavior, and clearing

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewSQLiteRepository_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "state", "session.db")

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestSQLiteRepository_LoadEmpty(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load(context.Background())
	if err != ErrNotFound {
		t.Errorf("Load on empty repo: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ts1 := time.Date(2025, 4, 29, 14, 30, 0, 123456789, time.UTC)
	ts2 := ts1.Add(45 * time.Second)
	state := &State{
		Messages: []Message{
			{ID: 1, Text: Greeting, Sender: SenderBot, Timestamp: ts1},
			{ID: 2, Text: "can I reserve SN137?", Sender: SenderUser, Timestamp: ts2},
		},
		NextID: 3,
		Ratings: []Rating{
			{MessageID: 1, Stars: 4},
		},
	}

	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got.Messages) != 2 {
		t.Fatalf("message count: got %d, want 2", len(got.Messages))
	}
	if got.NextID != 3 {
		t.Errorf("NextID: got %d, want 3", got.NextID)
	}
	for i := range state.Messages {
		if got.Messages[i].ID != state.Messages[i].ID {
			t.Errorf("message %d ID: got %d, want %d", i, got.Messages[i].ID, state.Messages[i].ID)
		}
		if got.Messages[i].Text != state.Messages[i].Text {
			t.Errorf("message %d Text: got %q, want %q", i, got.Messages[i].Text, state.Messages[i].Text)
		}
		if got.Messages[i].Sender != state.Messages[i].Sender {
			t.Errorf("message %d Sender: got %q, want %q", i, got.Messages[i].Sender, state.Messages[i].Sender)
		}
		// Timestamps must round-trip exactly, sub-second precision included.
		if !got.Messages[i].Timestamp.Equal(state.Messages[i].Timestamp) {
			t.Errorf("message %d Timestamp: got %v, want %v", i, got.Messages[i].Timestamp, state.Messages[i].Timestamp)
		}
	}
	if len(got.Ratings) != 1 || got.Ratings[0].MessageID != 1 || got.Ratings[0].Stars != 4 {
		t.Errorf("ratings mismatch: got %+v", got.Ratings)
	}
}

func TestSQLiteRepository_SaveReplacesState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	first := &State{
		Messages: []Message{{ID: 1, Text: Greeting, Sender: SenderBot, Timestamp: now}},
		NextID:   2,
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second := &State{
		Messages: []Message{
			{ID: 1, Text: Greeting, Sender: SenderBot, Timestamp: now},
			{ID: 2, Text: "hello", Sender: SenderUser, Timestamp: now},
		},
		NextID: 3,
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got.Messages) != 2 || got.NextID != 3 {
		t.Errorf("state not replaced: %d messages, NextID %d", len(got.Messages), got.NextID)
	}
}

func TestSQLiteRepository_RatingsKeepInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	state := &State{
		Messages: []Message{
			{ID: 3, Text: "a", Sender: SenderBot, Timestamp: now},
			{ID: 5, Text: "b", Sender: SenderBot, Timestamp: now},
			{ID: 7, Text: "c", Sender: SenderBot, Timestamp: now},
		},
		NextID: 8,
		// Deliberately not sorted by message id.
		Ratings: []Rating{
			{MessageID: 7, Stars: 4},
			{MessageID: 3, Stars: 2},
			{MessageID: 5, Stars: 5},
		},
	}
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []int{7, 3, 5}
	for i, r := range got.Ratings {
		if r.MessageID != want[i] {
			t.Errorf("rating %d: got message id %d, want %d", i, r.MessageID, want[i])
		}
	}
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	state := &State{
		Messages: []Message{{ID: 1, Text: Greeting, Sender: SenderBot, Timestamp: time.Now()}},
		NextID:   2,
	}
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := repo.Load(ctx); err != ErrNotFound {
		t.Errorf("Load after Clear: got %v, want ErrNotFound", err)
	}
}
