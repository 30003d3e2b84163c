// ABOUTME: Session store managing the durable, time-bounded chat message history
// ABOUTME: All messages flow through here - every mutation persists the full state

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Store owns the active chat session. It keeps the working copy in memory and
// writes the full state through its Repository on every mutation, so a crash
// or reload between operations never loses or duplicates a message id.
//
// The store follows the widget's single-threaded event model: operations are
// expected to run to completion before the next one starts.
type Store struct {
	repo      Repository
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time

	state *State
}

// NewStore creates a session store on top of the given repository. A
// non-positive retention falls back to DefaultRetention.
func NewStore(repo Repository, retention time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		repo:      repo,
		retention: retention,
		logger:    logger.With("component", "session"),
		now:       time.Now,
	}
}

// Restore loads the persisted session, discards messages older than the
// retention window, and reseeds with the greeting if nothing survives. The
// normalized state is persisted immediately so a read always repairs stale
// storage. A missing session is not an error, just a fresh seed.
func (s *Store) Restore(ctx context.Context) (*State, error) {
	state, err := s.repo.Load(ctx)
	if err == ErrNotFound {
		state = Seed(s.now())
		s.logger.Debug("no persisted session, seeding greeting")
	} else if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	} else {
		s.purgeExpired(state)
	}

	if len(state.Messages) == 0 {
		state = Seed(s.now())
		s.logger.Info("session fully expired, reseeding greeting")
	}

	if err := s.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("persisting restored session: %w", err)
	}

	s.state = state
	return state, nil
}

// purgeExpired drops messages past the retention window and any ratings that
// no longer reference a surviving bot message.
func (s *Store) purgeExpired(state *State) {
	cutoff := s.now().Add(-s.retention)
	kept := state.Messages[:0]
	for _, m := range state.Messages {
		if m.Timestamp.After(cutoff) {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(state.Messages) {
		return
	}
	s.logger.Debug("purged expired messages", "purged", len(state.Messages)-len(kept))
	state.Messages = kept

	keptRatings := state.Ratings[:0]
	for _, r := range state.Ratings {
		if state.BotMessage(r.MessageID) {
			keptRatings = append(keptRatings, r)
		}
	}
	state.Ratings = keptRatings
}

// Append adds a message to the session, assigning the next id, and persists.
func (s *Store) Append(ctx context.Context, text string, sender Sender) (Message, error) {
	state, err := s.State(ctx)
	if err != nil {
		return Message{}, err
	}

	msg := Message{
		ID:        state.NextID,
		Text:      text,
		Sender:    sender,
		Timestamp: s.now(),
	}
	state.Messages = append(state.Messages, msg)
	state.NextID++

	if err := s.repo.Save(ctx, state); err != nil {
		return Message{}, fmt.Errorf("persisting session: %w", err)
	}

	s.logger.Debug("message appended", "id", msg.ID, "sender", msg.Sender)
	return msg, nil
}

// Clear erases all persisted artifacts and resets to the seeded greeting.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.state = Seed(s.now())
	if err := s.repo.Save(ctx, s.state); err != nil {
		return fmt.Errorf("persisting seeded session: %w", err)
	}
	s.logger.Info("session cleared")
	return nil
}

// State returns the working session state, restoring it on first use.
func (s *Store) State(ctx context.Context) (*State, error) {
	if s.state != nil {
		return s.state, nil
	}
	return s.Restore(ctx)
}

// Persist writes the current working state through the repository. Callers
// that mutate the state directly (the feedback aggregator) use this to keep
// storage in sync.
func (s *Store) Persist(ctx context.Context) error {
	if s.state == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.state); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}
