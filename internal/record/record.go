// ABOUTME: Conversation submitter - packages a session into the backend's record format
// ABOUTME: Builds the record at session close and submits it fire-and-forget

package record

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comp423-25s/csxl-a2/internal/backend"
	"github.com/comp423-25s/csxl-a2/internal/session"
)

// DefaultOutcome is recorded when no terminal intent was observed during the
// session.
const DefaultOutcome = "Requested Information"

// Creator is what the submitter needs from the backend.
type Creator interface {
	CreateConversation(ctx context.Context, rec backend.ConversationRecord) error
}

// Build packages a session state into a conversation record. Message texts
// are mapped chronologically, per-message ratings are carried along by
// history index, and created_at is stamped at build time.
func Build(state *session.State, rating int, userID *int64, feedback, outcome string, now time.Time) backend.ConversationRecord {
	history := make([]string, len(state.Messages))
	indexByID := make(map[int]int, len(state.Messages))
	for i, m := range state.Messages {
		history[i] = m.Text
		indexByID[m.ID] = i
	}

	var messageRatings []backend.MessageRating
	for _, r := range state.Ratings {
		if idx, ok := indexByID[r.MessageID]; ok {
			messageRatings = append(messageRatings, backend.MessageRating{Index: idx, Stars: r.Stars})
		}
	}

	if outcome == "" {
		outcome = DefaultOutcome
	}

	return backend.ConversationRecord{
		CreatedAt:      now.Format(time.RFC3339),
		UserID:         userID,
		ChatHistory:    history,
		Rating:         rating,
		Feedback:       feedback,
		Outcome:        outcome,
		MessageRatings: messageRatings,
	}
}

// Submitter sends built records to the backend. Submission is fire-and-forget
// from the session's perspective: a failed submit is logged and reported but
// never blocks or rolls back local chat state.
type Submitter struct {
	creator Creator
	logger  *slog.Logger
}

// NewSubmitter creates a submitter on top of the backend client.
func NewSubmitter(creator Creator, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{
		creator: creator,
		logger:  logger.With("component", "record"),
	}
}

// Submit persists a record with the backend. Each submission gets a local
// correlation id so a failed submit can be matched against backend logs; the
// backend assigns the record's real id.
func (s *Submitter) Submit(ctx context.Context, rec backend.ConversationRecord) error {
	submissionID := uuid.NewString()
	if err := s.creator.CreateConversation(ctx, rec); err != nil {
		s.logger.Error("conversation submission failed",
			"submission_id", submissionID,
			"error", err,
			"messages", len(rec.ChatHistory),
			"outcome", rec.Outcome)
		return err
	}
	s.logger.Debug("conversation submitted",
		"submission_id", submissionID,
		"messages", len(rec.ChatHistory),
		"rating", rec.Rating,
		"outcome", rec.Outcome)
	return nil
}
