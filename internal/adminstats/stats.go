// ABOUTME: Statistics over fetched conversation records for the analytics views
// ABOUTME: Flattened message-level rating average and per-day message histograms

package adminstats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/comp423-25s/csxl-a2/internal/backend"
)

// DataError reports a record whose data cannot be aggregated. Unparseable
// timestamps corrupt statistics silently if dropped, so they are surfaced
// instead of swallowed.
type DataError struct {
	RecordID int64
	Field    string
	Raw      string
	Err      error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("record %d: bad %s %q: %v", e.RecordID, e.Field, e.Raw, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// Stats is the aggregate view over a set of conversation records.
// AverageRating is nil when no rated messages exist, distinguishing
// "no data" from "lowest score".
type Stats struct {
	AverageRating *float64
	CountsByDay   map[string]int
}

// ComputeStats aggregates a set of conversation records. The average is
// taken over flattened message-level ratings, not record-level ratings;
// records without rated messages contribute nothing to it. Every history
// entry is bucketed by the record's local calendar date.
func ComputeStats(records []backend.ConversationRecord) (*Stats, error) {
	stats := &Stats{CountsByDay: make(map[string]int)}

	sum, count := 0, 0
	for _, rec := range records {
		created, err := time.Parse(time.RFC3339, rec.CreatedAt)
		if err != nil {
			return nil, &DataError{RecordID: rec.ID, Field: "created_at", Raw: rec.CreatedAt, Err: err}
		}
		day := created.Local().Format("2006-01-02")
		stats.CountsByDay[day] += len(rec.ChatHistory)

		for _, mr := range rec.MessageRatings {
			if mr.Stars < 1 || mr.Stars > 5 {
				return nil, &DataError{
					RecordID: rec.ID,
					Field:    "message_rating",
					Raw:      fmt.Sprintf("%d", mr.Stars),
					Err:      fmt.Errorf("stars out of range"),
				}
			}
			sum += mr.Stars
			count++
		}
	}

	if count > 0 {
		avg := float64(sum) / float64(count)
		stats.AverageRating = &avg
	}
	return stats, nil
}

// UserConversationLister is what per-user analytics needs from the backend.
type UserConversationLister interface {
	ListUserConversations(ctx context.Context, userID int64) ([]backend.ConversationRecord, error)
}

// UserStats fetches one user's conversations and aggregates them for the
// per-user analytics view.
func UserStats(ctx context.Context, lister UserConversationLister, userID int64, logger *slog.Logger) (*Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	records, err := lister.ListUserConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching conversations for user %d: %w", userID, err)
	}
	stats, err := ComputeStats(records)
	if err != nil {
		return nil, err
	}
	logger.Debug("user stats computed", "user_id", userID, "records", len(records))
	return stats, nil
}
