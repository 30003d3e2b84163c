// ABOUTME: Feedback aggregator capturing per-message star ratings on bot messages
// ABOUTME: Derives the session-level rating from the highest-rated message seen so far

package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/comp423-25s/csxl-a2/internal/session"
)

// ErrInvalidRating is returned when the stars are out of range or the message
// id does not reference an existing bot message.
var ErrInvalidRating = errors.New("invalid rating")

// SessionState is what the aggregator needs from the session store.
type SessionState interface {
	State(ctx context.Context) (*session.State, error)
	Persist(ctx context.Context) error
}

// Aggregator records ratings against the active session and persists them
// through the session store.
type Aggregator struct {
	sessions SessionState
	logger   *slog.Logger
}

// New creates a feedback aggregator on top of the session store.
func New(sessions SessionState, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		sessions: sessions,
		logger:   logger.With("component", "feedback"),
	}
}

// Rate stores (or overwrites) a star rating for a bot message. Stars must be
// in [1,5] and messageID must reference an existing bot message; anything
// else fails with ErrInvalidRating and leaves the session untouched.
func (a *Aggregator) Rate(ctx context.Context, messageID, stars int) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("%w: stars must be between 1 and 5, got %d", ErrInvalidRating, stars)
	}

	state, err := a.sessions.State(ctx)
	if err != nil {
		return err
	}
	if !state.BotMessage(messageID) {
		return fmt.Errorf("%w: message %d is not a bot message", ErrInvalidRating, messageID)
	}

	overwritten := false
	for i, r := range state.Ratings {
		if r.MessageID == messageID {
			state.Ratings[i].Stars = stars
			overwritten = true
			break
		}
	}
	if !overwritten {
		state.Ratings = append(state.Ratings, session.Rating{MessageID: messageID, Stars: stars})
	}

	if err := a.sessions.Persist(ctx); err != nil {
		return err
	}

	a.logger.Debug("message rated", "message_id", messageID, "stars", stars, "overwrite", overwritten)
	return nil
}

// SessionRating returns the stars of the highest-rated message seen so far,
// or 0 when nothing has been rated. Ties resolve to the first-encountered
// rating in insertion order.
//
// This is deliberately not an average: the heuristic treats the best-rated
// response as a proxy for the user's terminal satisfaction and discards every
// other signal. The backend stores the single integer as-is.
func (a *Aggregator) SessionRating(ctx context.Context) (int, error) {
	state, err := a.sessions.State(ctx)
	if err != nil {
		return 0, err
	}

	best := 0
	for _, r := range state.Ratings {
		if r.Stars > best {
			best = r.Stars
		}
	}
	return best, nil
}
