// ABOUTME: Chat widget engine - open/send/close lifecycle over the session store
// ABOUTME: Recovers from backend failures with an apologetic bot message, submits one record per closed session

package widget

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/comp423-25s/csxl-a2/internal/backend"
	"github.com/comp423-25s/csxl-a2/internal/feedback"
	"github.com/comp423-25s/csxl-a2/internal/intent"
	"github.com/comp423-25s/csxl-a2/internal/record"
	"github.com/comp423-25s/csxl-a2/internal/session"
)

// Apology is appended as a bot message when the chat backend fails. The
// session continues; the failure is recovered, not surfaced as an error.
const Apology = "Sorry, I'm having trouble reaching the assistant right now. Please try again in a moment."

// historyLimit caps how many prior messages are sent as chat context.
const historyLimit = 10

// roomMention matches room names like SN137 in outgoing messages.
var roomMention = regexp.MustCompile(`(?i)\b(SN\d{3,4})\b`)

// ChatBackend is what the widget needs from the backend client.
type ChatBackend interface {
	Chat(ctx context.Context, message string, history []backend.ChatMessage) (string, error)
	GetRoom(ctx context.Context, id string) (*backend.Room, error)
}

// Reply is the bot message produced by one Send, tagged with its classified
// intent for rendering decisions.
type Reply struct {
	Message   session.Message
	Category  intent.Category
	Recovered bool // true when the reply is the apology for a backend failure
}

// Widget drives one chat session end to end. It follows the single-threaded
// event model: one operation at a time, network calls are the only
// suspension points.
type Widget struct {
	sessions  *session.Store
	ratings   *feedback.Aggregator
	submitter *record.Submitter
	chat      ChatBackend
	logger    *slog.Logger
	now       func() time.Time

	userID      *int64
	lastOutcome string
	submitted   bool
}

// New creates a widget engine. userID may be nil for anonymous sessions.
func New(sessions *session.Store, ratings *feedback.Aggregator, submitter *record.Submitter, chat ChatBackend, userID *int64, logger *slog.Logger) *Widget {
	if logger == nil {
		logger = slog.Default()
	}
	return &Widget{
		sessions:  sessions,
		ratings:   ratings,
		submitter: submitter,
		chat:      chat,
		logger:    logger.With("component", "widget"),
		now:       time.Now,
		userID:    userID,
		submitted: true, // nothing to submit until there is activity
	}
}

// Open restores the session and returns its messages for rendering.
func (w *Widget) Open(ctx context.Context) ([]session.Message, error) {
	state, err := w.sessions.Restore(ctx)
	if err != nil {
		return nil, err
	}
	return state.Messages, nil
}

// Send appends the user's message, asks the backend for a reply, and appends
// the classified bot response. A failed backend call degrades to the apology
// message instead of an error. Blank input is ignored and returns nil.
func (w *Widget) Send(ctx context.Context, text string) (*Reply, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	state, err := w.sessions.State(ctx)
	if err != nil {
		return nil, err
	}
	history := chatHistory(state.Messages)

	// Record first, then act: the user message is persisted before the
	// backend is involved, so there is a record even if the call fails.
	if _, err := w.sessions.Append(ctx, trimmed, session.SenderUser); err != nil {
		return nil, err
	}
	w.submitted = false

	// Opportunistic room pre-check: a mentioned room that is known to be
	// unavailable short-circuits with a local notice. Lookup errors are
	// ignored; this is advisory only.
	if name := roomMention.FindString(trimmed); name != "" {
		room, err := w.chat.GetRoom(ctx, strings.ToUpper(name))
		if err == nil && !room.IsAvailable {
			return w.appendBot(ctx, fmt.Sprintf("Room %s is currently unavailable. Would you like to try another room?", strings.ToUpper(name)))
		}
	}

	reply, err := w.chat.Chat(ctx, trimmed, history)
	if err != nil {
		w.logger.Warn("chat backend failed, substituting apology", "error", err)
		r, appendErr := w.appendBot(ctx, Apology)
		if appendErr != nil {
			return nil, appendErr
		}
		r.Recovered = true
		return r, nil
	}

	return w.appendBot(ctx, reply)
}

// appendBot appends a bot message and classifies it, tracking the last
// terminal intent as the session outcome.
func (w *Widget) appendBot(ctx context.Context, text string) (*Reply, error) {
	msg, err := w.sessions.Append(ctx, text, session.SenderBot)
	if err != nil {
		return nil, err
	}
	category := intent.Classify(text)
	if outcome, ok := category.Outcome(); ok {
		w.lastOutcome = outcome
	}
	return &Reply{Message: msg, Category: category}, nil
}

// Rate records a star rating for a bot message.
func (w *Widget) Rate(ctx context.Context, messageID, stars int) error {
	return w.ratings.Rate(ctx, messageID, stars)
}

// Close submits the session as a conversation record. Exactly one record is
// submitted per closed session: closing again without new activity is a
// no-op, and a failed submission is logged but never blocks local state.
func (w *Widget) Close(ctx context.Context, feedbackText string) error {
	if w.submitted {
		return nil
	}

	state, err := w.sessions.State(ctx)
	if err != nil {
		return err
	}
	rating, err := w.ratings.SessionRating(ctx)
	if err != nil {
		return err
	}

	rec := record.Build(state, rating, w.userID, feedbackText, w.lastOutcome, w.now())
	w.submitted = true
	if err := w.submitter.Submit(ctx, rec); err != nil {
		// Fire-and-forget: the session is closed either way.
		w.logger.Warn("record submission failed on close", "error", err)
	}
	return nil
}

// Reset clears the session back to the seeded greeting and erases all
// persisted artifacts.
func (w *Widget) Reset(ctx context.Context) error {
	if err := w.sessions.Clear(ctx); err != nil {
		return err
	}
	w.lastOutcome = ""
	w.submitted = true
	return nil
}

// chatHistory maps the most recent messages into the backend's history
// format, oldest first.
func chatHistory(messages []session.Message) []backend.ChatMessage {
	start := 0
	if len(messages) > historyLimit {
		start = len(messages) - historyLimit
	}
	history := make([]backend.ChatMessage, 0, len(messages)-start)
	for _, m := range messages[start:] {
		role := "user"
		if m.Sender == session.SenderBot {
			role = "assistant"
		}
		history = append(history, backend.ChatMessage{Role: role, Content: m.Text})
	}
	return history
}
