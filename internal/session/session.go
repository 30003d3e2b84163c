// ABOUTME: Core types for the chat widget session: messages, ratings, and session state
// ABOUTME: Defines the canonical greeting and the sentinel errors shared by repositories

package session

import (
	"errors"
	"time"
)

// ErrNotFound is returned by a Repository when no session state has been persisted.
var ErrNotFound = errors.New("session state not found")

// Greeting is the canonical first message every fresh session is seeded with.
const Greeting = "Hi! I'm ChadGPT. How can I help you today?"

// DefaultRetention is how long messages survive across restores before being purged.
const DefaultRetention = 24 * time.Hour

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single chat message. Messages are immutable once created and
// only ever appended, never edited.
type Message struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Rating associates a star rating with a bot message. Ratings keep their
// insertion order so that tie-breaking stays first-encountered-wins.
type Rating struct {
	MessageID int `json:"message_id"`
	Stars     int `json:"stars"`
}

// State is the full persisted session: ordered messages, the id counter, and
// the per-message ratings in insertion order. Repositories always write the
// whole state atomically so a crash between operations never loses or
// duplicates an id.
type State struct {
	Messages []Message `json:"messages"`
	NextID   int       `json:"next_id"`
	Ratings  []Rating  `json:"ratings"`
}

// Seed returns a fresh session state containing only the canonical greeting.
func Seed(now time.Time) *State {
	return &State{
		Messages: []Message{{ID: 1, Text: Greeting, Sender: SenderBot, Timestamp: now}},
		NextID:   2,
	}
}

// BotMessage reports whether id references an existing bot message.
func (s *State) BotMessage(id int) bool {
	for _, m := range s.Messages {
		if m.ID == id {
			return m.Sender == SenderBot
		}
	}
	return false
}

// RatingFor returns the stars recorded for a message id, or 0 if unrated.
func (s *State) RatingFor(id int) int {
	for _, r := range s.Ratings {
		if r.MessageID == id {
			return r.Stars
		}
	}
	return 0
}

// Clone returns a deep copy of the state. Repositories hand out clones so
// callers can mutate freely without aliasing persisted data.
func (s *State) Clone() *State {
	c := &State{NextID: s.NextID}
	if s.Messages != nil {
		c.Messages = make([]Message, len(s.Messages))
		copy(c.Messages, s.Messages)
	}
	if s.Ratings != nil {
		c.Ratings = make([]Rating, len(s.Ratings))
		copy(c.Ratings, s.Ratings)
	}
	return c
}
