// ABOUTME: Tests for conversation record building and submission
// ABOUTME: Validates chronological history mapping, rating carryover, and fire-and-forget semantics

package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comp423-25s/csxl-a2/internal/backend"
	"github.com/comp423-25s/csxl-a2/internal/session"
)

func testState() *session.State {
	now := time.Date(2025, 4, 29, 14, 30, 0, 0, time.UTC)
	return &session.State{
		Messages: []session.Message{
			{ID: 1, Text: session.Greeting, Sender: session.SenderBot, Timestamp: now},
			{ID: 2, Text: "reserve SN137 please", Sender: session.SenderUser, Timestamp: now},
			{ID: 3, Text: "I have reserved you SN137 at 1:00pm.", Sender: session.SenderBot, Timestamp: now},
		},
		NextID: 4,
		Ratings: []session.Rating{
			{MessageID: 3, Stars: 5},
			{MessageID: 1, Stars: 2},
		},
	}
}

func TestBuild_HistoryChronological(t *testing.T) {
	rec := Build(testState(), 5, nil, "", "Reserved Room", time.Now())

	require.Len(t, rec.ChatHistory, 3)
	assert.Equal(t, session.Greeting, rec.ChatHistory[0])
	assert.Equal(t, "reserve SN137 please", rec.ChatHistory[1])
	assert.Equal(t, "I have reserved you SN137 at 1:00pm.", rec.ChatHistory[2])
}

func TestBuild_MessageRatingsByHistoryIndex(t *testing.T) {
	rec := Build(testState(), 5, nil, "", "", time.Now())

	require.Len(t, rec.MessageRatings, 2)
	// Insertion order preserved; ids remapped to history indexes.
	assert.Equal(t, backend.MessageRating{Index: 2, Stars: 5}, rec.MessageRatings[0])
	assert.Equal(t, backend.MessageRating{Index: 0, Stars: 2}, rec.MessageRatings[1])
}

func TestBuild_StampsCreatedAt(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := Build(testState(), 0, nil, "", "", at)
	assert.Equal(t, "2025-05-01T09:00:00Z", rec.CreatedAt)
}

func TestBuild_DefaultOutcome(t *testing.T) {
	rec := Build(testState(), 0, nil, "", "", time.Now())
	assert.Equal(t, DefaultOutcome, rec.Outcome)

	rec = Build(testState(), 0, nil, "", "Cancelled Request", time.Now())
	assert.Equal(t, "Cancelled Request", rec.Outcome)
}

func TestBuild_UserAndFeedback(t *testing.T) {
	userID := int64(730)
	rec := Build(testState(), 4, &userID, "very helpful", "", time.Now())

	require.NotNil(t, rec.UserID)
	assert.Equal(t, int64(730), *rec.UserID)
	assert.Equal(t, "very helpful", rec.Feedback)
	assert.Equal(t, 4, rec.Rating)

	anon := Build(testState(), 4, nil, "", "", time.Now())
	assert.Nil(t, anon.UserID)
}

type fakeCreator struct {
	calls int
	err   error
	last  backend.ConversationRecord
}

func (f *fakeCreator) CreateConversation(ctx context.Context, rec backend.ConversationRecord) error {
	f.calls++
	f.last = rec
	return f.err
}

func TestSubmit_Success(t *testing.T) {
	creator := &fakeCreator{}
	sub := NewSubmitter(creator, nil)

	rec := Build(testState(), 5, nil, "", "", time.Now())
	require.NoError(t, sub.Submit(context.Background(), rec))
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, 5, creator.last.Rating)
}

func TestSubmit_FailureReported(t *testing.T) {
	creator := &fakeCreator{err: errors.New("backend down")}
	sub := NewSubmitter(creator, nil)

	rec := Build(testState(), 5, nil, "", "", time.Now())
	err := sub.Submit(context.Background(), rec)
	assert.Error(t, err)
}
