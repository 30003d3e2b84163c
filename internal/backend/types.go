// ABOUTME: Wire types for the request/booking backend consumed by the widget and admin console
// ABOUTME: Conversation records, chat messages, pagination params, and room availability

package backend

// ChatMessage is one turn of history sent to the chat endpoint.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// MessageRating carries a per-message star rating inside a submitted record,
// indexed into the record's chat history.
type MessageRating struct {
	Index int `json:"index"`
	Stars int `json:"stars"`
}

// ConversationRecord is the durable, backend-owned summary of a chat session.
// Immutable after creation; the rating is derived at submission time, never
// settable post-hoc. CreatedAt stays a raw string on the wire so the
// aggregation engine can report unparseable timestamps instead of dropping
// records silently.
type ConversationRecord struct {
	ID             int64           `json:"id,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UserID         *int64          `json:"user_id"`
	ChatHistory    []string        `json:"chat_history"`
	Rating         int             `json:"rating"`
	Feedback       string          `json:"feedback"`
	Outcome        string          `json:"outcome"`
	MessageRatings []MessageRating `json:"message_ratings,omitempty"`
}

// PageParams fully determines one page of the admin conversation listing.
// The same params are idempotent: repeating a query has no side effects.
type PageParams struct {
	Page     int    // 1-based
	PageSize int    // > 0
	OrderBy  string // backend-interpreted sort key
	Filter   string // backend-interpreted filter expression
}

// Paginated is one page of conversation records plus the total match count.
type Paginated struct {
	Items      []ConversationRecord `json:"items"`
	TotalCount int                  `json:"totalCount"`
}

// Room is the availability view of a bookable room.
type Room struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	IsAvailable bool   `json:"isAvailable"`
}
