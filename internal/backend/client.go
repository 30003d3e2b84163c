// ABOUTME: HTTP client for the request/booking backend's JSON API
// ABOUTME: Chat, conversation submission/listing, admin pagination, and room availability

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// StatusError is returned for non-2xx backend responses. Callers treat these
// as recoverable failures, never crashes.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.StatusCode)
}

// Client talks to the backend over JSON/HTTP with bearer auth. All network
// transport details end here; the rest of the engine consumes it as an
// opaque service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. A nil httpClient falls back to
// http.DefaultClient; callers that want timeouts supply their own.
func NewClient(baseURL, token string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger.With("component", "backend"),
	}
}

// Token returns the configured bearer token, used to recover the acting
// user's identity for record submission.
func (c *Client) Token() string {
	return c.token
}

// chatRequest is the JSON body sent to POST /chat.
type chatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// chatResponse is the JSON response from POST /chat.
type chatResponse struct {
	Response string `json:"response"`
}

// Chat sends a message with its recent history and returns the bot reply.
func (c *Client) Chat(ctx context.Context, message string, history []ChatMessage) (string, error) {
	var resp chatResponse
	err := c.do(ctx, http.MethodPost, "/chat", chatRequest{Message: message, History: history}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

// CreateConversation submits a conversation record.
func (c *Client) CreateConversation(ctx context.Context, rec ConversationRecord) error {
	return c.do(ctx, http.MethodPost, "/conversations", rec, nil)
}

// ListConversations fetches all conversation records for aggregation.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationRecord, error) {
	var records []ConversationRecord
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListUserConversations fetches all conversation records for one user.
func (c *Client) ListUserConversations(ctx context.Context, userID int64) ([]ConversationRecord, error) {
	var records []ConversationRecord
	path := "/conversations/user/" + strconv.FormatInt(userID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListChatbotData fetches one page of the admin conversation listing. Sorting
// and filtering are delegated to the backend via the query.
func (c *Client) ListChatbotData(ctx context.Context, params PageParams) (*Paginated, error) {
	query := url.Values{
		"page":      {strconv.Itoa(params.Page)},
		"page_size": {strconv.Itoa(params.PageSize)},
		"order_by":  {params.OrderBy},
		"filter":    {params.Filter},
	}
	var page Paginated
	if err := c.do(ctx, http.MethodGet, "/admin/chatbot-data?"+query.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListRooms fetches availability for all rooms.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.do(ctx, http.MethodGet, "/room", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetRoom fetches availability for one room.
func (c *Client) GetRoom(ctx context.Context, id string) (*Room, error) {
	var room Room
	if err := c.do(ctx, http.MethodGet, "/room/"+url.PathEscape(id), nil, &room); err != nil {
		return nil, err
	}
	if room.ID == "" {
		room.ID = id
	}
	return &room, nil
}

// toggleResponse is the JSON response from the toggle endpoint. The value it
// carries is authoritative: server-side rules may veto the requested change.
type toggleResponse struct {
	IsAvailable bool `json:"isAvailable"`
}

// ToggleRoomAvailability requests a flip of a room's availability flag and
// returns the backend-confirmed value.
func (c *Client) ToggleRoomAvailability(ctx context.Context, id string) (bool, error) {
	var resp toggleResponse
	path := "/room/" + url.PathEscape(id) + "/toggle-availability"
	if err := c.do(ctx, http.MethodPatch, path, struct{}{}, &resp); err != nil {
		return false, err
	}
	return resp.IsAvailable, nil
}

// do performs one JSON round trip. Non-2xx responses become *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("backend request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode)
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
