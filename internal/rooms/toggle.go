// ABOUTME: Optimistic toggle controller for room availability mutations
// ABOUTME: Pending-set guarded state machine - the display only ever shows confirmed server state

package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/comp423-25s/csxl-a2/internal/backend"
)

// ErrAlreadyPending is returned when a toggle is requested for a room that
// already has an in-flight mutation. It is a soft guard against duplicate
// rapid clicks, not a hard failure: no second request is issued.
var ErrAlreadyPending = errors.New("toggle already pending")

// ErrUnknownRoom is returned when toggling a room that was never loaded.
var ErrUnknownRoom = errors.New("unknown room")

// State is the per-room toggle lifecycle.
type State int

const (
	StateIdle State = iota
	StatePending
	StateConfirmed
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// API is what the controller needs from the backend.
type API interface {
	ListRooms(ctx context.Context) ([]backend.Room, error)
	ToggleRoomAvailability(ctx context.Context, id string) (bool, error)
}

// AlertFunc surfaces a failed toggle as a user-visible, non-fatal alert.
type AlertFunc func(roomID string, err error)

// Result reports the completion of one toggle request.
type Result struct {
	RoomID    string
	State     State
	Available bool // the confirmed display value after completion
	Err       error
}

// Controller manages the pending/confirmed/failed lifecycle of availability
// toggles. The displayed value for a room always reflects the last confirmed
// server state; it is never flipped speculatively - the server may veto a
// requested change, so its response is authoritative.
//
// The pending set serializes toggles per room; toggles for different rooms
// proceed independently.
type Controller struct {
	api    API
	alert  AlertFunc
	logger *slog.Logger

	mu      sync.Mutex
	rooms   map[string]backend.Room
	pending map[string]struct{}
	states  map[string]State
}

// NewController creates a toggle controller. alert may be nil.
func NewController(api API, alert AlertFunc, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if alert == nil {
		alert = func(string, error) {}
	}
	return &Controller{
		api:     api,
		alert:   alert,
		logger:  logger.With("component", "rooms"),
		rooms:   make(map[string]backend.Room),
		pending: make(map[string]struct{}),
		states:  make(map[string]State),
	}
}

// Load fetches the current room availability and resets all rooms to Idle.
func (c *Controller) Load(ctx context.Context) ([]backend.Room, error) {
	rooms, err := c.api.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms = make(map[string]backend.Room, len(rooms))
	c.states = make(map[string]State, len(rooms))
	for _, r := range rooms {
		c.rooms[r.ID] = r
		c.states[r.ID] = StateIdle
	}
	return rooms, nil
}

// Toggle requests an availability flip for a room. A room with an in-flight
// toggle returns ErrAlreadyPending without issuing a second request. The
// returned channel delivers exactly one Result when the backend responds.
func (c *Controller) Toggle(ctx context.Context, id string) (<-chan Result, error) {
	c.mu.Lock()
	if _, ok := c.rooms[id]; !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, id)
	}
	if _, inFlight := c.pending[id]; inFlight {
		c.mu.Unlock()
		return nil, ErrAlreadyPending
	}
	c.pending[id] = struct{}{}
	c.states[id] = StatePending
	c.mu.Unlock()

	c.logger.Debug("toggle requested", "room", id)
	done := make(chan Result, 1)
	go c.complete(ctx, id, done)
	return done, nil
}

// complete performs the mutation and re-enters the controller with the
// backend's response.
func (c *Controller) complete(ctx context.Context, id string, done chan<- Result) {
	confirmed, err := c.api.ToggleRoomAvailability(ctx, id)

	c.mu.Lock()
	delete(c.pending, id)

	var res Result
	if err != nil {
		// The displayed value stays at the last confirmed state.
		c.states[id] = StateFailed
		res = Result{RoomID: id, State: StateFailed, Available: c.rooms[id].IsAvailable, Err: err}
		c.mu.Unlock()

		c.logger.Warn("toggle failed", "room", id, "error", err)
		c.alert(id, err)
	} else {
		// Apply the server-confirmed value, not the optimistic target.
		room := c.rooms[id]
		room.IsAvailable = confirmed
		c.rooms[id] = room
		c.states[id] = StateConfirmed
		res = Result{RoomID: id, State: StateConfirmed, Available: confirmed}
		c.mu.Unlock()

		c.logger.Debug("toggle confirmed", "room", id, "available", confirmed)
	}

	done <- res
	close(done)
}

// Available returns the last confirmed availability for a room.
func (c *Controller) Available(id string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.rooms[id]
	return room.IsAvailable, ok
}

// StateOf returns the toggle state for a room.
func (c *Controller) StateOf(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[id]
}

// Pending reports whether a room has an in-flight toggle.
func (c *Controller) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}
