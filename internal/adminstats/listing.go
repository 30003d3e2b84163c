// ABOUTME: Paginated/sorted/filtered admin conversation listing over the backend
// ABOUTME: Plus the client-side incremental reveal controller for the listing view

package adminstats

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/comp423-25s/csxl-a2/internal/backend"
)

// DefaultPageSize is both the server page size default and the reveal
// increment for the listing view.
const DefaultPageSize = 20

// Sort keys accepted by the listing, matching the admin UI's sort selector.
const (
	OrderByDateAsc    = "date-asc"
	OrderByDateDesc   = "date-desc"
	OrderByRatingAsc  = "rating-asc"
	OrderByRatingDesc = "rating-desc"
)

// PageLister is what the listing needs from the backend.
type PageLister interface {
	ListChatbotData(ctx context.Context, params backend.PageParams) (*backend.Paginated, error)
}

// Lister serves pages of the admin conversation listing. Sorting and
// filtering are delegated to the backend; this side only guarantees a stable
// order for identical queries by breaking ties on record id ascending.
type Lister struct {
	backend PageLister
	logger  *slog.Logger
}

// NewLister creates a listing component on top of the backend client.
func NewLister(b PageLister, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lister{backend: b, logger: logger.With("component", "adminstats")}
}

// List fetches one page. A page beyond the last yields empty items with the
// correct total count, never an error. The query is idempotent: repeating it
// has no side effects and returns the same order.
func (l *Lister) List(ctx context.Context, params backend.PageParams) (*backend.Paginated, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}

	page, err := l.backend.ListChatbotData(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("listing chatbot data: %w", err)
	}
	if page.Items == nil {
		page.Items = []backend.ConversationRecord{}
	}

	stabilize(page.Items, params.OrderBy)
	return page, nil
}

// stabilize re-applies the requested order with record id ascending as the
// tie break, so equal sort keys always come back in the same order.
func stabilize(items []backend.ConversationRecord, orderBy string) {
	var less func(a, b backend.ConversationRecord) int
	switch orderBy {
	case OrderByDateAsc:
		less = compareDates
	case OrderByDateDesc:
		less = func(a, b backend.ConversationRecord) int { return -compareDates(a, b) }
	case OrderByRatingAsc:
		less = func(a, b backend.ConversationRecord) int { return a.Rating - b.Rating }
	case OrderByRatingDesc:
		less = func(a, b backend.ConversationRecord) int { return b.Rating - a.Rating }
	default:
		// Unknown key: the backend's order stands, id breaks exact ties only.
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		if c := less(items[i], items[j]); c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

// compareDates orders records by created_at; unparseable timestamps sort as
// the zero time rather than failing, since the listing is a view concern.
func compareDates(a, b backend.ConversationRecord) int {
	ta, _ := time.Parse(time.RFC3339, a.CreatedAt)
	tb, _ := time.Parse(time.RFC3339, b.CreatedAt)
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	default:
		return 0
	}
}

// Reveal is the client-side incremental "load more" controller. It is a pure
// view concern, independent of the backend pagination contract: it tracks
// how many of the already-loaded records the view currently renders.
type Reveal struct {
	increment int
	visible   int
	total     int
}

// NewReveal creates a reveal controller. A non-positive increment falls back
// to DefaultPageSize.
func NewReveal(increment int) *Reveal {
	if increment <= 0 {
		increment = DefaultPageSize
	}
	return &Reveal{increment: increment, visible: increment}
}

// SetTotal records how many records are loaded client-side.
func (r *Reveal) SetTotal(total int) {
	r.total = total
}

// ResetForSort restarts the reveal window; every sort change begins again at
// one increment.
func (r *Reveal) ResetForSort() {
	r.visible = r.increment
}

// LoadMore grows the visible window by one increment.
func (r *Reveal) LoadMore() {
	r.visible += r.increment
}

// Visible returns how many records the view should render.
func (r *Reveal) Visible() int {
	if r.visible > r.total {
		return r.total
	}
	return r.visible
}

// HasMore reports whether more loaded records remain hidden.
func (r *Reveal) HasMore() bool {
	return r.visible < r.total
}
