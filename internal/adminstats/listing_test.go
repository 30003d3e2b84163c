// ABOUTME: Tests for the admin listing and the incremental reveal controller
// ABOUTME: Covers parameter normalization, past-the-end pages, and tie stabilization

package adminstats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comp423-25s/csxl-a2/internal/backend"
)

type fakePageLister struct {
	page       *backend.Paginated
	err        error
	lastParams backend.PageParams
}

func (f *fakePageLister) ListChatbotData(ctx context.Context, params backend.PageParams) (*backend.Paginated, error) {
	f.lastParams = params
	return f.page, f.err
}

func TestList_NormalizesParams(t *testing.T) {
	fake := &fakePageLister{page: &backend.Paginated{Items: []backend.ConversationRecord{}}}
	lister := NewLister(fake, nil)

	_, err := lister.List(context.Background(), backend.PageParams{Page: 0, PageSize: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.lastParams.Page)
	assert.Equal(t, DefaultPageSize, fake.lastParams.PageSize)
}

func TestList_PageBeyondLastIsEmptyNotError(t *testing.T) {
	fake := &fakePageLister{page: &backend.Paginated{Items: nil, TotalCount: 10}}
	lister := NewLister(fake, nil)

	page, err := lister.List(context.Background(), backend.PageParams{Page: 3, PageSize: 20})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 10, page.TotalCount)
}

func TestList_BackendFailure(t *testing.T) {
	fake := &fakePageLister{err: errors.New("503")}
	lister := NewLister(fake, nil)

	_, err := lister.List(context.Background(), backend.PageParams{})
	assert.Error(t, err)
}

func TestList_StabilizesRatingTiesByID(t *testing.T) {
	// The backend may return equal ratings in any order; the listing pins
	// ties to id ascending so repeated queries agree.
	fake := &fakePageLister{page: &backend.Paginated{
		Items: []backend.ConversationRecord{
			{ID: 9, Rating: 4, CreatedAt: "2025-04-29T10:00:00Z"},
			{ID: 2, Rating: 4, CreatedAt: "2025-04-29T11:00:00Z"},
			{ID: 5, Rating: 2, CreatedAt: "2025-04-29T12:00:00Z"},
		},
		TotalCount: 3,
	}}
	lister := NewLister(fake, nil)

	page, err := lister.List(context.Background(), backend.PageParams{OrderBy: OrderByRatingDesc})
	require.NoError(t, err)

	ids := []int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID}
	assert.Equal(t, []int64{2, 9, 5}, ids)
}

func TestList_StabilizesDateOrder(t *testing.T) {
	fake := &fakePageLister{page: &backend.Paginated{
		Items: []backend.ConversationRecord{
			{ID: 1, CreatedAt: "2025-04-30T10:00:00Z"},
			{ID: 2, CreatedAt: "2025-04-29T10:00:00Z"},
			{ID: 3, CreatedAt: "2025-04-29T10:00:00Z"},
		},
		TotalCount: 3,
	}}
	lister := NewLister(fake, nil)

	page, err := lister.List(context.Background(), backend.PageParams{OrderBy: OrderByDateAsc})
	require.NoError(t, err)
	ids := []int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}

func TestList_UnknownOrderKeepsBackendOrder(t *testing.T) {
	fake := &fakePageLister{page: &backend.Paginated{
		Items: []backend.ConversationRecord{
			{ID: 3}, {ID: 1}, {ID: 2},
		},
		TotalCount: 3,
	}}
	lister := NewLister(fake, nil)

	page, err := lister.List(context.Background(), backend.PageParams{OrderBy: "shoe-size"})
	require.NoError(t, err)
	ids := []int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestReveal(t *testing.T) {
	r := NewReveal(20)
	r.SetTotal(45)

	assert.Equal(t, 20, r.Visible())
	assert.True(t, r.HasMore())

	r.LoadMore()
	assert.Equal(t, 40, r.Visible())
	assert.True(t, r.HasMore())

	r.LoadMore()
	// Visible never exceeds the loaded total.
	assert.Equal(t, 45, r.Visible())
	assert.False(t, r.HasMore())
}

func TestReveal_ResetForSort(t *testing.T) {
	r := NewReveal(20)
	r.SetTotal(100)
	r.LoadMore()
	r.LoadMore()
	require.Equal(t, 60, r.Visible())

	r.ResetForSort()
	assert.Equal(t, 20, r.Visible())
}

func TestReveal_FewerRecordsThanIncrement(t *testing.T) {
	r := NewReveal(20)
	r.SetTotal(3)

	assert.Equal(t, 3, r.Visible())
	assert.False(t, r.HasMore())
}

func TestReveal_DefaultIncrement(t *testing.T) {
	r := NewReveal(0)
	r.SetTotal(100)
	assert.Equal(t, DefaultPageSize, r.Visible())
}
