package staging

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/stagehouse/internal/apperr"
	"github.com/erazemk/stagehouse/internal/model"
	"github.com/erazemk/stagehouse/internal/store"
)

func TestGetAvailabilityMissingItem(t *testing.T) {
	f := newFixture(t)
	avail, err := f.svc.GetAvailability(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, avail)
}

func ptr(v int64) *int64 { return &v }

func TestGetAdjacent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.item(t, "A", 1)
	b := f.item(t, "B", 1)
	f.item(t, "C", 1)
	d := f.item(t, "D", 1)
	_, err := f.svc.ArchiveItem(ctx, f.admin, b.ID)
	require.NoError(t, err)

	// Active catalog browsed newest first: 4, 3, 1.
	tests := []struct {
		oid  int64
		want model.Adjacent
	}{
		{4, model.Adjacent{Prev: nil, Next: ptr(3)}},
		{3, model.Adjacent{Prev: ptr(4), Next: ptr(1)}},
		{1, model.Adjacent{Prev: ptr(3), Next: nil}},
		{2, model.Adjacent{}},
		{99, model.Adjacent{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("oid %d", tt.oid), func(t *testing.T) {
			got, err := f.svc.GetAdjacent(ctx, tt.oid)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	require.NoError(t, f.svc.DeleteItem(ctx, f.admin, d.ID))
	got, err := f.svc.GetAdjacent(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got.Prev)
}

func TestGetCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, c := range []string{"Seating", "Lighting", "", "Seating", " Decor "} {
		_, err := f.svc.CreateItem(ctx, f.admin, model.ItemFields{Name: "x", Category: c, Count: 1})
		require.NoError(t, err)
	}

	cats, err := f.svc.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Decor", "Lighting", "Seating"}, cats)
}

func TestGetHighlightedPortfolio(t *testing.T) {
	f := newFixture(t, WithPortfolioLimit(2))
	ctx := context.Background()

	var highlighted []int64
	for i := range 4 {
		p := f.project(t, f.alice, fmt.Sprintf("House %d", i+1))
		if i == 1 {
			continue
		}
		_, err := f.svc.SetProjectHighlighted(ctx, f.admin, p.ID, true)
		require.NoError(t, err)
		highlighted = append(highlighted, p.ID)
	}
	addProjectImages(t, f, f.alice, highlighted[2], 2)

	portfolio, err := f.svc.GetHighlightedPortfolio(ctx, 0)
	require.NoError(t, err)
	require.Len(t, portfolio, 2, "default limit applies")
	assert.Equal(t, "House 4", portfolio[0].Name)
	assert.Equal(t, "House 3", portfolio[1].Name)
	require.Len(t, portfolio[0].Images, 2)
	assertDense(t, portfolio[0].Images)

	portfolio, err = f.svc.GetHighlightedPortfolio(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, portfolio, 3)

	_, err = f.svc.SetProjectHighlighted(ctx, f.alice, highlighted[0], false)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestListProjectsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.project(t, f.alice, "Alice 1")
	f.project(t, f.bob, "Bob 1")
	f.project(t, f.alice, "Alice 2")

	mine, err := f.svc.ListProjects(ctx, f.alice)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.svc.ListProjects(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListProjects(ctx, model.Identity{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestGetItemByOID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.item(t, "Pouf", 2)

	got, err := f.svc.GetItemByOID(ctx, item.OID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = f.svc.GetItemByOID(ctx, 77)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListItemsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateItem(ctx, f.admin, model.ItemFields{Name: "Lamp", Category: "Lighting", Count: 1})
	require.NoError(t, err)
	sofa, err := f.svc.CreateItem(ctx, f.admin, model.ItemFields{Name: "Sofa", Category: "Seating", Count: 1})
	require.NoError(t, err)
	_, err = f.svc.CreateItem(ctx, f.admin, model.ItemFields{Name: "Chair", Category: "Seating", Count: 1})
	require.NoError(t, err)
	_, err = f.svc.ArchiveItem(ctx, f.admin, sofa.ID)
	require.NoError(t, err)

	items, err := f.svc.ListItems(ctx, store.ItemFilter{Category: "Seating"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = f.svc.ListItems(ctx, store.ItemFilter{Category: "Seating", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Chair", items[0].Name)
}
