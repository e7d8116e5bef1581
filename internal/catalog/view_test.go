package catalog

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ektagames/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sample() []domain.Product {
	return []domain.Product{
		{ID: 1, Title: "Retro Controller", Price: dec("49.99"), Category: "Gaming", Rating: domain.Rating{Rate: 4.2}},
		{ID: 2, Title: "Studio Headset", Price: dec("79.50"), Category: "audio", Rating: domain.Rating{Rate: 3.9}},
		{ID: 3, Title: "Arcade Stick", Price: dec("129.00"), Category: "gaming", Rating: domain.Rating{Rate: 4.8}},
		{ID: 4, Title: "Controller Grip", Price: dec("9.95"), Category: "gaming", Rating: domain.Rating{Rate: 3.1}},
		{ID: 5, Title: "1984", Price: dec("9.99"), Category: "books", Rating: domain.Rating{Rate: 4.7}},
	}
}

func ids(ps []domain.Product) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestApply_FilterSearchSort(t *testing.T) {
	in := sample()
	before := slices.Clone(in)

	got := Apply(in, Query{Category: "GAMING", Search: "controller", Sort: SortPriceAsc})
	assert.Equal(t, []int{4, 1}, ids(got))
	assert.Equal(t, before, in, "input untouched")

	assert.Equal(t, []int{3, 5, 1, 2, 4}, ids(Apply(in, Query{Sort: SortRatingDesc})))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(Apply(in, Query{Sort: "bogus"})))
	assert.Empty(t, Apply(in, Query{Category: "garden"}))
}

func TestApply_CategoryAndSearchCommute(t *testing.T) {
	in := sample()
	for _, cat := range []string{"gaming", "audio", "books"} {
		for _, term := range []string{"con", "o", "x", ""} {
			catThenSearch := Apply(Apply(in, Query{Category: cat}), Query{Search: term})
			searchThenCat := Apply(Apply(in, Query{Search: term}), Query{Category: cat})
			assert.Equal(t, ids(catThenSearch), ids(searchThenCat), "cat=%s term=%s", cat, term)
		}
	}
}

func TestApply_PriceAscReversedIsPriceDesc(t *testing.T) {
	asc := Apply(sample(), Query{Sort: SortPriceAsc})
	desc := Apply(sample(), Query{Sort: SortPriceDesc})
	slices.Reverse(asc)
	assert.Equal(t, ids(desc), ids(asc))
}

func TestApply_StableOnTies(t *testing.T) {
	in := []domain.Product{
		{ID: 1, Title: "a", Price: dec("5")},
		{ID: 2, Title: "b", Price: dec("5")},
		{ID: 3, Title: "c", Price: dec("1")},
	}
	assert.Equal(t, []int{3, 1, 2}, ids(Apply(in, Query{Sort: SortPriceAsc})))
}

func TestCategories_FirstSeenOrder(t *testing.T) {
	assert.Equal(t, []string{"Gaming", "audio", "gaming", "books"}, Categories(sample()))
}

func many(n int) []domain.Product {
	out := make([]domain.Product, n)
	for i := range out {
		out[i] = domain.Product{ID: i + 1}
	}
	return out
}

func TestPager_WindowAndExhaustion(t *testing.T) {
	p := NewPager(many(25), 12, 8, 0)
	require.Len(t, p.Visible(), 12)
	require.False(t, p.Exhausted())

	require.NoError(t, p.LoadMore(context.Background()))
	require.Len(t, p.Visible(), 20)
	assert.Equal(t, 20, p.Visible()[19].ID)

	require.NoError(t, p.LoadMore(context.Background()))
	require.Len(t, p.Visible(), 25)
	assert.True(t, p.Exhausted())

	require.NoError(t, p.LoadMore(context.Background()))
	assert.Len(t, p.Visible(), 25)
	assert.Equal(t, 25, p.Total())
}

func TestPager_ShortList(t *testing.T) {
	p := NewPager(many(3), 12, 8, 0)
	assert.Len(t, p.Visible(), 3)
	assert.True(t, p.Exhausted())

	empty := NewPager(nil, 12, 8, 0)
	assert.Empty(t, empty.Visible())
	assert.True(t, empty.Exhausted())
}

func TestPager_LoadMoreHonoursDelayAndCancel(t *testing.T) {
	p := NewPager(many(30), 12, 8, 50*time.Millisecond)

	start := time.Now()
	require.NoError(t, p.LoadMore(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Len(t, p.Visible(), 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewPager(many(30), 12, 8, time.Hour)
	require.ErrorIs(t, slow.LoadMore(ctx), context.Canceled)
	assert.Len(t, slow.Visible(), 12)
}

func TestPager_Skip(t *testing.T) {
	p := NewPager(many(40), 12, 8, time.Hour)
	p.Skip(2)
	assert.Len(t, p.Visible(), 28)
	p.Skip(10)
	assert.Len(t, p.Visible(), 40)
}
