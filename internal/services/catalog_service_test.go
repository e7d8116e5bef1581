package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ektagames/internal/catalog"
	"ektagames/internal/domain"
	"ektagames/internal/services"
)

func TestCatalogService_ListPages(t *testing.T) {
	var products stubProducts
	for i := 1; i <= 25; i++ {
		products = append(products, domain.Product{ID: i, Title: string(rune('A'+i)), Category: "gaming"})
	}
	svc := &services.CatalogService{Products: products, PageInitial: 12, PageStep: 8}
	ctx := context.Background()

	p, err := svc.List(ctx, catalog.Query{}, 0)
	require.NoError(t, err)
	assert.Len(t, p.Items, 12)
	assert.Equal(t, 25, p.Total)
	assert.False(t, p.Exhausted)

	p, err = svc.List(ctx, catalog.Query{}, 1)
	require.NoError(t, err)
	assert.Len(t, p.Items, 20)

	p, err = svc.List(ctx, catalog.Query{}, 2)
	require.NoError(t, err)
	assert.Len(t, p.Items, 25)
	assert.True(t, p.Exhausted)
}

func TestCatalogService_FiltersAndCategories(t *testing.T) {
	svc := &services.CatalogService{Products: catalogFixture(), PageInitial: 12, PageStep: 8}

	p, err := svc.List(context.Background(), catalog.Query{Category: "AUDIO"}, 0)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "Headset", p.Items[0].Title)
	assert.True(t, p.Exhausted)

	assert.Equal(t, []string{"gaming", "audio", "bags"}, svc.ListCategories(context.Background()))

	_, ok := svc.GetProduct(context.Background(), 201)
	assert.True(t, ok)
	_, ok = svc.GetProduct(context.Background(), 5)
	assert.False(t, ok)
}

func TestGameService(t *testing.T) {
	var games services.GameService
	require.Len(t, games.List(), 4)

	g, ok := games.BySlug("ludo-king")
	require.True(t, ok)
	assert.Equal(t, "Board Game", g.Genre)

	_, ok = games.BySlug("missing")
	assert.False(t, ok)
}
