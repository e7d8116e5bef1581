package services

import (
	"context"
	"time"

	"ektagames/internal/catalog"
	"ektagames/internal/domain"
)

// ProductSource is the aggregated catalog.
type ProductSource interface {
	FetchCatalog(ctx context.Context) []domain.Product
	FetchProduct(ctx context.Context, id int) (domain.Product, bool)
}

type CatalogService struct {
	Products ProductSource

	PageInitial   int
	PageStep      int
	LoadMoreDelay time.Duration
}

// Page is one window of a filtered, sorted listing.
type Page struct {
	Items     []domain.Product `json:"items"`
	Total     int              `json:"total"`
	Exhausted bool             `json:"exhausted"`
	Page      int              `json:"page"`
}

// List applies q and returns the window after page load-more steps. Page 0
// is the initial window; only the last step pays the load-more delay.
func (s *CatalogService) List(ctx context.Context, q catalog.Query, page int) (Page, error) {
	filtered := catalog.Apply(s.Products.FetchCatalog(ctx), q)
	pager := catalog.NewPager(filtered, s.PageInitial, s.PageStep, s.LoadMoreDelay)
	if page > 0 {
		pager.Skip(page - 1)
		if err := pager.LoadMore(ctx); err != nil {
			return Page{}, err
		}
	}
	return Page{Items: pager.Visible(), Total: pager.Total(), Exhausted: pager.Exhausted(), Page: page}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (domain.Product, bool) {
	return s.Products.FetchProduct(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) []string {
	return catalog.Categories(s.Products.FetchCatalog(ctx))
}
