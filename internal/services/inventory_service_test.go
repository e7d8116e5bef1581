package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"ektagames/internal/domain"
	"ektagames/internal/services"
)

// stubProducts serves a fixed catalog.
type stubProducts []domain.Product

func (s stubProducts) FetchCatalog(context.Context) []domain.Product {
	out := make([]domain.Product, len(s))
	copy(out, s)
	return out
}

func (s stubProducts) FetchProduct(_ context.Context, id int) (domain.Product, bool) {
	for _, p := range s {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func catalogFixture() stubProducts {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return stubProducts{
		{ID: 1, Title: "Controller", Price: price("49.99"), Category: "gaming", Stock: 6},
		{ID: 2, Title: "Headset", Price: price("79.50"), Category: "audio", Stock: 2},
		{ID: 201, Title: "Backpack", Price: price("109.95"), Category: "bags", Stock: 0},
	}
}

func TestInventoryService_CheckAvailability(t *testing.T) {
	svc := services.NewInventoryService(catalogFixture())
	ctx := context.Background()

	// in stock
	a := svc.CheckAvailability(ctx, 1)
	if a.Status != "IN_STOCK" || a.Qty != 6 {
		t.Fatalf("want IN_STOCK(6), got %+v", a)
	}

	a = svc.CheckAvailability(ctx, 2)
	if a.Status != "LOW_STOCK" || a.Qty != 2 {
		t.Fatalf("want LOW_STOCK(2), got %+v", a)
	}

	a = svc.CheckAvailability(ctx, 201)
	if a.Status != "OUT_OF_STOCK" {
		t.Fatalf("want OUT_OF_STOCK, got %+v", a)
	}

	// unknown product
	a = svc.CheckAvailability(ctx, 999)
	if a.Status != "OUT_OF_STOCK" || a.Qty != 0 {
		t.Fatalf("want OUT_OF_STOCK(0), got %+v", a)
	}
}
