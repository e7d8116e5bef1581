package services

import (
	"context"

	"ektagames/internal/domain"
)

const (
	StockIn  = "IN_STOCK"
	StockLow = "LOW_STOCK"
	StockOut = "OUT_OF_STOCK"
)

type InventoryService struct {
	Products ProductSource
}

func NewInventoryService(products ProductSource) *InventoryService {
	return &InventoryService{Products: products}
}

// CheckAvailability converts the product's stock into IN_STOCK / LOW_STOCK /
// OUT_OF_STOCK. Unknown products are out of stock.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID int) domain.Availability {
	p, ok := s.Products.FetchProduct(ctx, productID)
	if !ok {
		return domain.Availability{Status: StockOut, Qty: 0}
	}
	status := StockOut
	switch {
	case p.Stock >= 5:
		status = StockIn
	case p.Stock > 0:
		status = StockLow
	}
	return domain.Availability{Status: status, Qty: max(p.Stock, 0)}
}
