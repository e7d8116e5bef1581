package domain

import "github.com/shopspring/decimal"

// CartItem is one document of a user's remote cart collection.
type CartItem struct {
	ID        string          `json:"id" db:"id"`
	ProductID int             `json:"productId" db:"product_id"`
	Title     string          `json:"title" db:"title"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Image     string          `json:"image" db:"image"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

func (it CartItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// NewCartItem is the payload of a remote create.
type NewCartItem struct {
	ProductID int
	Title     string
	Price     decimal.Decimal
	Image     string
	Quantity  int
}

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// NewCart derives the total from items; it is never stored separately.
func NewCart(items []CartItem) Cart {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	if items == nil {
		items = []CartItem{}
	}
	return Cart{Items: items, Total: total}
}
