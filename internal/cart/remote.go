package cart

import (
	"context"
	"errors"

	"ektagames/internal/domain"
)

var (
	// ErrPermissionDenied is returned by a Remote when the caller may not
	// touch the collection.
	ErrPermissionDenied = errors.New("cart: permission denied")
	ErrItemNotFound     = errors.New("cart: item not found")
)

// Remote is the per-user cart collection, holding at most one line per
// product. Writes are acknowledged once stored; the visible state only
// changes through a Subscription.
type Remote interface {
	// AddItem stores item as a new line, or adds item.Quantity to the line
	// already holding item.ProductID. It returns the line's id.
	AddItem(ctx context.Context, uid string, item domain.NewCartItem) (string, error)
	UpdateQuantity(ctx context.Context, uid, itemID string, qty int) error
	Delete(ctx context.Context, uid, itemID string) error
	// DeleteBatch removes every id atomically: all or none.
	DeleteBatch(ctx context.Context, uid string, itemIDs []string) error
	Subscribe(ctx context.Context, uid string) (Subscription, error)
}

// Subscription delivers the full collection on open and after every change.
// Next blocks until then and fails once the subscribe context is done.
type Subscription interface {
	Next() ([]domain.CartItem, error)
	Stop()
}
