package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
	"ektagames/internal/validate"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrEmptyCart     = errors.New("cart empty")
)

// AddressError carries one message per invalid shipping field.
type AddressError struct {
	Fields map[string]string
}

func (e *AddressError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid shipping address: " + strings.Join(keys, ", ")
}

// OrderStore persists orders; Create assigns the id and the server time.
type OrderStore interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type OrderService struct {
	Orders OrderStore
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{Orders: orders}
}

// Place turns the store's current cart into a pending order and then clears
// the cart.
func (s *OrderService) Place(ctx context.Context, st *cart.Store, addr domain.ShippingAddress) (domain.Order, error) {
	uid := st.UserID()
	if uid == "" {
		return domain.Order{}, ErrLoginRequired
	}
	addr = trimAddress(addr)
	if fields := validate.Struct(addr); fields != nil {
		return domain.Order{}, &AddressError{Fields: fields}
	}
	c := st.Snapshot()
	if len(c.Items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	o, err := s.Orders.Create(ctx, domain.Order{
		UserID:          uid,
		Items:           c.Items,
		Total:           c.Total,
		ShippingAddress: addr,
		Status:          domain.OrderStatusPending,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	st.ClearCart(ctx)
	return o, nil
}

func (s *OrderService) History(ctx context.Context, uid string) ([]domain.Order, error) {
	if uid == "" {
		return nil, ErrLoginRequired
	}
	return s.Orders.ListByUser(ctx, uid)
}

func trimAddress(a domain.ShippingAddress) domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:       strings.TrimSpace(a.Name),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
