package firestore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
	"ektagames/internal/validate"
)

func TestClassify(t *testing.T) {
	denied := classify(status.Error(codes.PermissionDenied, "missing or insufficient permissions"))
	require.ErrorIs(t, denied, cart.ErrPermissionDenied)
	assert.Equal(t, codes.PermissionDenied, status.Code(denied), "grpc code kept in chain")

	require.ErrorIs(t, classify(status.Error(codes.NotFound, "no doc")), cart.ErrItemNotFound)

	other := status.Error(codes.Unavailable, "down")
	assert.Equal(t, other, classify(other))
	assert.NoError(t, classify(nil))
}

func TestOrderDocRoundTripKeepsDecimals(t *testing.T) {
	o := domain.Order{
		UserID: "uid-1",
		Items: []domain.CartItem{
			{ProductID: 201, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Quantity: 2},
		},
		Total:           decimal.RequireFromString("219.90"),
		ShippingAddress: domain.ShippingAddress{Name: "Ada", Address: "1 Loop Rd", City: "Paris", PostalCode: "75001", Country: "FR"},
		Status:          domain.OrderStatusPending,
	}
	doc := orderDocFromDomain(o)
	assert.Equal(t, "219.9", doc.Total)
	assert.True(t, doc.CreatedAt.IsZero(), "left for the server")

	doc.CreatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	back, err := doc.toDomain("ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", back.ID)
	assert.True(t, back.Total.Equal(o.Total))
	assert.True(t, back.Items[0].Price.Equal(o.Items[0].Price))
	assert.Equal(t, o.ShippingAddress, back.ShippingAddress)
	assert.Equal(t, doc.CreatedAt, back.CreatedAt)
}

func TestCartItemDocRejectsBadPrice(t *testing.T) {
	_, err := cartItemDoc{Price: "abc"}.toDomain("x")
	require.Error(t, err)

	it, err := cartItemDoc{ProductID: 3, Title: "Headset", Price: "79.5", Quantity: 1}.toDomain("doc-9")
	require.NoError(t, err)
	assert.Equal(t, "doc-9", it.ID)
	assert.Equal(t, "79.5", it.Subtotal().String())
}

func TestItemDocIDIsPerProduct(t *testing.T) {
	assert.Equal(t, "product-7", itemDocID(7))
	assert.Equal(t, itemDocID(201), itemDocID(201))
	assert.NotEqual(t, itemDocID(2), itemDocID(20))
	_, ok := validate.ID(itemDocID(404))
	assert.True(t, ok, "usable as a cart item path id")
}
