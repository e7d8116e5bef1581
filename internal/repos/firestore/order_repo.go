package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"

	"ektagames/internal/domain"
)

// OrderRepo writes to the top-level orders collection. Listing by user needs
// a composite index on (userId, createdAt desc).
type OrderRepo struct {
	Client *firestore.Client
}

func NewOrderRepo(client *firestore.Client) *OrderRepo {
	return &OrderRepo{Client: client}
}

type orderLineDoc struct {
	ProductID int    `firestore:"productId"`
	Title     string `firestore:"title"`
	Price     string `firestore:"price"`
	Image     string `firestore:"image"`
	Quantity  int    `firestore:"quantity"`
}

type addressDoc struct {
	Name       string `firestore:"name"`
	Address    string `firestore:"address"`
	City       string `firestore:"city"`
	PostalCode string `firestore:"postalCode"`
	Country    string `firestore:"country"`
}

type orderDoc struct {
	UserID          string         `firestore:"userId"`
	Items           []orderLineDoc `firestore:"items"`
	Total           string         `firestore:"total"`
	ShippingAddress addressDoc     `firestore:"shippingAddress"`
	Status          string         `firestore:"status"`
	CreatedAt       time.Time      `firestore:"createdAt,serverTimestamp"`
}

func orderDocFromDomain(o domain.Order) orderDoc {
	lines := make([]orderLineDoc, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, orderLineDoc{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price.String(),
			Image:     it.Image,
			Quantity:  it.Quantity,
		})
	}
	a := o.ShippingAddress
	return orderDoc{
		UserID:          o.UserID,
		Items:           lines,
		Total:           o.Total.String(),
		ShippingAddress: addressDoc{Name: a.Name, Address: a.Address, City: a.City, PostalCode: a.PostalCode, Country: a.Country},
		Status:          o.Status,
	}
}

func (d orderDoc) toDomain(id string) (domain.Order, error) {
	total, err := decimal.NewFromString(d.Total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s total: %w", id, err)
	}
	items := make([]domain.CartItem, 0, len(d.Items))
	for _, l := range d.Items {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order %s price: %w", id, err)
		}
		items = append(items, domain.CartItem{ProductID: l.ProductID, Title: l.Title, Price: price, Image: l.Image, Quantity: l.Quantity})
	}
	a := d.ShippingAddress
	return domain.Order{
		ID:              id,
		UserID:          d.UserID,
		Items:           items,
		Total:           total,
		ShippingAddress: domain.ShippingAddress{Name: a.Name, Address: a.Address, City: a.City, PostalCode: a.PostalCode, Country: a.Country},
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
	}, nil
}

// Create adds the order; createdAt is assigned by the server and read back.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	ref, _, err := r.Client.Collection("orders").Add(ctx, orderDocFromDomain(o))
	if err != nil {
		return domain.Order{}, classify(err)
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return domain.Order{}, classify(err)
	}
	var doc orderDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Order{}, err
	}
	return doc.toDomain(ref.ID)
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	docs, err := r.Client.Collection("orders").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, classify(err)
	}
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		var doc orderDoc
		if err := d.DataTo(&doc); err != nil {
			return nil, err
		}
		o, err := doc.toDomain(d.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
