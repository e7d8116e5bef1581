package firestore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
)

// CartRepo keeps each cart item as a document under users/{uid}/cart.
type CartRepo struct {
	Client *firestore.Client
}

func NewCartRepo(client *firestore.Client) *CartRepo {
	return &CartRepo{Client: client}
}

var _ cart.Remote = (*CartRepo)(nil)

type cartItemDoc struct {
	ProductID int       `firestore:"productId"`
	Title     string    `firestore:"title"`
	Price     string    `firestore:"price"`
	Image     string    `firestore:"image"`
	Quantity  int       `firestore:"quantity"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

func (d cartItemDoc) toDomain(id string) (domain.CartItem, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return domain.CartItem{}, err
	}
	return domain.CartItem{
		ID:        id,
		ProductID: d.ProductID,
		Title:     d.Title,
		Price:     price,
		Image:     d.Image,
		Quantity:  d.Quantity,
	}, nil
}

func (r *CartRepo) col(uid string) *firestore.CollectionRef {
	return r.Client.Collection("users").Doc(uid).Collection("cart")
}

// itemDocID keys a cart line by its product so each product has one line.
func itemDocID(productID int) string {
	return "product-" + strconv.Itoa(productID)
}

// AddItem creates the product's line or increments it inside one
// transaction.
func (r *CartRepo) AddItem(ctx context.Context, uid string, it domain.NewCartItem) (string, error) {
	ref := r.col(uid).Doc(itemDocID(it.ProductID))
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return tx.Create(ref, cartItemDoc{
				ProductID: it.ProductID,
				Title:     it.Title,
				Price:     it.Price.String(),
				Image:     it.Image,
				Quantity:  it.Quantity,
			})
		}
		if err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{{Path: "quantity", Value: firestore.Increment(it.Quantity)}})
	})
	if err != nil {
		return "", classify(err)
	}
	return ref.ID, nil
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, uid, itemID string, qty int) error {
	_, err := r.col(uid).Doc(itemID).Update(ctx, []firestore.Update{{Path: "quantity", Value: qty}})
	return classify(err)
}

func (r *CartRepo) Delete(ctx context.Context, uid, itemID string) error {
	_, err := r.col(uid).Doc(itemID).Delete(ctx)
	return classify(err)
}

func (r *CartRepo) DeleteBatch(ctx context.Context, uid string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, id := range itemIDs {
			if err := tx.Delete(r.col(uid).Doc(id)); err != nil {
				return err
			}
		}
		return nil
	})
	return classify(err)
}

func (r *CartRepo) Subscribe(ctx context.Context, uid string) (cart.Subscription, error) {
	it := r.col(uid).OrderBy("createdAt", firestore.Asc).Snapshots(ctx)
	return &snapshotSub{it: it}, nil
}

type snapshotSub struct {
	it *firestore.QuerySnapshotIterator
}

func (s *snapshotSub) Next() ([]domain.CartItem, error) {
	snap, err := s.it.Next()
	if err != nil {
		return nil, classify(err)
	}
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, classify(err)
	}
	out := make([]domain.CartItem, 0, len(docs))
	for _, d := range docs {
		var doc cartItemDoc
		if err := d.DataTo(&doc); err != nil {
			return nil, err
		}
		item, err := doc.toDomain(d.Ref.ID)
		if err != nil {
			return nil, errors.Join(errors.New("bad cart item "+d.Ref.ID), err)
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *snapshotSub) Stop() { s.it.Stop() }
