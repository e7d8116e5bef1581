package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
)

// CartRepo is the SQLite cart collection. Each committed write wakes the
// user's subscriptions through the broadcaster.
type CartRepo struct {
	db *sqlx.DB
	bc *cart.Broadcaster
}

func NewCartRepo(db *sqlx.DB) *CartRepo {
	return &CartRepo{db: db, bc: cart.NewBroadcaster()}
}

var _ cart.Remote = (*CartRepo)(nil)

// AddItem upserts on (user_id, product_id): a second add of the same
// product bumps the quantity of the existing line.
func (r *CartRepo) AddItem(ctx context.Context, uid string, it domain.NewCartItem) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO cart_items(id,user_id,product_id,title,price,image,quantity,created_at)
		VALUES(?,?,?,?,?,?,?,strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		ON CONFLICT(user_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, uuid.NewString(), uid, it.ProductID, it.Title, it.Price.String(), it.Image, it.Quantity)
	if err != nil {
		return "", err
	}
	r.bc.Notify(uid)
	return id, nil
}

// owner returns the user owning itemID, or "" when there is no such item.
func owner(ctx context.Context, q sqlx.QueryerContext, itemID string) (string, error) {
	var uid string
	err := sqlx.GetContext(ctx, q, &uid, `SELECT user_id FROM cart_items WHERE id=?`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return uid, err
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, uid, itemID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items SET quantity=?, updated_at=CURRENT_TIMESTAMP
		WHERE id=? AND user_id=?
	`, qty, itemID, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		who, err := owner(ctx, r.db, itemID)
		if err != nil {
			return err
		}
		if who != "" {
			return cart.ErrPermissionDenied
		}
		return cart.ErrItemNotFound
	}
	r.bc.Notify(uid)
	return nil
}

// Delete is a no-op for ids that no longer exist.
func (r *CartRepo) Delete(ctx context.Context, uid, itemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id=? AND user_id=?`, itemID, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		who, err := owner(ctx, r.db, itemID)
		if err != nil {
			return err
		}
		if who != "" {
			return cart.ErrPermissionDenied
		}
		return nil
	}
	r.bc.Notify(uid)
	return nil
}

func (r *CartRepo) DeleteBatch(ctx context.Context, uid string, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var foreign int
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM cart_items WHERE id IN (?) AND user_id<>?`, itemIDs, uid)
	if err != nil {
		return err
	}
	if err := tx.GetContext(ctx, &foreign, tx.Rebind(query), args...); err != nil {
		return err
	}
	if foreign > 0 {
		return cart.ErrPermissionDenied
	}

	query, args, err = sqlx.In(`DELETE FROM cart_items WHERE id IN (?) AND user_id=?`, itemIDs, uid)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.bc.Notify(uid)
	return nil
}

func (r *CartRepo) Items(ctx context.Context, uid string) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, product_id, title, price, image, quantity
	  FROM cart_items
	  WHERE user_id = ?
	  ORDER BY created_at, rowid
	`, uid)
	return out, err
}

func (r *CartRepo) Subscribe(ctx context.Context, uid string) (cart.Subscription, error) {
	return r.bc.Subscribe(ctx, uid, func(ctx context.Context) ([]domain.CartItem, error) {
		return r.Items(ctx, uid)
	}), nil
}
