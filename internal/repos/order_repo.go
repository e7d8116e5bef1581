package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"ektagames/internal/domain"
)

const sqliteTime = "2006-01-02T15:04:05.000Z"

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type orderRow struct {
	ID         string          `db:"id"`
	UserID     string          `db:"user_id"`
	Total      decimal.Decimal `db:"total"`
	Name       string          `db:"ship_name"`
	Address    string          `db:"ship_address"`
	City       string          `db:"ship_city"`
	PostalCode string          `db:"ship_postal_code"`
	Country    string          `db:"ship_country"`
	Status     string          `db:"status"`
	CreatedAt  string          `db:"created_at"`
}

type orderItemRow struct {
	OrderID string `db:"order_id"`
	domain.CartItem
}

// Create stores the order header and its lines in one transaction. The
// database assigns created_at.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, err
	}
	defer func() { _ = tx.Rollback() }()

	o.ID = uuid.NewString()
	a := o.ShippingAddress
	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, user_id, total, ship_name, ship_address, ship_city, ship_postal_code, ship_country, status)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.Total.String(), a.Name, a.Address, a.City, a.PostalCode, a.Country, o.Status); err != nil {
		return domain.Order{}, err
	}

	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, line, product_id, title, price, image, quantity)
		  VALUES(?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, it.ProductID, it.Title, it.Price.String(), it.Image, it.Quantity); err != nil {
			return domain.Order{}, err
		}
	}

	var created string
	if err := tx.GetContext(ctx, &created, `SELECT created_at FROM orders WHERE id=?`, o.ID); err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, err
	}
	o.CreatedAt, err = time.Parse(sqliteTime, created)
	if err != nil {
		return domain.Order{}, fmt.Errorf("parse created_at: %w", err)
	}
	return o, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, total, ship_name, ship_address, ship_city, ship_postal_code, ship_country, status, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Order{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, o := range rows {
		ids = append(ids, o.ID)
	}
	query, args, err := sqlx.In(`
		SELECT order_id, '' AS id, product_id, title, price, image, quantity
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, line
	`, ids)
	if err != nil {
		return nil, err
	}
	var items []orderItemRow
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	byOrder := map[string][]domain.CartItem{}
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it.CartItem)
	}

	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		created, err := time.Parse(sqliteTime, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, domain.Order{
			ID:     row.ID,
			UserID: row.UserID,
			Items:  byOrder[row.ID],
			Total:  row.Total,
			ShippingAddress: domain.ShippingAddress{
				Name:       row.Name,
				Address:    row.Address,
				City:       row.City,
				PostalCode: row.PostalCode,
				Country:    row.Country,
			},
			Status:    row.Status,
			CreatedAt: created,
		})
	}
	return out, nil
}
