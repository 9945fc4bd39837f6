package order

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("order was modified concurrently")
)

type Repository interface {
	Create(ctx context.Context, o *Order, items []Item, entry TrackingEntry) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
	GetTracking(ctx context.Context, orderID string) ([]TrackingEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]Order, error)
	SaveTransition(ctx context.Context, prev Status, o *Order, entry TrackingEntry) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create persists the order, its item snapshots, the first tracking entry and
// every stock decrement in one transaction. Each decrement is conditional
// (stock >= quantity), so concurrent orders cannot oversell: whichever
// transaction finds the guard false rolls the whole order back.
func (r *PGRepo) Create(ctx context.Context, o *Order, items []Item, entry TrackingEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, user_id, status, payment_method, paid,
		                    subtotal, shipping_fee, total,
		                    ship_name, ship_street, ship_city, ship_postal_code, ship_country,
		                    created_at, updated_at)
		VALUES ($1,
		        'ORD-'||to_char(NOW(),'YYYYMMDD')||'-'||lpad(nextval('order_numbers')::text, 6, '0'),
		        $2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
		RETURNING order_number, created_at, updated_at
	`, o.ID, o.UserID, o.Status, o.PaymentMethod, o.Paid,
		o.Subtotal, o.ShippingFee, o.Total,
		o.ShipName, o.ShipStreet, o.ShipCity, o.ShipPostalCode, o.ShipCountry,
	).Scan(&o.OrderNumber, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, image, color, size, unit_price, quantity)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, it.ID, o.ID, it.ProductID, it.Name, it.Image, it.Color, it.Size, it.UnitPrice, it.Quantity); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2, updated_at = NOW()
			WHERE id = $1 AND stock >= $2
		`, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrInsufficientStock
		}

		if it.Color != "" || it.Size != "" {
			tag, err := tx.Exec(ctx, `
				UPDATE product_variants SET quantity = quantity - $4
				WHERE product_id = $1 AND color = $2 AND size = $3 AND quantity >= $4
			`, it.ProductID, it.Color, it.Size, it.Quantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrInsufficientStock
			}
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO order_tracking (id, order_id, status, label, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, entry.ID, o.ID, entry.Status, entry.Label, entry.Note, entry.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const orderCols = `id, order_number, user_id, status, payment_method, paid,
	subtotal::text, shipping_fee::text, total::text,
	ship_name, ship_street, ship_city, ship_postal_code, ship_country,
	cancel_reason, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	return row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentMethod, &o.Paid,
		&o.Subtotal, &o.ShippingFee, &o.Total,
		&o.ShipName, &o.ShipStreet, &o.ShipCity, &o.ShipPostalCode, &o.ShipCountry,
		&o.CancelReason, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	if err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id), &o); err != nil {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *PGRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, name, image, color, size, unit_price::text, quantity
		FROM order_items WHERE order_id=$1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Image,
			&it.Color, &it.Size, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) GetTracking(ctx context.Context, orderID string) ([]TrackingEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, status, label, note, created_at
		FROM order_tracking WHERE order_id=$1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackingEntry
	for rows.Next() {
		var e TrackingEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Status, &e.Label, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) list(ctx context.Context, where string, args []any, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders `+where+`
		ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return r.list(ctx, `WHERE user_id=$1`, []any{userID}, limit, offset)
}

func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	return r.list(ctx, ``, nil, limit, offset)
}

// SaveTransition persists a transition already applied in memory (see Apply).
// The update is guarded by the previous status, so a concurrent transition on
// the same order loses and gets ErrConflict. Cancellation restores every
// item's stock inside the same transaction.
func (r *PGRepo) SaveTransition(ctx context.Context, prev Status, o *Order, entry TrackingEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status=$3, paid=$4, delivered_at=$5, cancelled_at=$6, cancel_reason=$7, updated_at=NOW()
		WHERE id=$1 AND status=$2
	`, o.ID, prev, o.Status, o.Paid, o.DeliveredAt, o.CancelledAt, o.CancelReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO order_tracking (id, order_id, status, label, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, entry.ID, o.ID, entry.Status, entry.Label, entry.Note, entry.CreatedAt); err != nil {
		return err
	}

	if o.Status == StatusCancelled {
		rows, err := tx.Query(ctx, `
			SELECT product_id, color, size, quantity FROM order_items WHERE order_id=$1
		`, o.ID)
		if err != nil {
			return err
		}
		type move struct {
			productID, color, size string
			qty                    int
		}
		var moves []move
		for rows.Next() {
			var m move
			if err := rows.Scan(&m.productID, &m.color, &m.size, &m.qty); err != nil {
				rows.Close()
				return err
			}
			moves = append(moves, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, m := range moves {
			if _, err := tx.Exec(ctx, `
				UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1
			`, m.productID, m.qty); err != nil {
				return err
			}
			if m.color != "" || m.size != "" {
				if _, err := tx.Exec(ctx, `
					UPDATE product_variants SET quantity = quantity + $4
					WHERE product_id = $1 AND color = $2 AND size = $3
				`, m.productID, m.color, m.size, m.qty); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit(ctx)
}
