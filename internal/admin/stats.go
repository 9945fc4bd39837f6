// Package admin provides the read-only dashboard rollups. All aggregation is
// pushed down to SQL; nothing scans orders in application code.
package admin

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stats is the platform dashboard rollup. Earnings are split per item using
// price*qty*rate/(100+rate) with the default 20% rate when a product carries
// none, since item unit prices already include the commission.
type Stats struct {
	Users    int64 `json:"users"`
	Sellers  int64 `json:"sellers"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`

	// NUMERIC -> string
	GrossRevenue     string `json:"gross_revenue"`
	PlatformEarnings string `json:"platform_earnings"`
	SellerEarnings   string `json:"seller_earnings"`
}

type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int64  `json:"units_sold"`
	Revenue   string `json:"revenue"`
}

type Repository interface {
	Stats(ctx context.Context) (*Stats, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var st Stats
	if err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = 'seller'),
			(SELECT COUNT(*) FROM products WHERE active),
			(SELECT COUNT(*) FROM orders)
	`).Scan(&st.Users, &st.Sellers, &st.Products, &st.Orders); err != nil {
		return nil, err
	}

	if err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(o.total), 0)::text,
			COALESCE(SUM(sub.platform), 0)::text,
			COALESCE(SUM(sub.seller), 0)::text
		FROM orders o
		JOIN (
			SELECT oi.order_id,
			       SUM(round(oi.unit_price * oi.quantity * COALESCE(p.commission_rate, 20)
			                 / (100 + COALESCE(p.commission_rate, 20)), 2)) AS platform,
			       SUM(oi.unit_price * oi.quantity
			           - round(oi.unit_price * oi.quantity * COALESCE(p.commission_rate, 20)
			                   / (100 + COALESCE(p.commission_rate, 20)), 2)) AS seller
			FROM order_items oi
			LEFT JOIN products p ON p.id = oi.product_id
			GROUP BY oi.order_id
		) sub ON sub.order_id = o.id
		WHERE o.paid AND o.status = 'delivered'
	`).Scan(&st.GrossRevenue, &st.PlatformEarnings, &st.SellerEarnings); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *PGRepo) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id, MAX(oi.name), SUM(oi.quantity),
		       SUM(oi.unit_price * oi.quantity)::text
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> 'cancelled'
		GROUP BY oi.product_id
		ORDER BY SUM(oi.quantity) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.UnitsSold, &tp.Revenue); err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}
