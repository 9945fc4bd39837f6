// Package product provides the catalog: products, variant stock and reviews.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
)

type Query struct {
	Q        string
	SellerID string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p *Product, variants []Variant) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
	Deactivate(ctx context.Context, id string) (bool, error)
	ListVariants(ctx context.Context, productID string) ([]Variant, error)
	ReplaceVariants(ctx context.Context, productID string, variants []Variant) error
	AddReview(ctx context.Context, rv *Review) error
	ListReviews(ctx context.Context, productID string) ([]Review, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Product, variants []Variant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO products (id, seller_id, name, description, image, price, commission_rate, stock, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true,NOW(),NOW())
	`, p.ID, p.SellerID, p.Name, p.Description, p.Image, p.Price, p.CommissionRate, p.Stock); err != nil {
		return err
	}
	for _, v := range variants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_variants (id, product_id, color, size, quantity)
			VALUES ($1,$2,$3,$4,$5)
		`, v.ID, p.ID, v.Color, v.Size, v.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

const productCols = `id, seller_id, name, description, image, price::text, commission_rate, stock, active, created_at, updated_at`

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	err := r.db.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Image, &p.Price, &p.CommissionRate,
			&p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE active
		  AND ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		  AND ($2 = '' OR seller_id::text = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, search, q.SellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Image, &p.Price,
			&p.CommissionRate, &p.Stock, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePrice {
		_, err := r.db.Exec(ctx, `
			UPDATE products
			SET name = COALESCE(NULLIF($2,''), name),
			    description = COALESCE(NULLIF($3,''), description),
			    image = COALESCE(NULLIF($4,''), image),
			    price = $5,
			    commission_rate = $6,
			    stock = $7,
			    updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.Name, p.Description, p.Image, p.Price, p.CommissionRate, p.Stock)
		return err
	}

	_, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($2,''), name),
		    description = COALESCE(NULLIF($3,''), description),
		    image = COALESCE(NULLIF($4,''), image),
		    commission_rate = $5,
		    stock = $6,
		    updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Image, p.CommissionRate, p.Stock)
	return err
}

func (r *PGRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE products SET active=false, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) ListVariants(ctx context.Context, productID string) ([]Variant, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, color, size, quantity
		FROM product_variants WHERE product_id=$1
		ORDER BY color, size
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Quantity); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ReplaceVariants swaps the variant set and re-syncs the product stock to the
// sum of the new quantities, all in one transaction.
func (r *PGRepo) ReplaceVariants(ctx context.Context, productID string, variants []Variant) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id=$1`, productID); err != nil {
		return err
	}
	total := 0
	for _, v := range variants {
		total += v.Quantity
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_variants (id, product_id, color, size, quantity)
			VALUES ($1,$2,$3,$4,$5)
		`, v.ID, productID, v.Color, v.Size, v.Quantity); err != nil {
			return err
		}
	}
	tag, err := tx.Exec(ctx, `UPDATE products SET stock=$2, updated_at=NOW() WHERE id=$1`, productID, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) AddReview(ctx context.Context, rv *Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
	`, rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment)
	if err != nil {
		// UNIQUE (product_id, user_id)
		return ErrAlreadyReviewed
	}
	return nil
}

func (r *PGRepo) ListReviews(ctx context.Context, productID string) ([]Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews WHERE product_id=$1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
