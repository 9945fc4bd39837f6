package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User, updatePassword bool) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, limit, offset int) ([]User, error)

	ListAddresses(ctx context.Context, userID string) ([]Address, error)
	AddAddress(ctx context.Context, a *Address) error
	UpdateAddress(ctx context.Context, a *Address) error
	DeleteAddress(ctx context.Context, userID, addressID string) (bool, error)
	SetDefaultAddress(ctx context.Context, userID, addressID string) error

	AddWishlist(ctx context.Context, userID, productID string) error
	RemoveWishlist(ctx context.Context, userID, productID string) (bool, error)
	ListWishlist(ctx context.Context, userID string) ([]WishlistItem, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, active, shop_name, shop_description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Active, u.ShopName, u.ShopDesc)
	if err != nil {
		// UNIQUE on username/email
		return ErrAlreadyExist
	}
	return nil
}

const userCols = `id, username, email, password_hash, role, active, shop_name, shop_description, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Active,
		&u.ShopName, &u.ShopDesc, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
}

// isUniqueViolation reports a Postgres unique-constraint error (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PGRepo) Update(ctx context.Context, u *User, updatePassword bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	if updatePassword {
		_, err = r.db.Exec(ctx, `
			UPDATE users
			SET username = COALESCE(NULLIF($2, ''), username),
			    email    = COALESCE(NULLIF($3, ''), email),
			    shop_name = COALESCE(NULLIF($4, ''), shop_name),
			    shop_description = COALESCE(NULLIF($5, ''), shop_description),
			    password_hash = $6,
			    updated_at = NOW()
			WHERE id = $1
		`, u.ID, u.Username, u.Email, u.ShopName, u.ShopDesc, u.PasswordHash)
	} else {
		_, err = r.db.Exec(ctx, `
			UPDATE users
			SET username = COALESCE(NULLIF($2, ''), username),
			    email    = COALESCE(NULLIF($3, ''), email),
			    shop_name = COALESCE(NULLIF($4, ''), shop_name),
			    shop_description = COALESCE(NULLIF($5, ''), shop_description),
			    updated_at = NOW()
			WHERE id = $1
		`, u.ID, u.Username, u.Email, u.ShopName, u.ShopDesc)
	}
	if isUniqueViolation(err) {
		return ErrAlreadyExist
	}
	return err
}

func (r *PGRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE users SET active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+userCols+` FROM users
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Active,
			&u.ShopName, &u.ShopDesc, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListAddresses(ctx context.Context, userID string) ([]Address, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, label, street, city, postal_code, country, is_default
		FROM addresses WHERE user_id=$1
		ORDER BY is_default DESC, label
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Street, &a.City, &a.PostalCode, &a.Country, &a.IsDefault); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddAddress(ctx context.Context, a *Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO addresses (id, user_id, label, street, city, postal_code, country, is_default)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, a.ID, a.UserID, a.Label, a.Street, a.City, a.PostalCode, a.Country, a.IsDefault)
	return err
}

func (r *PGRepo) UpdateAddress(ctx context.Context, a *Address) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE addresses
		SET label = COALESCE(NULLIF($3,''), label),
		    street = COALESCE(NULLIF($4,''), street),
		    city = COALESCE(NULLIF($5,''), city),
		    postal_code = COALESCE(NULLIF($6,''), postal_code),
		    country = COALESCE(NULLIF($7,''), country)
		WHERE id=$1 AND user_id=$2
	`, a.ID, a.UserID, a.Label, a.Street, a.City, a.PostalCode, a.Country)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteAddress(ctx context.Context, userID, addressID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id=$1 AND user_id=$2`, addressID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetDefaultAddress clears the previous default and marks the new one in a
// single transaction, so concurrent toggles cannot leave two defaults.
func (r *PGRepo) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE addresses SET is_default=false WHERE user_id=$1 AND is_default`, userID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE addresses SET is_default=true WHERE id=$1 AND user_id=$2`, addressID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) AddWishlist(ctx context.Context, userID, productID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO wishlist (user_id, product_id, added_at)
		VALUES ($1,$2,NOW())
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, userID, productID)
	return err
}

func (r *PGRepo) RemoveWishlist(ctx context.Context, userID, productID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM wishlist WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) ListWishlist(ctx context.Context, userID string) ([]WishlistItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT w.product_id, p.name, p.image, p.price::text, w.added_at
		FROM wishlist w JOIN products p ON p.id = w.product_id
		WHERE w.user_id=$1
		ORDER BY w.added_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WishlistItem
	for rows.Next() {
		var it WishlistItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Image, &it.Price, &it.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
