package product

import "time"

type Product struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	// We store price as a string to avoid rounding errors (NUMERIC in Postgres)
	Price          string    `json:"price"`
	CommissionRate float64   `json:"commission_rate"`
	Stock          int       `json:"stock"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Variant is the per-(color,size) inventory record. When a product has
// variants, Product.Stock equals the sum of their quantities.
type Variant struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Priced is the read-time projection returned by listing and detail
// endpoints. FinalPrice and CommissionAmount are derived, never persisted.
type Priced struct {
	Product
	FinalPrice       string `json:"final_price"`
	CommissionAmount string `json:"commission_amount"`
}

// Detail bundles a priced product with its variants and reviews.
type Detail struct {
	Priced
	Variants []Variant `json:"variants,omitempty"`
	Reviews  []Review  `json:"reviews,omitempty"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q      string   `json:"q,omitempty"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Items  []Priced `json:"items"`
}
