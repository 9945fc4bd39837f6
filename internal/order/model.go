package order

import "time"

type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`
	Status      Status `json:"status"`

	PaymentMethod string `json:"payment_method"`
	Paid          bool   `json:"paid"`

	// NUMERIC -> string
	Subtotal    string `json:"subtotal"`
	ShippingFee string `json:"shipping_fee"`
	Total       string `json:"total"`

	// Shipping address snapshot, captured at purchase time.
	ShipName       string `json:"ship_name"`
	ShipStreet     string `json:"ship_street"`
	ShipCity       string `json:"ship_city"`
	ShipPostalCode string `json:"ship_postal_code"`
	ShipCountry    string `json:"ship_country"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Item is an immutable snapshot of a purchased product: name, image and
// unit price are captured at purchase time and never re-read from the catalog.
type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// TrackingEntry is one row of the append-only tracking log.
type TrackingEntry struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	Label     string    `json:"label"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
