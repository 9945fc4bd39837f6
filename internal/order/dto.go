package order

// ItemRequest is one cart line in a creation request.
// swagger:model OrderItemRequest
type ItemRequest struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Color     string `json:"color,omitempty" example:"black"`
	Size      string `json:"size,omitempty" example:"M"`
	Quantity  int    `json:"quantity" example:"2"`
}

// ShippingRequest is the shipping address captured on the order.
// swagger:model ShippingRequest
type ShippingRequest struct {
	Name       string `json:"name" example:"Jane Doe"`
	Street     string `json:"street" example:"1 Main St"`
	City       string `json:"city" example:"Springfield"`
	PostalCode string `json:"postal_code" example:"12345"`
	Country    string `json:"country" example:"US"`
}

// CreateRequest is the order creation payload.
// swagger:model CreateOrderRequest
type CreateRequest struct {
	Items         []ItemRequest   `json:"items"`
	Shipping      ShippingRequest `json:"shipping"`
	PaymentMethod string          `json:"payment_method" example:"cash_on_delivery"`
}
