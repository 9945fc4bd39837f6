package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/product"
)

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrVariantRequired = errors.New("product requires a color/size variant selection")
)

// Catalog is the slice of the product store the order workflow needs.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
	ListVariants(ctx context.Context, productID string) ([]product.Variant, error)
}

type Service struct {
	repo        Repository
	catalog     Catalog
	shippingFee decimal.Decimal
}

// NewService wires the order workflow. shippingFee is the fixed per-order fee
// added to every subtotal.
func NewService(repo Repository, catalog Catalog, shippingFee string) (*Service, error) {
	fee, err := decimal.NewFromString(shippingFee)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping fee %q: %w", shippingFee, err)
	}
	return &Service{repo: repo, catalog: catalog, shippingFee: fee}, nil
}

// Create builds the order from server-side product data (price, name and
// image are snapshotted at the customer-facing final price) and persists it
// together with all stock decrements in one transaction.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Order, []Item, error) {
	if len(req.Items) == 0 {
		return nil, nil, ErrEmptyOrder
	}
	if req.PaymentMethod == "" || req.Shipping.Street == "" || req.Shipping.City == "" {
		return nil, nil, ErrInvalidInput
	}

	orderID := uuid.NewString()
	subtotal := decimal.Zero
	items := make([]Item, 0, len(req.Items))
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			return nil, nil, ErrInvalidInput
		}
		p, err := s.catalog.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !p.Active {
			return nil, nil, product.ErrNotFound
		}
		// Items on a variant-carrying product must name one of its variants,
		// otherwise the product decrement would leave the variant sum behind.
		variants, err := s.catalog.ListVariants(ctx, in.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if len(variants) > 0 {
			matched := false
			for _, v := range variants {
				if v.Color == in.Color && v.Size == in.Size {
					matched = true
					break
				}
			}
			if !matched {
				return nil, nil, ErrVariantRequired
			}
		} else if in.Color != "" || in.Size != "" {
			return nil, nil, ErrInvalidInput
		}
		_, final, err := product.Commission(p.Price, p.CommissionRate)
		if err != nil {
			return nil, nil, err
		}
		unit, err := decimal.NewFromString(final)
		if err != nil {
			return nil, nil, err
		}
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(in.Quantity))))
		items = append(items, Item{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Color:     in.Color,
			Size:      in.Size,
			UnitPrice: final,
			Quantity:  in.Quantity,
		})
	}
	total := subtotal.Add(s.shippingFee)

	now := time.Now().UTC()
	o := &Order{
		ID:             orderID,
		UserID:         userID,
		Status:         StatusConfirmed,
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       subtotal.StringFixed(2),
		ShippingFee:    s.shippingFee.StringFixed(2),
		Total:          total.StringFixed(2),
		ShipName:       req.Shipping.Name,
		ShipStreet:     req.Shipping.Street,
		ShipCity:       req.Shipping.City,
		ShipPostalCode: req.Shipping.PostalCode,
		ShipCountry:    req.Shipping.Country,
	}
	entry := TrackingEntry{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    StatusConfirmed,
		Label:     StatusConfirmed.Label(),
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, o, items, entry); err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

// Get returns an order with items and tracking log. Only the owner or an
// admin may read it.
func (s *Service) Get(ctx context.Context, id, callerID string, isAdmin bool) (*Order, []Item, []TrackingEntry, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	if !isAdmin && o.UserID != callerID {
		return nil, nil, nil, ErrForbidden
	}
	items, err := s.repo.GetItems(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	tracking, err := s.repo.GetTracking(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	return o, items, tracking, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// UpdateStatus moves an order along the validated transition table.
// Delivered stamps the delivery time and marks payment as paid; cancelled
// stamps the cancellation time and restores stock.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status, note string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	entry, err := Apply(o, to, note, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransition(ctx, prev, o, entry); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel is the customer-initiated cancellation: owner only, rejected once
// the order has shipped or been delivered, restores every item's stock.
func (s *Service) Cancel(ctx context.Context, id, callerID, reason string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != callerID {
		return nil, ErrForbidden
	}
	switch o.Status {
	case StatusShipped, StatusDelivered, StatusCancelled:
		return nil, ErrNotCancellable
	}
	prev := o.Status
	o.CancelReason = reason
	entry, err := Apply(o, StatusCancelled, reason, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransition(ctx, prev, o, entry); err != nil {
		return nil, err
	}
	return o, nil
}
