package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrStockMismatch = errors.New("stock does not match the sum of variant quantities")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

type CreateInput struct {
	Name           string
	Description    string
	Image          string
	Price          string
	CommissionRate float64
	Stock          int
	Variants       []Variant
}

func (s *Service) Create(ctx context.Context, sellerID string, in CreateInput) (*Detail, error) {
	if in.Name == "" || in.Price == "" || in.Stock < 0 {
		return nil, ErrInvalidInput
	}
	rate := in.CommissionRate
	if rate <= 0 {
		rate = DefaultCommissionRate
	}
	stock := in.Stock
	if len(in.Variants) > 0 {
		sum := 0
		for i := range in.Variants {
			if in.Variants[i].Quantity < 0 {
				return nil, ErrInvalidInput
			}
			in.Variants[i].ID = uuid.NewString()
			sum += in.Variants[i].Quantity
		}
		// With variants present the total stock is the sum of their quantities.
		if in.Stock != 0 && in.Stock != sum {
			return nil, ErrStockMismatch
		}
		stock = sum
	}
	p := &Product{
		ID:             uuid.NewString(),
		SellerID:       sellerID,
		Name:           in.Name,
		Description:    in.Description,
		Image:          in.Image,
		Price:          in.Price,
		CommissionRate: rate,
		Stock:          stock,
		Active:         true,
	}
	// Validate the price before touching the database.
	priced, err := WithPricing(*p)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if err := s.repo.Create(ctx, p, in.Variants); err != nil {
		return nil, err
	}
	return &Detail{Priced: priced, Variants: in.Variants}, nil
}

// Get returns the priced detail projection with variants and reviews.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	priced, err := WithPricing(*p)
	if err != nil {
		return nil, err
	}
	variants, err := s.repo.ListVariants(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repo.ListReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Priced: priced, Variants: variants, Reviews: reviews}, nil
}

func (s *Service) List(ctx context.Context, q Query) ([]Priced, error) {
	products, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]Priced, 0, len(products))
	for _, p := range products {
		priced, err := WithPricing(p)
		if err != nil {
			return nil, err
		}
		out = append(out, priced)
	}
	return out, nil
}

type UpdateInput struct {
	Name           string
	Description    string
	Image          string
	Price          string
	CommissionRate float64
	Stock          *int
	Variants       []Variant
}

// Update applies a partial update. Only the owning seller or an admin may
// modify a product.
func (s *Service) Update(ctx context.Context, callerID string, isAdmin bool, id string, in UpdateInput) (*Detail, error) {
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && cur.SellerID != callerID {
		return nil, ErrForbidden
	}

	// variantSum < 0 means the product keeps whatever variant set it has.
	variantSum := -1
	if len(in.Variants) > 0 {
		sum := 0
		for i := range in.Variants {
			if in.Variants[i].Quantity < 0 {
				return nil, ErrInvalidInput
			}
			in.Variants[i].ID = uuid.NewString()
			sum += in.Variants[i].Quantity
		}
		variantSum = sum
	}

	p := &Product{
		ID:             id,
		Name:           in.Name,
		Description:    in.Description,
		Image:          in.Image,
		CommissionRate: cur.CommissionRate,
		Stock:          cur.Stock,
	}
	if in.CommissionRate > 0 {
		p.CommissionRate = in.CommissionRate
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, ErrInvalidInput
		}
		if variantSum < 0 {
			// Stock-only update: an explicit stock must still match the
			// variant set the product keeps.
			existing, err := s.repo.ListVariants(ctx, id)
			if err != nil {
				return nil, err
			}
			if len(existing) > 0 {
				sum := 0
				for _, v := range existing {
					sum += v.Quantity
				}
				variantSum = sum
			}
		}
		if variantSum >= 0 && *in.Stock != variantSum {
			return nil, ErrStockMismatch
		}
		p.Stock = *in.Stock
	} else if variantSum >= 0 {
		p.Stock = variantSum
	}
	updatePrice := in.Price != ""
	if updatePrice {
		p.Price = in.Price
		if _, _, err := Commission(in.Price, p.CommissionRate); err != nil {
			return nil, ErrInvalidInput
		}
	}

	// Validation is done; nothing below this point can fail a request after
	// part of it has been written.
	if len(in.Variants) > 0 {
		if err := s.repo.ReplaceVariants(ctx, id, in.Variants); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, p, updatePrice); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Deactivate soft-deactivates a product (owner seller or admin).
func (s *Service) Deactivate(ctx context.Context, callerID string, isAdmin bool, id string) error {
	cur, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && cur.SellerID != callerID {
		return ErrForbidden
	}
	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) AddReview(ctx context.Context, userID, productID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	rv := &Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.repo.AddReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}
