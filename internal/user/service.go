package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/auth"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrDisabled       = errors.New("account is disabled")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
)

type Service struct {
	repo      Repository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewService(repo Repository, jwtSecret string, jwtTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     Role
	ShopName string
	ShopDesc string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = RoleCustomer
	}
	// Admin accounts are provisioned out of band, never via registration.
	if role != RoleCustomer && role != RoleSeller {
		return nil, ErrInvalidInput
	}
	if role == RoleSeller && in.ShopName == "" {
		return nil, ErrInvalidInput
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		ShopName:     in.ShopName,
		ShopDesc:     in.ShopDesc,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns the user with a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidInput
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrBadCredentials
		}
		return nil, "", err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrBadCredentials
	}
	if !u.Active {
		return nil, "", ErrDisabled
	}
	token, err := auth.Sign(s.jwtSecret, u.ID, string(u.Role), s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

type UpdateProfileInput struct {
	Username string
	Email    string
	Password string
	ShopName string
	ShopDesc string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (*User, error) {
	u := &User{
		ID:       id,
		Username: in.Username,
		Email:    in.Email,
		ShopName: in.ShopName,
		ShopDesc: in.ShopDesc,
	}
	updatePassword := false
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
		updatePassword = true
	}
	if err := s.repo.Update(ctx, u, updatePassword); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Addresses(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListAddresses(ctx, userID)
}

func (s *Service) AddAddress(ctx context.Context, userID string, a Address) (*Address, error) {
	if a.Street == "" || a.City == "" {
		return nil, ErrInvalidInput
	}
	a.ID = uuid.NewString()
	a.UserID = userID
	if err := s.repo.AddAddress(ctx, &a); err != nil {
		return nil, err
	}
	if a.IsDefault {
		if err := s.repo.SetDefaultAddress(ctx, userID, a.ID); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

func (s *Service) UpdateAddress(ctx context.Context, userID string, a Address) error {
	a.UserID = userID
	return s.repo.UpdateAddress(ctx, &a)
}

func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	ok, err := s.repo.DeleteAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	return s.repo.SetDefaultAddress(ctx, userID, addressID)
}

func (s *Service) AddToWishlist(ctx context.Context, userID, productID string) error {
	return s.repo.AddWishlist(ctx, userID, productID)
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	ok, err := s.repo.RemoveWishlist(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Wishlist(ctx context.Context, userID string) ([]WishlistItem, error) {
	return s.repo.ListWishlist(ctx, userID)
}

// --- admin operations ---

func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// Disable soft-disables an account. Admin accounts cannot be removed this way.
func (s *Service) Disable(ctx context.Context, id string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == RoleAdmin {
		return ErrForbidden
	}
	return s.repo.SetActive(ctx, id, false)
}
