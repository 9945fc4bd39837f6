package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/admin"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/auth"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/config"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/order"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/product"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

const testSecret = "test-secret"

//
// ---------- STUB REPOSITORIES (in memory) ----------
//

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
	addrs map[string]*user.Address
	wish  map[string]map[string]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users: make(map[string]*user.User),
		addrs: make(map[string]*user.Address),
		wish:  make(map[string]map[string]time.Time),
	}
}

func (s *stubUserRepo) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.users {
		if ex.Username == u.Username || ex.Email == u.Email {
			return user.ErrAlreadyExist
		}
	}
	cp := *u
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.users[u.ID] = &cp
	return nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) Update(_ context.Context, u *user.User, updatePassword bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	for _, ex := range s.users {
		if ex.ID == u.ID {
			continue
		}
		if (u.Username != "" && ex.Username == u.Username) || (u.Email != "" && ex.Email == u.Email) {
			return user.ErrAlreadyExist
		}
	}
	if u.Username != "" {
		cur.Username = u.Username
	}
	if u.Email != "" {
		cur.Email = u.Email
	}
	if u.ShopName != "" {
		cur.ShopName = u.ShopName
	}
	if u.ShopDesc != "" {
		cur.ShopDesc = u.ShopDesc
	}
	if updatePassword {
		cur.PasswordHash = u.PasswordHash
	}
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Active = active
	return nil
}

func (s *stubUserRepo) List(_ context.Context, limit, offset int) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubUserRepo) ListAddresses(_ context.Context, userID string) ([]user.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []user.Address
	for _, a := range s.addrs {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubUserRepo) AddAddress(_ context.Context, a *user.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.addrs[a.ID] = &cp
	return nil
}

func (s *stubUserRepo) UpdateAddress(_ context.Context, a *user.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.addrs[a.ID]
	if !ok || cur.UserID != a.UserID {
		return user.ErrNotFound
	}
	if a.Label != "" {
		cur.Label = a.Label
	}
	if a.Street != "" {
		cur.Street = a.Street
	}
	if a.City != "" {
		cur.City = a.City
	}
	return nil
}

func (s *stubUserRepo) DeleteAddress(_ context.Context, userID, addressID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.addrs[addressID]
	if !ok || cur.UserID != userID {
		return false, nil
	}
	delete(s.addrs, addressID)
	return true, nil
}

func (s *stubUserRepo) SetDefaultAddress(_ context.Context, userID, addressID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.addrs[addressID]
	if !ok || target.UserID != userID {
		return user.ErrNotFound
	}
	for _, a := range s.addrs {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (s *stubUserRepo) AddWishlist(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wish[userID] == nil {
		s.wish[userID] = make(map[string]time.Time)
	}
	s.wish[userID][productID] = time.Now().UTC()
	return nil
}

func (s *stubUserRepo) RemoveWishlist(_ context.Context, userID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wish[userID][productID]; !ok {
		return false, nil
	}
	delete(s.wish[userID], productID)
	return true, nil
}

func (s *stubUserRepo) ListWishlist(_ context.Context, userID string) ([]user.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []user.WishlistItem
	for pid, at := range s.wish[userID] {
		out = append(out, user.WishlistItem{ProductID: pid, AddedAt: at})
	}
	return out, nil
}

type stubProductRepo struct {
	mu       sync.Mutex
	items    map[string]*product.Product
	variants map[string][]product.Variant
	reviews  map[string][]product.Review
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		items:    make(map[string]*product.Product),
		variants: make(map[string][]product.Variant),
		reviews:  make(map[string][]product.Review),
	}
}

func (s *stubProductRepo) Create(_ context.Context, p *product.Product, variants []product.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[p.ID] = &cp
	s.variants[p.ID] = append([]product.Variant(nil), variants...)
	return nil
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProductRepo) List(_ context.Context, q product.Query) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []product.Product
	for _, p := range s.items {
		if !p.Active {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) &&
			!strings.Contains(strings.ToLower(p.Description), strings.ToLower(q.Q)) {
			continue
		}
		if q.SellerID != "" && p.SellerID != q.SellerID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	offset := q.Offset
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *stubProductRepo) Update(_ context.Context, p *product.Product, updatePrice bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	if p.Name != "" {
		cur.Name = p.Name
	}
	if p.Description != "" {
		cur.Description = p.Description
	}
	if updatePrice {
		cur.Price = p.Price
	}
	cur.CommissionRate = p.CommissionRate
	cur.Stock = p.Stock
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *stubProductRepo) Deactivate(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return false, nil
	}
	p.Active = false
	return true, nil
}

func (s *stubProductRepo) ListVariants(_ context.Context, productID string) ([]product.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]product.Variant(nil), s.variants[productID]...), nil
}

func (s *stubProductRepo) ReplaceVariants(_ context.Context, productID string, variants []product.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[productID]
	if !ok {
		return product.ErrNotFound
	}
	s.variants[productID] = append([]product.Variant(nil), variants...)
	total := 0
	for _, v := range variants {
		total += v.Quantity
	}
	p.Stock = total
	return nil
}

func (s *stubProductRepo) AddReview(_ context.Context, rv *product.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.reviews[rv.ProductID] {
		if ex.UserID == rv.UserID {
			return product.ErrAlreadyReviewed
		}
	}
	s.reviews[rv.ProductID] = append(s.reviews[rv.ProductID], *rv)
	return nil
}

func (s *stubProductRepo) ListReviews(_ context.Context, productID string) ([]product.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]product.Review(nil), s.reviews[productID]...), nil
}

// tryDecrement models the conditional atomic decrement: it only succeeds
// when enough stock remains.
func (s *stubProductRepo) tryDecrement(productID string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[productID]
	if !ok || p.Stock < qty {
		return false
	}
	p.Stock -= qty
	return true
}

func (s *stubProductRepo) restock(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.items[productID]; ok {
		p.Stock += qty
	}
}

func (s *stubProductRepo) stockOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.items[productID]; ok {
		return p.Stock
	}
	return -1
}

type stubOrderRepo struct {
	mu       sync.Mutex
	products *stubProductRepo
	orders   map[string]*order.Order
	items    map[string][]order.Item
	tracking map[string][]order.TrackingEntry
	seq      int
}

func newStubOrderRepo(products *stubProductRepo) *stubOrderRepo {
	return &stubOrderRepo{
		products: products,
		orders:   make(map[string]*order.Order),
		items:    make(map[string][]order.Item),
		tracking: make(map[string][]order.TrackingEntry),
	}
}

func (s *stubOrderRepo) Create(_ context.Context, o *order.Order, items []order.Item, entry order.TrackingEntry) error {
	var done []order.Item
	for _, it := range items {
		if !s.products.tryDecrement(it.ProductID, it.Quantity) {
			for _, d := range done {
				s.products.restock(d.ProductID, d.Quantity)
			}
			return order.ErrInsufficientStock
		}
		done = append(done, it)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	o.OrderNumber = fmt.Sprintf("ORD-TEST-%06d", s.seq)
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	s.orders[o.ID] = &cp
	s.items[o.ID] = append([]order.Item(nil), items...)
	s.tracking[o.ID] = []order.TrackingEntry{entry}
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderRepo) GetItems(_ context.Context, orderID string) ([]order.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return nil, order.ErrNotFound
	}
	return append([]order.Item(nil), s.items[orderID]...), nil
}

func (s *stubOrderRepo) GetTracking(_ context.Context, orderID string) ([]order.TrackingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.TrackingEntry(nil), s.tracking[orderID]...), nil
}

func (s *stubOrderRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) ListAll(_ context.Context, limit, offset int) ([]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderRepo) SaveTransition(_ context.Context, prev order.Status, o *order.Order, entry order.TrackingEntry) error {
	s.mu.Lock()
	cur, ok := s.orders[o.ID]
	if !ok {
		s.mu.Unlock()
		return order.ErrNotFound
	}
	if cur.Status != prev {
		s.mu.Unlock()
		return order.ErrConflict
	}
	*cur = *o
	s.tracking[o.ID] = append(s.tracking[o.ID], entry)
	items := append([]order.Item(nil), s.items[o.ID]...)
	s.mu.Unlock()

	if o.Status == order.StatusCancelled {
		for _, it := range items {
			s.products.restock(it.ProductID, it.Quantity)
		}
	}
	return nil
}

type stubStatsRepo struct{ stats admin.Stats }

func (s *stubStatsRepo) Stats(_ context.Context) (*admin.Stats, error) {
	cp := s.stats
	return &cp, nil
}

func (s *stubStatsRepo) TopProducts(_ context.Context, limit int) ([]admin.TopProduct, error) {
	return []admin.TopProduct{{ProductID: "p1", Name: "Mouse", UnitsSold: 7, Revenue: "84.00"}}, nil
}

//
// ---------- TEST ENVIRONMENT ----------
//

type testEnv struct {
	router   *gin.Engine
	users    *stubUserRepo
	products *stubProductRepo
	orders   *stubOrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		JWTSecret:   testSecret,
		JWTTTL:      time.Hour,
		ShippingFee: "10.00",
		UploadDir:   t.TempDir(),
		PublicURL:   "http://test",
	}
	users := newStubUserRepo()
	products := newStubProductRepo()
	orders := newStubOrderRepo(products)

	userSvc := user.NewService(users, cfg.JWTSecret, cfg.JWTTTL)
	productSvc := product.NewService(products)
	orderSvc, err := order.NewService(orders, products, cfg.ShippingFee)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	r := newRouter(cfg, userSvc, productSvc, orderSvc, &stubStatsRepo{})
	return &testEnv{router: r, users: users, products: products, orders: orders}
}

func (e *testEnv) seedUser(t *testing.T, u user.User) user.User {
	t.Helper()
	if u.PasswordHash == "" {
		u.PasswordHash = "x"
	}
	if err := e.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *testEnv) seedProduct(t *testing.T, p product.Product) product.Product {
	t.Helper()
	if p.CommissionRate == 0 {
		p.CommissionRate = product.DefaultCommissionRate
	}
	p.Active = true
	if err := e.products.Create(context.Background(), &p, nil); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := auth.Sign(testSecret, userID, role, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + tok
}
