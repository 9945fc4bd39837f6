package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	_ "github.com/MOUAYEDSB/terfer-commerce-sub001/docs"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/admin"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/config"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/order"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/product"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/user"
)

// @title        Terfer Commerce API
// @version      1.0
// @description  Multi-tenant e-commerce backend: customers, sellers, admins.
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userSvc := user.NewService(user.NewPGRepo(pool), cfg.JWTSecret, cfg.JWTTTL)
	productRepo := product.NewPGRepo(pool)
	productSvc := product.NewService(productRepo)
	orderSvc, err := order.NewService(order.NewPGRepo(pool), productRepo, cfg.ShippingFee)
	if err != nil {
		log.Fatalf("order service: %v", err)
	}
	adminRepo := admin.NewPGRepo(pool)

	r := newRouter(cfg, userSvc, productSvc, orderSvc, adminRepo)
	log.Printf("api listening on %s", cfg.Addr)
	log.Fatal(r.Run(cfg.Addr))
}
