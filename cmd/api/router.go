package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/admin"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/auth"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/config"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/httpx"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/order"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/product"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/user"
)

func newRouter(cfg config.Config, users *user.Service, products *product.Service, orders *order.Service, stats admin.Repository) *gin.Engine {
	r := gin.New()
	r.Use(httpx.RequestID(), httpx.Logger(), httpx.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static("/uploads", cfg.UploadDir)

	authn := auth.RequireAuth(cfg.JWTSecret)
	adminOnly := auth.RequireRoles(string(user.RoleAdmin))
	sellers := auth.RequireRoles(string(user.RoleSeller), string(user.RoleAdmin))
	customers := auth.RequireRoles(string(user.RoleCustomer))

	api := r.Group("/api")

	u := api.Group("/users")
	{
		u.POST("/register", registerHandler(users))
		u.POST("/login", loginHandler(users))

		me := u.Group("/me", authn)
		{
			me.GET("", getProfileHandler(users))
			me.PUT("", updateProfileHandler(users))
			me.GET("/addresses", listAddressesHandler(users))
			me.POST("/addresses", addAddressHandler(users))
			me.PUT("/addresses/:id", updateAddressHandler(users))
			me.DELETE("/addresses/:id", deleteAddressHandler(users))
			me.PUT("/addresses/:id/default", setDefaultAddressHandler(users))
			me.GET("/wishlist", wishlistHandler(users))
			me.POST("/wishlist/:productID", addWishlistHandler(users))
			me.DELETE("/wishlist/:productID", removeWishlistHandler(users))
		}

		u.GET("", authn, adminOnly, listUsersHandler(users))
		u.PUT("/:id/active", authn, adminOnly, setUserActiveHandler(users))
		u.DELETE("/:id", authn, adminOnly, disableUserHandler(users))
	}

	p := api.Group("/products")
	{
		p.GET("", listProductsHandler(products))
		p.GET("/:id", getProductHandler(products))
		p.POST("", authn, sellers, createProductHandler(products))
		p.PUT("/:id", authn, sellers, updateProductHandler(products))
		p.DELETE("/:id", authn, sellers, deleteProductHandler(products))
		p.POST("/:id/reviews", authn, customers, addReviewHandler(products))
	}

	o := api.Group("/orders", authn)
	{
		o.POST("", customers, createOrderHandler(orders))
		o.GET("", listMyOrdersHandler(orders))
		o.GET("/all", adminOnly, listAllOrdersHandler(orders))
		o.GET("/:id", getOrderHandler(orders))
		o.PUT("/:id/status", sellers, updateOrderStatusHandler(orders))
		o.PUT("/:id/cancel", customers, cancelOrderHandler(orders))
	}

	api.POST("/upload", authn, sellers, uploadHandler(cfg))

	a := api.Group("/admin", authn, adminOnly)
	{
		a.GET("/stats", statsHandler(stats))
		a.GET("/stats/top-products", topProductsHandler(stats))
	}

	return r
}
