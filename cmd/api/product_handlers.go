package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/auth"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/httpx"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/product"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/user"
)

func isAdmin(c *gin.Context) bool {
	return c.GetString(auth.CtxRole) == string(user.RoleAdmin)
}

// listProductsHandler lists active products with optional search, each row
// carrying the derived final price and commission amount.
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    q      query string false "search across name and description"
// @Param    seller query string false "filter by seller id"
// @Param    limit  query int    false "page size"
// @Param    offset query int    false "page offset"
// @Success  200 {object} product.ListResponse
// @Router   /products [get]
func listProductsHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		q := strings.TrimSpace(c.Query("q"))
		items, err := svc.List(c.Request.Context(), product.Query{
			Q:        q,
			SellerID: c.Query("seller"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

// getProductHandler returns the detail projection with variants and reviews.
// @Summary  Product detail
// @Tags     products
// @Produce  json
// @Param    id path string true "product id"
// @Success  200 {object} product.Detail
// @Failure  404 {object} map[string]string
// @Router   /products/{id} [get]
func getProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

type productRequest struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Image          string            `json:"image"`
	Price          string            `json:"price"`
	CommissionRate float64           `json:"commission_rate"`
	Stock          *int              `json:"stock"`
	Variants       []product.Variant `json:"variants"`
}

// createProductHandler creates a product owned by the calling seller.
// @Summary  Create product
// @Tags     products
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body productRequest true "product"
// @Success  201 {object} product.Detail
// @Failure  400 {object} map[string]string
// @Router   /products [post]
func createProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		stock := 0
		if req.Stock != nil {
			stock = *req.Stock
		}
		d, err := svc.Create(c.Request.Context(), c.GetString(auth.CtxUserID), product.CreateInput{
			Name:           req.Name,
			Description:    req.Description,
			Image:          req.Image,
			Price:          req.Price,
			CommissionRate: req.CommissionRate,
			Stock:          stock,
			Variants:       req.Variants,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func updateProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		d, err := svc.Update(c.Request.Context(), c.GetString(auth.CtxUserID), isAdmin(c), c.Param("id"), product.UpdateInput{
			Name:           req.Name,
			Description:    req.Description,
			Image:          req.Image,
			Price:          req.Price,
			CommissionRate: req.CommissionRate,
			Stock:          req.Stock,
			Variants:       req.Variants,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// deleteProductHandler soft-deactivates a product.
func deleteProductHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Deactivate(c.Request.Context(), c.GetString(auth.CtxUserID), isAdmin(c), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// addReviewHandler appends a review; one per user per product.
// @Summary  Add review
// @Tags     products
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string        true "product id"
// @Param    body body reviewRequest true "review"
// @Success  201 {object} product.Review
// @Failure  409 {object} map[string]string
// @Router   /products/{id}/reviews [post]
func addReviewHandler(svc *product.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		rv, err := svc.AddReview(c.Request.Context(), c.GetString(auth.CtxUserID), c.Param("id"), req.Rating, req.Comment)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, rv)
	}
}
