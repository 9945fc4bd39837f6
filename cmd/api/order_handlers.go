package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/auth"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/httpx"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/order"
)

// createOrderHandler places an order for the calling customer.
// @Summary  Create order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body order.CreateRequest true "order"
// @Success  201 {object} map[string]any
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string "insufficient stock"
// @Router   /orders [post]
func createOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, items, err := svc.Create(c.Request.Context(), c.GetString(auth.CtxUserID), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": o, "items": items})
	}
}

// getOrderHandler returns an order with items and tracking log (owner or admin).
// @Summary  Get order
// @Tags     orders
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "order id"
// @Success  200 {object} map[string]any
// @Failure  403 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, tracking, err := svc.Get(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserID), isAdmin(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": items, "tracking": tracking})
	}
}

func listMyOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		out, err := svc.ListByUser(c.Request.Context(), c.GetString(auth.CtxUserID), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out, "limit": limit, "offset": offset})
	}
}

func listAllOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		out, err := svc.ListAll(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out, "limit": limit, "offset": offset})
	}
}

type statusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// updateOrderStatusHandler moves an order along the lifecycle
// (seller/admin). Illegal transitions are rejected.
// @Summary  Update order status
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string        true "order id"
// @Param    body body statusRequest true "target status"
// @Success  200 {object} order.Order
// @Failure  400 {object} map[string]string "unknown status"
// @Failure  422 {object} map[string]string "illegal transition"
// @Router   /orders/{id}/status [put]
func updateOrderStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), order.Status(req.Status), req.Note)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// cancelOrderHandler is the customer-initiated cancellation. Restores stock.
// @Summary  Cancel order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string        true "order id"
// @Param    body body cancelRequest false "reason"
// @Success  200 {object} order.Order
// @Failure  403 {object} map[string]string
// @Failure  409 {object} map[string]string "already shipped or delivered"
// @Router   /orders/{id}/cancel [put]
func cancelOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelRequest
		_ = c.ShouldBindJSON(&req) // body is optional
		o, err := svc.Cancel(c.Request.Context(), c.Param("id"), c.GetString(auth.CtxUserID), req.Reason)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
