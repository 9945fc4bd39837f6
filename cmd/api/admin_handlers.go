package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/admin"
)

// statsHandler returns the platform dashboard rollup.
// @Summary  Platform stats
// @Tags     admin
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} admin.Stats
// @Router   /admin/stats [get]
func statsHandler(repo admin.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := repo.Stats(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// topProductsHandler returns best sellers by units sold.
// @Summary  Top products
// @Tags     admin
// @Produce  json
// @Security BearerAuth
// @Param    limit query int false "max rows"
// @Success  200 {object} map[string]any
// @Router   /admin/stats/top-products [get]
func topProductsHandler(repo admin.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		out, err := repo.TopProducts(c.Request.Context(), limit)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}
