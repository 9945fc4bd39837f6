package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/auth"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/httpx"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/user"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ShopName string `json:"shop_name"`
	ShopDesc string `json:"shop_description"`
}

// registerHandler creates a customer or seller account.
// @Summary  Register
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body registerRequest true "account"
// @Success  201 {object} user.User
// @Failure  400 {object} map[string]string
// @Failure  409 {object} map[string]string
// @Router   /users/register [post]
func registerHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := svc.Register(c.Request.Context(), user.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			Role:     user.Role(req.Role),
			ShopName: req.ShopName,
			ShopDesc: req.ShopDesc,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginHandler verifies credentials and returns a bearer token.
// @Summary  Login
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "credentials"
// @Success  200 {object} map[string]any
// @Failure  401 {object} map[string]string
// @Router   /users/login [post]
func loginHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		u, token, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
	}
}

func getProfileHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Get(c.Request.Context(), c.GetString(auth.CtxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ShopName string `json:"shop_name"`
	ShopDesc string `json:"shop_description"`
}

func updateProfileHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := svc.UpdateProfile(c.Request.Context(), c.GetString(auth.CtxUserID), user.UpdateProfileInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			ShopName: req.ShopName,
			ShopDesc: req.ShopDesc,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func listAddressesHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Addresses(c.Request.Context(), c.GetString(auth.CtxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

func addAddressHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var a user.Address
		if err := c.ShouldBindJSON(&a); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		out, err := svc.AddAddress(c.Request.Context(), c.GetString(auth.CtxUserID), a)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

func updateAddressHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var a user.Address
		if err := c.ShouldBindJSON(&a); err != nil {
			httpx.Error(c, http.StatusBadRequest, "invalid json")
			return
		}
		a.ID = c.Param("id")
		if err := svc.UpdateAddress(c.Request.Context(), c.GetString(auth.CtxUserID), a); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func deleteAddressHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteAddress(c.Request.Context(), c.GetString(auth.CtxUserID), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func setDefaultAddressHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.SetDefaultAddress(c.Request.Context(), c.GetString(auth.CtxUserID), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func wishlistHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Wishlist(c.Request.Context(), c.GetString(auth.CtxUserID))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

func addWishlistHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.AddToWishlist(c.Request.Context(), c.GetString(auth.CtxUserID), c.Param("productID")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func removeWishlistHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RemoveFromWishlist(c.Request.Context(), c.GetString(auth.CtxUserID), c.Param("productID")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listUsersHandler is the admin account listing.
// @Summary  List users (admin)
// @Tags     admin
// @Produce  json
// @Security BearerAuth
// @Param    limit  query int false "page size"
// @Param    offset query int false "page offset"
// @Success  200 {object} map[string]any
// @Router   /users [get]
func listUsersHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		out, err := svc.List(c.Request.Context(), limit, offset)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": out, "limit": limit, "offset": offset})
	}
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

func setUserActiveHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
			httpx.Error(c, http.StatusBadRequest, "active is required")
			return
		}
		if err := svc.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// disableUserHandler soft-disables an account. Admin accounts are refused.
func disableUserHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Disable(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
