// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"

	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	shops  *services.ShopService
	logger *zap.Logger
}

func NewAuthController(shops *services.ShopService, logger *zap.Logger) *AuthController {
	return &AuthController{shops: shops, logger: logger}
}

// Register creates a shop account
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterShopRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	shop, err := ac.shops.Register(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Shop registered successfully",
		"shop":    services.ShopIdentity{ID: shop.ID, ShopName: shop.Name},
	})
}

// Login checks the shop credentials and returns a token
func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	result, err := ac.shops.Login(c.Request.Context(), input)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		handleServiceError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me returns the authenticated shop profile
func (ac *AuthController) Me(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	shop, err := ac.shops.GetShop(c.Request.Context(), shopID)
	if err != nil {
		handleServiceError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// ChangePassword replaces the shop password after checking the current one
func (ac *AuthController) ChangePassword(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	var input services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	if err := ac.shops.ChangePassword(c.Request.Context(), shopID, input); err != nil {
		handleServiceError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
