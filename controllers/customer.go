// controllers/customer.go
package controllers

import (
	"net/http"

	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerController struct {
	registry *services.PartyRegistry
	logger   *zap.Logger
}

func NewCustomerController(registry *services.PartyRegistry, logger *zap.Logger) *CustomerController {
	return &CustomerController{registry: registry, logger: logger}
}

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name    string  `json:"name" binding:"required,max=200"`
	Phone   string  `json:"phone" binding:"required,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

// ListCustomers handles GET /api/customers?q=
func (cc *CustomerController) ListCustomers(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	customers, err := cc.registry.ListCustomers(c.Request.Context(), shopID, c.Query("q"))
	if err != nil {
		handleServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	customer, err := cc.registry.CreateCustomer(c.Request.Context(), shopID, services.CreateCustomerRequest{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	})
	if err != nil {
		handleServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (cc *CustomerController) GetCustomer(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	customerID, ok := idParam(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := cc.registry.GetCustomer(c.Request.Context(), shopID, customerID)
	if err != nil {
		handleServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) ListCustomerVehicles(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	customerID, ok := idParam(c, "id", "customer")
	if !ok {
		return
	}

	vehicles, err := cc.registry.ListCustomerVehicles(c.Request.Context(), shopID, customerID)
	if err != nil {
		handleServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (cc *CustomerController) GetCustomerHistory(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	customerID, ok := idParam(c, "id", "customer")
	if !ok {
		return
	}

	history, err := cc.registry.CustomerHistory(c.Request.Context(), shopID, customerID)
	if err != nil {
		handleServiceError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
