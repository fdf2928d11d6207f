// controllers/vehicle.go
package controllers

import (
	"net/http"

	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VehicleController struct {
	registry *services.PartyRegistry
	logger   *zap.Logger
}

func NewVehicleController(registry *services.PartyRegistry, logger *zap.Logger) *VehicleController {
	return &VehicleController{registry: registry, logger: logger}
}

type CreateVehicleInput struct {
	CustomerID   uint    `json:"customer_id" binding:"required"`
	VIN          string  `json:"vin" binding:"required,max=32"`
	Make         *string `json:"make" binding:"omitempty,max=100"`
	Model        *string `json:"model" binding:"omitempty,max=100"`
	Year         *int    `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	LicensePlate *string `json:"license_plate" binding:"omitempty,max=20"`
}

// CreateVehicle handles POST /api/vehicles
func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	var input CreateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	vehicle, err := vc.registry.CreateVehicle(c.Request.Context(), shopID, services.CreateVehicleRequest{
		CustomerID:   input.CustomerID,
		VIN:          input.VIN,
		Make:         input.Make,
		Model:        input.Model,
		Year:         input.Year,
		LicensePlate: input.LicensePlate,
	})
	if err != nil {
		handleServiceError(c, vc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}
