// controllers/dashboard.go
package controllers

import (
	"net/http"

	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

func NewDashboardController(dashboard *services.DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, logger: logger}
}

type DashboardQueryInput struct {
	Month     int    `form:"month" binding:"omitempty,gte=1,lte=12"`
	Year      int    `form:"year" binding:"omitempty,gte=2000,lte=2100"`
	WeekStart string `form:"weekStart" binding:"omitempty,datetime=2006-01-02"`
}

// GetDashboard handles GET /api/dashboard?month=&year=&weekStart=
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	var input DashboardQueryInput
	if err := c.ShouldBindQuery(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	q := services.DashboardQuery{Month: input.Month, Year: input.Year}
	if q.WeekStart, ok = dateQuery(c, "weekStart", input.WeekStart); !ok {
		return
	}

	dashboard, err := dc.dashboard.GetDashboard(c.Request.Context(), shopID, q)
	if err != nil {
		handleServiceError(c, dc.logger, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
