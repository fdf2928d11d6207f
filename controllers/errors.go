// controllers/errors.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusForKind maps service error kinds to HTTP status codes.
var statusForKind = map[services.Kind]int{
	services.KindInvalidRequest: http.StatusBadRequest,
	services.KindNotFound:       http.StatusNotFound,
	services.KindConflict:       http.StatusConflict,
	services.KindInternal:       http.StatusInternalServerError,
}

// handleServiceError writes err as a JSON error. Internal failures are
// logged and reported without detail.
func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	kind := services.KindOf(err)
	status, ok := statusForKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("request failed",
			zap.String("request_id", c.GetString("requestId")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.RespondWithCode(c, status, string(services.KindInternal), "Server error")
		return
	}

	message := err.Error()
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}
	utils.RespondWithCode(c, status, string(kind), message)
}

// currentShop returns the authenticated shop, answering 401 when missing.
func currentShop(c *gin.Context) (uint, bool) {
	shopID, ok := utils.ShopID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Shop not found in context")
		return 0, false
	}
	return shopID, true
}

// idParam parses a positive numeric path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondWithCode(c, http.StatusBadRequest, string(services.KindInvalidRequest), "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}

// dateQuery parses an optional YYYY-MM-DD query value. An empty value yields
// nil; a malformed one answers 400.
func dateQuery(c *gin.Context, name, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		utils.RespondWithCode(c, http.StatusBadRequest, string(services.KindInvalidRequest),
			"Invalid "+name+" date, expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
