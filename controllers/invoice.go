// controllers/invoice.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"garageflow-backend/cache"
	"garageflow-backend/models"
	"garageflow-backend/services"
	"garageflow-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets clients retry POST /api/invoices safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const idempotencyStoreTimeout = 5 * time.Second

type InvoiceController struct {
	invoices       *services.InvoiceService
	idempotency    cache.IdempotencyStore
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

func NewInvoiceController(invoices *services.InvoiceService, idempotency cache.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *InvoiceController {
	return &InvoiceController{
		invoices:       invoices,
		idempotency:    idempotency,
		idempotencyTTL: ttl,
		logger:         logger,
	}
}

// UpdateStatusInput defines the expected JSON structure for a status change
type UpdateStatusInput struct {
	Status models.InvoiceStatus `json:"status" binding:"required"`
}

type ListInvoicesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=Draft Approved Paid Overdue"`
	Query  string `form:"q"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// CreateInvoice handles POST /api/invoices. When an Idempotency-Key is sent,
// the first successful response is stored and replayed for retries.
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	storeKey := ""
	if key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)); key != "" && ic.idempotency != nil {
		storeKey = fmt.Sprintf("%d:%s", shopID, key)
		stored, err := ic.idempotency.Reserve(ctx, storeKey, ic.idempotencyTTL)
		switch {
		case errors.Is(err, cache.ErrInFlight):
			utils.RespondWithCode(c, http.StatusConflict, string(services.KindConflict),
				"A request with this Idempotency-Key is already in progress")
			return
		case err != nil:
			ic.logger.Warn("idempotency store unavailable", zap.Error(err))
			storeKey = ""
		case stored != nil:
			c.Header("Idempotent-Replayed", "true")
			c.Data(stored.StatusCode, "application/json; charset=utf-8", stored.Body)
			return
		}
	}

	// the key must be settled even when the client has gone away
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idempotencyStoreTimeout)
	defer cancel()

	release := func() {
		if storeKey == "" {
			return
		}
		if err := ic.idempotency.Release(storeCtx, storeKey); err != nil {
			ic.logger.Warn("failed to release idempotency key", zap.Error(err))
		}
	}

	var input services.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		release()
		utils.RespondWithCode(c, http.StatusBadRequest, string(services.KindInvalidRequest), "Invalid request body: "+err.Error())
		return
	}

	result, err := ic.invoices.CreateInvoice(ctx, shopID, input)
	if err != nil {
		release()
		handleServiceError(c, ic.logger, err)
		return
	}

	body, err := json.Marshal(gin.H{
		"message":        "Invoice created",
		"invoice_id":     result.InvoiceID,
		"invoice_number": result.InvoiceNumber,
	})
	if err != nil {
		release()
		handleServiceError(c, ic.logger, services.Internal("encode response", err))
		return
	}
	if storeKey != "" {
		resp := cache.Response{StatusCode: http.StatusCreated, Body: body}
		if err := ic.idempotency.Complete(storeCtx, storeKey, resp, ic.idempotencyTTL); err != nil {
			ic.logger.Warn("failed to store idempotent response", zap.Error(err))
		}
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}

// ListInvoices handles GET /api/invoices?status=&q=&from=&to=
func (ic *InvoiceController) ListInvoices(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}

	var query ListInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	filter := services.ListFilter{
		Status: models.InvoiceStatus(query.Status),
		Query:  strings.TrimSpace(query.Query),
	}
	if filter.DateFrom, ok = dateQuery(c, "from", query.From); !ok {
		return
	}
	if filter.DateTo, ok = dateQuery(c, "to", query.To); !ok {
		return
	}

	invoices, err := ic.invoices.ListInvoices(c.Request.Context(), shopID, filter)
	if err != nil {
		handleServiceError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetInvoice handles GET /api/invoices/:id
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	invoiceID, ok := idParam(c, "id", "invoice")
	if !ok {
		return
	}

	detail, err := ic.invoices.GetInvoice(c.Request.Context(), shopID, invoiceID)
	if err != nil {
		handleServiceError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateStatus handles PATCH /api/invoices/:id/status
func (ic *InvoiceController) UpdateStatus(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	invoiceID, ok := idParam(c, "id", "invoice")
	if !ok {
		return
	}

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithCode(c, http.StatusBadRequest, string(services.KindInvalidRequest), "Invalid status value")
		return
	}

	if err := ic.invoices.UpdateStatus(c.Request.Context(), shopID, invoiceID, input.Status); err != nil {
		handleServiceError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// PrintInvoice handles GET /api/invoices/:id/print
func (ic *InvoiceController) PrintInvoice(c *gin.Context) {
	shopID, ok := currentShop(c)
	if !ok {
		return
	}
	invoiceID, ok := idParam(c, "id", "invoice")
	if !ok {
		return
	}

	doc, err := ic.invoices.PrintInvoice(c.Request.Context(), shopID, invoiceID)
	if err != nil {
		handleServiceError(c, ic.logger, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
