package services

import (
	"fmt"
	"strings"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest is the typed body of POST /api/invoices. Optional
// fields are pointers so "absent" and "zero" stay distinguishable.
type CreateInvoiceRequest struct {
	CustomerID      uint       `json:"customer_id"`
	VehicleID       uint       `json:"vehicle_id"`
	InvoiceDate     *utils.Day `json:"invoice_date"`
	DueDate         *utils.Day `json:"due_date"`
	OdometerReading *int64     `json:"odometer_reading"`

	SubtotalAmount *decimal.Decimal `json:"subtotal_amount"`
	HSTAmount      *decimal.Decimal `json:"hst_amount"`
	PSTAmount      *decimal.Decimal `json:"pst_amount"`
	TaxAmount      *decimal.Decimal `json:"tax_amount"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`

	Status            *models.InvoiceStatus `json:"status"`
	WarrantyStatement *string               `json:"warranty_statement"`
	Note              *string               `json:"note"`

	Items []InvoiceItemRequest `json:"items"`
}

type InvoiceItemRequest struct {
	Description string           `json:"description"`
	Type        models.ItemType  `json:"type"`
	Condition   *string          `json:"condition"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TotalPrice  *decimal.Decimal `json:"total_price"`
}

// invoiceAmounts are the header amounts after defaults are applied.
type invoiceAmounts struct {
	subtotal, hst, pst, tax, total decimal.Decimal
}

// Validate checks the request in a fixed order and reports the first
// problem. It never touches the database.
func (r *CreateInvoiceRequest) Validate() error {
	if r.CustomerID == 0 || r.VehicleID == 0 || r.InvoiceDate == nil {
		return InvalidRequest("Missing required fields: customer_id, vehicle_id and invoice_date are required")
	}
	if len(r.Items) == 0 {
		return InvalidRequest("Invoice items required")
	}
	for i := range r.Items {
		if reason := r.Items[i].problem(); reason != "" {
			return InvalidRequest(fmt.Sprintf("Invalid invoice item data: item %d %s", i+1, reason))
		}
	}
	if r.Status != nil && !r.Status.IsValid() {
		return InvalidRequest("Invalid status value")
	}
	if r.DueDate != nil && r.DueDate.Time().Before(r.InvoiceDate.Time()) {
		return InvalidRequest("due_date cannot be before invoice_date")
	}
	if r.OdometerReading != nil && *r.OdometerReading < 0 {
		return InvalidRequest("odometer_reading cannot be negative")
	}
	_, err := r.amounts()
	return err
}

func (it *InvoiceItemRequest) problem() string {
	switch {
	case strings.TrimSpace(it.Description) == "":
		return "description is required"
	case it.Type == "":
		return "type is required"
	case !it.Type.IsValid():
		return "type must be Labor or Part"
	case it.Quantity == nil || !it.Quantity.IsPositive():
		return "quantity must be greater than 0"
	case it.UnitPrice == nil:
		return "unit_price is required"
	case it.UnitPrice.IsNegative():
		return "unit_price cannot be negative"
	case it.TotalPrice == nil:
		return "total_price is required"
	case it.TotalPrice.IsNegative():
		return "total_price cannot be negative"
	}
	return ""
}

// amounts applies the header defaults: hst and pst default to zero, tax to
// hst+pst and total to subtotal+tax. Supplied values must agree with the
// values they would default to.
func (r *CreateInvoiceRequest) amounts() (invoiceAmounts, error) {
	var a invoiceAmounts
	if r.SubtotalAmount == nil {
		return a, InvalidRequest("subtotal_amount is required")
	}
	a.subtotal = *r.SubtotalAmount
	if r.HSTAmount != nil {
		a.hst = *r.HSTAmount
	}
	if r.PSTAmount != nil {
		a.pst = *r.PSTAmount
	}

	taxSplit := r.HSTAmount != nil || r.PSTAmount != nil
	switch {
	case r.TaxAmount == nil:
		a.tax = a.hst.Add(a.pst)
	case taxSplit && !r.TaxAmount.Equal(a.hst.Add(a.pst)):
		return a, InvalidRequest("tax_amount must equal hst_amount + pst_amount")
	default:
		a.tax = *r.TaxAmount
	}

	if r.TotalAmount == nil {
		a.total = a.subtotal.Add(a.tax)
	} else if !r.TotalAmount.Equal(a.subtotal.Add(a.tax)) {
		return a, InvalidRequest("total_amount must equal subtotal_amount + tax_amount")
	} else {
		a.total = *r.TotalAmount
	}

	checks := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal_amount", a.subtotal},
		{"hst_amount", a.hst},
		{"pst_amount", a.pst},
		{"tax_amount", a.tax},
	}
	for _, c := range checks {
		if c.value.IsNegative() {
			return a, InvalidRequest(c.name + " cannot be negative")
		}
	}
	return a, nil
}

// toModel builds the header row. The caller assigns the number.
func (r *CreateInvoiceRequest) toModel(shopID uint, number string, a invoiceAmounts) models.Invoice {
	inv := models.Invoice{
		ShopID:            shopID,
		InvoiceNumber:     number,
		CustomerID:        r.CustomerID,
		VehicleID:         r.VehicleID,
		InvoiceDate:       r.InvoiceDate.Time(),
		OdometerReading:   r.OdometerReading,
		SubtotalAmount:    a.subtotal,
		HSTAmount:         a.hst,
		PSTAmount:         a.pst,
		TaxAmount:         a.tax,
		TotalAmount:       a.total,
		Status:            models.StatusDraft,
		WarrantyStatement: models.DefaultWarrantyStatement,
		Note:              trimmedOrNil(r.Note),
	}
	if r.DueDate != nil {
		due := r.DueDate.Time()
		inv.DueDate = &due
	}
	if r.Status != nil {
		inv.Status = *r.Status
	}
	if w := trimmedOrNil(r.WarrantyStatement); w != nil {
		inv.WarrantyStatement = *w
	}
	return inv
}

func (it *InvoiceItemRequest) toModel(invoiceID uint) models.InvoiceItem {
	item := models.InvoiceItem{
		InvoiceID:   invoiceID,
		Description: strings.TrimSpace(it.Description),
		Type:        it.Type,
		Quantity:    *it.Quantity,
		UnitPrice:   *it.UnitPrice,
		TotalPrice:  *it.TotalPrice,
	}
	// condition only describes parts (new, used, refurbished)
	if it.Type == models.ItemTypePart {
		item.Condition = trimmedOrNil(it.Condition)
	}
	return item
}
