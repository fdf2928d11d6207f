package services

import (
	"testing"
	"time"

	"garageflow-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreateInvoiceRequest)
		wantMsg string
	}{
		{"valid", func(r *CreateInvoiceRequest) {}, ""},
		{"missing customer", func(r *CreateInvoiceRequest) { r.CustomerID = 0 }, "Missing required fields"},
		{"missing vehicle", func(r *CreateInvoiceRequest) { r.VehicleID = 0 }, "Missing required fields"},
		{"missing date", func(r *CreateInvoiceRequest) { r.InvoiceDate = nil }, "Missing required fields"},
		{"missing fields win over items", func(r *CreateInvoiceRequest) {
			r.CustomerID = 0
			r.Items = nil
		}, "Missing required fields"},
		{"no items", func(r *CreateInvoiceRequest) { r.Items = nil }, "Invoice items required"},
		{"blank description", func(r *CreateInvoiceRequest) { r.Items[0].Description = "  " }, "item 1 description is required"},
		{"missing type", func(r *CreateInvoiceRequest) { r.Items[1].Type = "" }, "item 2 type is required"},
		{"unknown type", func(r *CreateInvoiceRequest) { r.Items[1].Type = "Fee" }, "item 2 type must be Labor or Part"},
		{"zero quantity", func(r *CreateInvoiceRequest) { r.Items[0].Quantity = dec("0") }, "item 1 quantity must be greater than 0"},
		{"missing quantity", func(r *CreateInvoiceRequest) { r.Items[0].Quantity = nil }, "item 1 quantity must be greater than 0"},
		{"missing unit price", func(r *CreateInvoiceRequest) { r.Items[0].UnitPrice = nil }, "item 1 unit_price is required"},
		{"negative unit price", func(r *CreateInvoiceRequest) { r.Items[0].UnitPrice = dec("-1") }, "item 1 unit_price cannot be negative"},
		{"missing total price", func(r *CreateInvoiceRequest) { r.Items[1].TotalPrice = nil }, "item 2 total_price is required"},
		{"free part is fine", func(r *CreateInvoiceRequest) {
			r.Items[1].UnitPrice = dec("0")
			r.Items[1].TotalPrice = dec("0")
		}, ""},
		{"bad status", func(r *CreateInvoiceRequest) {
			s := models.InvoiceStatus("Void")
			r.Status = &s
		}, "Invalid status value"},
		{"due before invoice date", func(r *CreateInvoiceRequest) { r.DueDate = day(2026, time.January, 1) }, "due_date cannot be before invoice_date"},
		{"negative odometer", func(r *CreateInvoiceRequest) {
			v := int64(-5)
			r.OdometerReading = &v
		}, "odometer_reading cannot be negative"},
		{"missing subtotal", func(r *CreateInvoiceRequest) { r.SubtotalAmount = nil }, "subtotal_amount is required"},
		{"tax disagrees with split", func(r *CreateInvoiceRequest) { r.TaxAmount = dec("13.00") }, "tax_amount must equal hst_amount + pst_amount"},
		{"total disagrees", func(r *CreateInvoiceRequest) { r.TotalAmount = dec("111.99") }, "total_amount must equal subtotal_amount + tax_amount"},
		{"negative subtotal", func(r *CreateInvoiceRequest) {
			r.SubtotalAmount = dec("-100")
			r.TotalAmount = dec("-88")
		}, "subtotal_amount cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := twoItemRequest(1, 2)
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCreateInvoiceRequest_AmountDefaults(t *testing.T) {
	t.Run("tax and total derived from split", func(t *testing.T) {
		req := twoItemRequest(1, 2)
		req.TaxAmount = nil
		req.TotalAmount = nil

		a, err := req.amounts()
		require.NoError(t, err)
		assert.True(t, a.tax.Equal(*dec("12")))
		assert.True(t, a.total.Equal(*dec("112")))
	})

	t.Run("tax without split is taken as given", func(t *testing.T) {
		req := twoItemRequest(1, 2)
		req.HSTAmount = nil
		req.PSTAmount = nil
		req.TaxAmount = dec("13")
		req.TotalAmount = dec("113")

		a, err := req.amounts()
		require.NoError(t, err)
		assert.True(t, a.hst.IsZero())
		assert.True(t, a.pst.IsZero())
		assert.True(t, a.tax.Equal(*dec("13")))
	})

	t.Run("no tax at all", func(t *testing.T) {
		req := twoItemRequest(1, 2)
		req.HSTAmount = nil
		req.PSTAmount = nil
		req.TaxAmount = nil
		req.TotalAmount = nil

		a, err := req.amounts()
		require.NoError(t, err)
		assert.True(t, a.tax.IsZero())
		assert.True(t, a.total.Equal(*dec("100")))
	})
}

func TestInvoiceItemRequest_ToModelDropsLaborCondition(t *testing.T) {
	labor := InvoiceItemRequest{Description: " Diagnosis ", Type: models.ItemTypeLabor, Condition: strPtr("New"),
		Quantity: dec("1.5"), UnitPrice: dec("100"), TotalPrice: dec("150")}
	part := InvoiceItemRequest{Description: "Alternator", Type: models.ItemTypePart, Condition: strPtr(" Refurbished "),
		Quantity: dec("1"), UnitPrice: dec("250"), TotalPrice: dec("250")}

	l := labor.toModel(3)
	p := part.toModel(3)

	assert.Equal(t, "Diagnosis", l.Description)
	assert.Nil(t, l.Condition)
	assert.Equal(t, uint(3), l.InvoiceID)
	require.NotNil(t, p.Condition)
	assert.Equal(t, "Refurbished", *p.Condition)
}
