package services

import (
	"context"
	"strconv"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"github.com/shopspring/decimal"
)

// InvoiceDocument is the render-ready shape of an invoice handed to the PDF
// renderer. Money is preformatted with two decimals.
type InvoiceDocument struct {
	Title         string     `json:"title"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   utils.Day  `json:"invoice_date"`
	DueDate       *utils.Day `json:"due_date,omitempty"`
	Status        string     `json:"status"`
	Odometer      *int64     `json:"odometer_reading,omitempty"`

	Shop     DocumentParty `json:"shop"`
	Customer DocumentParty `json:"customer"`
	Vehicle  DocumentCar   `json:"vehicle"`

	Lines  []DocumentLine `json:"lines"`
	Totals DocumentTotals `json:"totals"`

	WarrantyStatement string  `json:"warranty_statement"`
	Note              *string `json:"note,omitempty"`
}

type DocumentParty struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
}

type DocumentCar struct {
	VIN          string  `json:"vin"`
	Description  string  `json:"description"`
	LicensePlate *string `json:"license_plate,omitempty"`
}

type DocumentLine struct {
	Description string `json:"description"`
	Type        string `json:"type"`
	Condition   string `json:"condition,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type DocumentTotals struct {
	Labor    string `json:"labor"`
	Parts    string `json:"parts"`
	Subtotal string `json:"subtotal"`
	HST      string `json:"hst"`
	PST      string `json:"pst"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// PrintInvoice builds the document for one of the shop's invoices.
func (s *InvoiceService) PrintInvoice(ctx context.Context, shopID, invoiceID uint) (*InvoiceDocument, error) {
	detail, err := s.GetInvoice(ctx, shopID, invoiceID)
	if err != nil {
		return nil, err
	}
	return NewInvoiceDocument(detail), nil
}

func NewInvoiceDocument(d *InvoiceDetail) *InvoiceDocument {
	inv := d.Invoice
	doc := &InvoiceDocument{
		Title:         "Invoice " + inv.InvoiceNumber,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		Odometer:      inv.OdometerReading,
		Shop: DocumentParty{
			Name:    inv.ShopName,
			Address: inv.ShopAddress,
			Phone:   inv.ShopPhone,
			TaxID:   inv.TaxID,
			LogoURL: inv.LogoURL,
		},
		Customer: DocumentParty{
			Name:    inv.CustomerName,
			Address: inv.CustomerAddress,
			Email:   inv.CustomerEmail,
		},
		Vehicle: DocumentCar{
			VIN:          inv.VehicleVIN,
			Description:  vehicleDescription(inv.Year, inv.Make, inv.Model),
			LicensePlate: inv.LicensePlate,
		},
		WarrantyStatement: inv.WarrantyStatement,
		Note:              inv.Note,
	}
	if inv.ShopEmail != "" {
		email := inv.ShopEmail
		doc.Shop.Email = &email
	}
	if inv.CustomerPhone != "" {
		phone := inv.CustomerPhone
		doc.Customer.Phone = &phone
	}

	labor, parts := decimal.Zero, decimal.Zero
	doc.Lines = make([]DocumentLine, 0, len(d.Items))
	for _, it := range d.Items {
		line := DocumentLine{
			Description: it.Description,
			Type:        string(it.Type),
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Total:       it.TotalPrice.StringFixed(2),
		}
		if it.Condition != nil {
			line.Condition = *it.Condition
		}
		if it.Type == models.ItemTypeLabor {
			labor = labor.Add(it.TotalPrice)
		} else {
			parts = parts.Add(it.TotalPrice)
		}
		doc.Lines = append(doc.Lines, line)
	}

	doc.Totals = DocumentTotals{
		Labor:    labor.StringFixed(2),
		Parts:    parts.StringFixed(2),
		Subtotal: inv.SubtotalAmount.StringFixed(2),
		HST:      inv.HSTAmount.StringFixed(2),
		PST:      inv.PSTAmount.StringFixed(2),
		Tax:      inv.TaxAmount.StringFixed(2),
		Total:    inv.TotalAmount.StringFixed(2),
	}
	return doc
}

func vehicleDescription(year *int, mk, model *string) string {
	desc := ""
	if year != nil {
		desc = strconv.Itoa(*year)
	}
	for _, part := range []*string{mk, model} {
		if part == nil || *part == "" {
			continue
		}
		if desc != "" {
			desc += " "
		}
		desc += *part
	}
	return desc
}
