package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusDraft    InvoiceStatus = "Draft"
	StatusApproved InvoiceStatus = "Approved"
	StatusPaid     InvoiceStatus = "Paid"
	StatusOverdue  InvoiceStatus = "Overdue"
)

// InvoiceStatuses lists every status in display order.
var InvoiceStatuses = []InvoiceStatus{StatusDraft, StatusApproved, StatusPaid, StatusOverdue}

// IsValid reports whether s is one of the four known statuses.
func (s InvoiceStatus) IsValid() bool {
	for _, known := range InvoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ItemType string

const (
	ItemTypeLabor ItemType = "Labor"
	ItemTypePart  ItemType = "Part"
)

func (t ItemType) IsValid() bool {
	return t == ItemTypeLabor || t == ItemTypePart
}

// DefaultWarrantyStatement is printed when an invoice is created without one.
const DefaultWarrantyStatement = "90 days or 5,000 km"

type Invoice struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ShopID        uint   `gorm:"not null;index;uniqueIndex:idx_invoice_shop_number,priority:1" json:"shop_id"`
	InvoiceNumber string `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoice_shop_number,priority:2" json:"invoice_number"`
	CustomerID    uint   `gorm:"not null;index" json:"customer_id"`
	VehicleID     uint   `gorm:"not null;index" json:"vehicle_id"`

	InvoiceDate     time.Time  `gorm:"type:date;not null;index" json:"invoice_date"`
	DueDate         *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	OdometerReading *int64     `json:"odometer_reading,omitempty"`

	SubtotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal_amount"`
	HSTAmount      decimal.Decimal `gorm:"column:hst_amount;type:decimal(12,2);not null;default:0" json:"hst_amount"`
	PSTAmount      decimal.Decimal `gorm:"column:pst_amount;type:decimal(12,2);not null;default:0" json:"pst_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	Status            InvoiceStatus `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`
	WarrantyStatement string        `gorm:"type:text;not null" json:"warranty_statement"`
	Note              *string       `gorm:"type:text" json:"note,omitempty"`

	Customer *Customer     `gorm:"foreignKey:CustomerID" json:"-"`
	Vehicle  *Vehicle      `gorm:"foreignKey:VehicleID" json:"-"`
	Shop     *Shop         `gorm:"foreignKey:ShopID" json:"-"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceItem rows are written once, together with their invoice.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Type        ItemType        `gorm:"type:varchar(10);not null" json:"type"`
	Condition   *string         `gorm:"column:condition;type:varchar(50)" json:"condition,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
}
