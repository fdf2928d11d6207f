package models

import (
	"time"
)

// Shop is the tenant root. NextInvoiceNo is only ever touched by the invoice
// sequencer while it holds the row lock.
type Shop struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Name          string  `gorm:"type:varchar(200);not null" json:"shop_name"`
	Address       *string `gorm:"type:text" json:"shop_address,omitempty"`
	Phone         *string `gorm:"type:varchar(50)" json:"shop_phone,omitempty"`
	Email         string  `gorm:"type:varchar(200);uniqueIndex;not null" json:"shop_email"`
	PasswordHash  string  `gorm:"not null" json:"-"`
	NextInvoiceNo int64   `gorm:"not null;default:1" json:"-"`
	TaxID         *string `gorm:"type:varchar(50)" json:"tax_id,omitempty"`
	LogoURL       *string `gorm:"type:text" json:"logo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
