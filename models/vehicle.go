package models

import (
	"time"
)

// Vehicle belongs to a customer of the same shop.
type Vehicle struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	ShopID       uint    `gorm:"not null;index;uniqueIndex:idx_vehicle_shop_vin,priority:1" json:"shop_id"`
	CustomerID   uint    `gorm:"not null;index" json:"customer_id"`
	VIN          string  `gorm:"column:vin;type:varchar(32);not null;uniqueIndex:idx_vehicle_shop_vin,priority:2" json:"vin"`
	Make         *string `gorm:"type:varchar(100)" json:"make,omitempty"`
	Model        *string `gorm:"type:varchar(100)" json:"model,omitempty"`
	Year         *int    `json:"year,omitempty"`
	LicensePlate *string `gorm:"type:varchar(20)" json:"license_plate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
