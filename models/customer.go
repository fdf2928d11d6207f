package models

import (
	"time"
)

type Customer struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	ShopID  uint    `gorm:"not null;index;uniqueIndex:idx_customer_shop_phone,priority:1" json:"shop_id"`
	Name    string  `gorm:"type:varchar(200);not null" json:"name"`
	Phone   string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_shop_phone,priority:2" json:"phone"`
	Email   *string `gorm:"type:varchar(200)" json:"email,omitempty"`
	Address *string `gorm:"type:text" json:"address,omitempty"`

	Vehicles []Vehicle `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
