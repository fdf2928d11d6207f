// models/reminder_log.go
package models

import (
	"time"
)

const (
	ReminderStatusSent   = "sent"
	ReminderStatusFailed = "failed"
)

// ReminderLog records one payment reminder attempt for an invoice.
type ReminderLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ShopID       uint      `gorm:"not null;index" json:"shop_id"`
	InvoiceID    uint      `gorm:"not null;index" json:"invoice_id"`
	CustomerID   uint      `gorm:"not null;index" json:"customer_id"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // sms, log
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	SentAt       time.Time `gorm:"not null;index" json:"sent_at"`
}
