package services

import (
	"context"
	"errors"
	"fmt"

	"garageflow-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceNumberPrefix = "INV-"

// FormatInvoiceNumber renders a shop counter value as INV-NNNNN. Values past
// 99999 keep all their digits.
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s%05d", invoiceNumberPrefix, seq)
}

// Sequencer hands out per-shop invoice numbers from shops.next_invoice_no.
type Sequencer struct{}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// ReserveNextNumber must be called with the transaction that will also write
// the invoice. It locks the shop row (SELECT ... FOR UPDATE), reads the
// counter and increments it. The lock is held until tx commits or rolls back,
// so a rollback also gives the number back.
func (s *Sequencer) ReserveNextNumber(ctx context.Context, tx *gorm.DB, shopID uint) (string, int64, error) {
	var shop models.Shop
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "next_invoice_no").
		Where("id = ?", shopID).
		Take(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, NotFound("Shop not found")
		}
		return "", 0, Internal("lock invoice counter", err)
	}

	seq := shop.NextInvoiceNo
	if err := tx.WithContext(ctx).
		Model(&models.Shop{}).
		Where("id = ?", shopID).
		UpdateColumn("next_invoice_no", gorm.Expr("next_invoice_no + 1")).Error; err != nil {
		return "", 0, Internal("increment invoice counter", err)
	}

	return FormatInvoiceNumber(seq), seq, nil
}
