// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"garageflow-backend/config"
	"garageflow-backend/models"
	"garageflow-backend/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig(zap.NewNop(), "silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateShop inserts a shop with its counter at 1.
func CreateShop(t *testing.T, db *gorm.DB, email string) *models.Shop {
	t.Helper()

	hash, err := utils.HashPassword("secret-password")
	require.NoError(t, err)

	shop := &models.Shop{
		Name:          "Shop " + email,
		Email:         email,
		PasswordHash:  hash,
		NextInvoiceNo: 1,
	}
	require.NoError(t, db.Create(shop).Error)
	return shop
}

func CreateCustomer(t *testing.T, db *gorm.DB, shopID uint, name, phone string) *models.Customer {
	t.Helper()

	customer := &models.Customer{ShopID: shopID, Name: name, Phone: phone}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func CreateVehicle(t *testing.T, db *gorm.DB, shopID, customerID uint, vin string) *models.Vehicle {
	t.Helper()

	vehicle := &models.Vehicle{ShopID: shopID, CustomerID: customerID, VIN: vin}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

// InvoiceOptions overrides the defaults of CreateInvoice.
type InvoiceOptions struct {
	Number  string
	Date    time.Time
	DueDate *time.Time
	Status  models.InvoiceStatus
	Total   decimal.Decimal
}

// CreateInvoice writes an invoice row directly, bypassing the sequencer.
func CreateInvoice(t *testing.T, db *gorm.DB, shopID, customerID, vehicleID uint, opts InvoiceOptions) *models.Invoice {
	t.Helper()

	if opts.Status == "" {
		opts.Status = models.StatusDraft
	}
	if opts.Date.IsZero() {
		opts.Date = utils.DateOnly(time.Now())
	}

	invoice := &models.Invoice{
		ShopID:            shopID,
		InvoiceNumber:     opts.Number,
		CustomerID:        customerID,
		VehicleID:         vehicleID,
		InvoiceDate:       opts.Date,
		DueDate:           opts.DueDate,
		SubtotalAmount:    opts.Total,
		TaxAmount:         decimal.Zero,
		TotalAmount:       opts.Total,
		Status:            opts.Status,
		WarrantyStatement: models.DefaultWarrantyStatement,
	}
	require.NoError(t, db.Omit("Customer", "Vehicle", "Shop", "Items").Create(invoice).Error)
	return invoice
}

// ShopCounter reads shops.next_invoice_no.
func ShopCounter(t *testing.T, db *gorm.DB, shopID uint) int64 {
	t.Helper()

	var shop models.Shop
	require.NoError(t, db.Select("next_invoice_no").Where("id = ?", shopID).Take(&shop).Error)
	return shop.NextInvoiceNo
}
