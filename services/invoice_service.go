package services

import (
	"context"
	"errors"
	"time"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceService creates invoices and moves them between statuses.
type InvoiceService struct {
	db        *gorm.DB
	registry  *PartyRegistry
	sequencer *Sequencer
	policy    StatusPolicy
	logger    *zap.Logger
}

func NewInvoiceService(db *gorm.DB, registry *PartyRegistry, sequencer *Sequencer, policy StatusPolicy, logger *zap.Logger) *InvoiceService {
	if policy == nil {
		policy = PermissivePolicy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		db:        db,
		registry:  registry,
		sequencer: sequencer,
		policy:    policy,
		logger:    logger,
	}
}

// Policy returns the status policy the service enforces.
func (s *InvoiceService) Policy() StatusPolicy {
	return s.policy
}

type CreateInvoiceResult struct {
	InvoiceID     uint   `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// CreateInvoice validates req, then reserves a number and writes the header
// and its items in one transaction. Any failure after the counter lock rolls
// everything back, the counter increment included.
func (s *InvoiceService) CreateInvoice(ctx context.Context, shopID uint, req CreateInvoiceRequest) (*CreateInvoiceResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	amounts, err := req.amounts()
	if err != nil {
		return nil, err
	}

	var result CreateInvoiceResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, _, err := s.sequencer.ReserveNextNumber(ctx, tx, shopID)
		if err != nil {
			return err
		}

		ok, err := s.registry.CustomerExists(ctx, tx, shopID, req.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			return InvalidRequest("Customer not found")
		}

		ok, err = s.registry.VehicleBelongsTo(ctx, tx, shopID, req.CustomerID, req.VehicleID)
		if err != nil {
			return err
		}
		if !ok {
			return InvalidRequest("Vehicle not found for this customer")
		}

		invoice := req.toModel(shopID, number, amounts)
		if err := tx.Omit(clause.Associations).Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("Invoice number already used")
			}
			return Internal("insert invoice", err)
		}

		items := make([]models.InvoiceItem, 0, len(req.Items))
		for i := range req.Items {
			items = append(items, req.Items[i].toModel(invoice.ID))
		}
		if err := tx.Create(&items).Error; err != nil {
			return Internal("insert invoice items", err)
		}

		result = CreateInvoiceResult{InvoiceID: invoice.ID, InvoiceNumber: number}
		return nil
	})
	if err != nil {
		return nil, asServiceError("create invoice", err)
	}

	s.logger.Info("invoice created",
		zap.Uint("shop_id", shopID),
		zap.Uint("invoice_id", result.InvoiceID),
		zap.String("invoice_number", result.InvoiceNumber),
		zap.Int("items", len(req.Items)),
	)
	return &result, nil
}

// UpdateStatus changes the status of one of the shop's invoices. An invoice
// of another shop is reported exactly like a missing one.
func (s *InvoiceService) UpdateStatus(ctx context.Context, shopID, invoiceID uint, status models.InvoiceStatus) error {
	if !status.IsValid() {
		return InvalidRequest("Invalid status value")
	}

	var from models.InvoiceStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "status").
			Where("id = ? AND shop_id = ?", invoiceID, shopID).
			Take(&invoice).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("Invoice not found")
			}
			return Internal("load invoice status", err)
		}

		from = invoice.Status
		if !s.policy.Allows(from, status) {
			return InvalidRequest("Status change from " + string(from) + " to " + string(status) + " is not allowed")
		}

		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND shop_id = ?", invoiceID, shopID).
			Update("status", status)
		if res.Error != nil {
			return Internal("update invoice status", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFound("Invoice not found")
		}
		return nil
	})
	if err != nil {
		return asServiceError("update invoice status", err)
	}

	s.logger.Info("invoice status updated",
		zap.Uint("shop_id", shopID),
		zap.Uint("invoice_id", invoiceID),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)
	return nil
}

// InvoiceView is an invoice header with the customer, vehicle and shop
// fields needed to present it.
type InvoiceView struct {
	models.Invoice
	InvoiceDate utils.Day  `json:"invoice_date"`
	DueDate     *utils.Day `json:"due_date,omitempty"`

	CustomerName    string  `json:"customer_name"`
	CustomerPhone   string  `json:"customer_phone"`
	CustomerEmail   *string `json:"customer_email,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`

	VehicleVIN   string  `json:"vehicle_vin"`
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Year         *int    `json:"year,omitempty"`
	LicensePlate *string `json:"license_plate,omitempty"`

	ShopName    string  `json:"shop_name"`
	ShopAddress *string `json:"shop_address,omitempty"`
	ShopPhone   *string `json:"shop_phone,omitempty"`
	ShopEmail   string  `json:"shop_email"`
	TaxID       *string `json:"tax_id,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
}

type InvoiceDetail struct {
	Invoice InvoiceView          `json:"invoice"`
	Items   []models.InvoiceItem `json:"items"`
}

// GetInvoice loads one invoice of the shop with its items in insertion order.
func (s *InvoiceService) GetInvoice(ctx context.Context, shopID, invoiceID uint) (*InvoiceDetail, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Shop").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ? AND shop_id = ?", invoiceID, shopID).
		Take(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Invoice not found")
		}
		return nil, Internal("get invoice", err)
	}

	items := invoice.Items
	if items == nil {
		items = []models.InvoiceItem{}
	}
	return &InvoiceDetail{Invoice: newInvoiceView(invoice), Items: items}, nil
}

func newInvoiceView(inv models.Invoice) InvoiceView {
	view := InvoiceView{
		Invoice:     inv,
		InvoiceDate: utils.Day(inv.InvoiceDate),
	}
	if inv.DueDate != nil {
		due := utils.Day(*inv.DueDate)
		view.DueDate = &due
	}
	if c := inv.Customer; c != nil {
		view.CustomerName = c.Name
		view.CustomerPhone = c.Phone
		view.CustomerEmail = c.Email
		view.CustomerAddress = c.Address
	}
	if v := inv.Vehicle; v != nil {
		view.VehicleVIN = v.VIN
		view.Make = v.Make
		view.Model = v.Model
		view.Year = v.Year
		view.LicensePlate = v.LicensePlate
	}
	if sh := inv.Shop; sh != nil {
		view.ShopName = sh.Name
		view.ShopAddress = sh.Address
		view.ShopPhone = sh.Phone
		view.ShopEmail = sh.Email
		view.TaxID = sh.TaxID
		view.LogoURL = sh.LogoURL
	}
	return view
}

// ListFilter narrows ListInvoices. Zero values mean "no filter"; all set
// filters must match.
type ListFilter struct {
	Status   models.InvoiceStatus
	Query    string
	DateFrom *time.Time
	DateTo   *time.Time
}

type InvoiceSummary struct {
	ID             uint                 `json:"id"`
	InvoiceNumber  string               `json:"invoice_number"`
	InvoiceDate    utils.Day            `json:"invoice_date"`
	SubtotalAmount decimal.Decimal      `json:"subtotal_amount"`
	TaxAmount      decimal.Decimal      `json:"tax_amount"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	Status         models.InvoiceStatus `json:"status"`
	CustomerName   string               `json:"customer_name"`
	VehicleVIN     string               `json:"vehicle_vin"`
}

type invoiceSummaryRow struct {
	ID             uint
	InvoiceNumber  string
	InvoiceDate    time.Time
	SubtotalAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Status         models.InvoiceStatus
	CustomerName   string
	VehicleVIN     string `gorm:"column:vehicle_vin"`
}

// ListInvoices returns the shop's invoices, newest invoice date first and,
// within a day, newest created first.
func (s *InvoiceService) ListInvoices(ctx context.Context, shopID uint, f ListFilter) ([]InvoiceSummary, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, InvalidRequest("Invalid status value")
	}

	q := s.db.WithContext(ctx).
		Table("invoices").
		Select(`invoices.id, invoices.invoice_number, invoices.invoice_date,
			invoices.subtotal_amount, invoices.tax_amount, invoices.total_amount, invoices.status,
			customers.name AS customer_name, vehicles.vin AS vehicle_vin`).
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Joins("JOIN vehicles ON vehicles.id = invoices.vehicle_id").
		Where("invoices.shop_id = ?", shopID)

	if f.Status != "" {
		q = q.Where("invoices.status = ?", f.Status)
	}
	if f.DateFrom != nil {
		q = q.Where("invoices.invoice_date >= ?", utils.DateOnly(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("invoices.invoice_date <= ?", utils.DateOnly(*f.DateTo))
	}
	if f.Query != "" {
		pattern := likePattern(f.Query)
		q = q.Where(`(LOWER(customers.name) LIKE ? ESCAPE '\' OR LOWER(vehicles.vin) LIKE ? ESCAPE '\' OR LOWER(invoices.invoice_number) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}

	var rows []invoiceSummaryRow
	if err := q.Order("invoices.invoice_date DESC, invoices.id DESC").Scan(&rows).Error; err != nil {
		return nil, Internal("list invoices", err)
	}

	summaries := make([]InvoiceSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, InvoiceSummary{
			ID:             r.ID,
			InvoiceNumber:  r.InvoiceNumber,
			InvoiceDate:    utils.Day(r.InvoiceDate),
			SubtotalAmount: r.SubtotalAmount,
			TaxAmount:      r.TaxAmount,
			TotalAmount:    r.TotalAmount,
			Status:         r.Status,
			CustomerName:   r.CustomerName,
			VehicleVIN:     r.VehicleVIN,
		})
	}
	return summaries, nil
}
