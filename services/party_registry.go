package services

import (
	"context"
	"errors"
	"strings"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"gorm.io/gorm"
)

// PartyRegistry owns customers and vehicles, always scoped by shop.
type PartyRegistry struct {
	db *gorm.DB
}

func NewPartyRegistry(db *gorm.DB) *PartyRegistry {
	return &PartyRegistry{db: db}
}

// handle returns tx when the caller is inside a transaction, otherwise the
// registry's own connection.
func (r *PartyRegistry) handle(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// CustomerExists reports whether customerID is a customer of shopID.
func (r *PartyRegistry) CustomerExists(ctx context.Context, tx *gorm.DB, shopID, customerID uint) (bool, error) {
	var count int64
	err := r.handle(ctx, tx).Model(&models.Customer{}).
		Where("id = ? AND shop_id = ?", customerID, shopID).
		Count(&count).Error
	if err != nil {
		return false, Internal("check customer", err)
	}
	return count > 0, nil
}

// VehicleBelongsTo reports whether vehicleID belongs to customerID within shopID.
func (r *PartyRegistry) VehicleBelongsTo(ctx context.Context, tx *gorm.DB, shopID, customerID, vehicleID uint) (bool, error) {
	var count int64
	err := r.handle(ctx, tx).Model(&models.Vehicle{}).
		Where("id = ? AND customer_id = ? AND shop_id = ?", vehicleID, customerID, shopID).
		Count(&count).Error
	if err != nil {
		return false, Internal("check vehicle", err)
	}
	return count > 0, nil
}

type CreateCustomerRequest struct {
	Name    string
	Phone   string
	Email   *string
	Address *string
}

func (r *PartyRegistry) CreateCustomer(ctx context.Context, shopID uint, req CreateCustomerRequest) (*models.Customer, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, InvalidRequest("Customer name and phone required")
	}
	if !utils.ValidatePhone(phone) {
		return nil, InvalidRequest("Invalid phone number format")
	}

	// Check if phone already exists for this shop
	var existing models.Customer
	err := r.db.WithContext(ctx).Select("id").
		Where("shop_id = ? AND phone = ?", shopID, phone).
		Take(&existing).Error
	if err == nil {
		return nil, Conflict("Customer with this phone already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Internal("check customer phone", err)
	}

	customer := models.Customer{
		ShopID:  shopID,
		Name:    name,
		Phone:   phone,
		Email:   trimmedOrNil(req.Email),
		Address: trimmedOrNil(req.Address),
	}
	if err := r.db.WithContext(ctx).Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Customer with this phone already exists")
		}
		return nil, Internal("create customer", err)
	}
	return &customer, nil
}

// ListCustomers returns up to 50 customers whose name or phone contains query.
func (r *PartyRegistry) ListCustomers(ctx context.Context, shopID uint, query string) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if query = strings.TrimSpace(query); query != "" {
		pattern := likePattern(query)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	customers := []models.Customer{}
	if err := q.Order("name ASC").Limit(50).Find(&customers).Error; err != nil {
		return nil, Internal("list customers", err)
	}
	return customers, nil
}

func (r *PartyRegistry) GetCustomer(ctx context.Context, shopID, customerID uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", customerID, shopID).
		Take(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Customer not found")
		}
		return nil, Internal("get customer", err)
	}
	return &customer, nil
}

// ListCustomerVehicles returns the customer's vehicles, newest first.
func (r *PartyRegistry) ListCustomerVehicles(ctx context.Context, shopID, customerID uint) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND customer_id = ?", shopID, customerID).
		Order("id DESC").
		Find(&vehicles).Error
	if err != nil {
		return nil, Internal("list vehicles", err)
	}
	return vehicles, nil
}

type CreateVehicleRequest struct {
	CustomerID   uint
	VIN          string
	Make         *string
	Model        *string
	Year         *int
	LicensePlate *string
}

func (r *PartyRegistry) CreateVehicle(ctx context.Context, shopID uint, req CreateVehicleRequest) (*models.Vehicle, error) {
	vin := utils.NormalizeVIN(req.VIN)
	if req.CustomerID == 0 || vin == "" {
		return nil, InvalidRequest("customer_id and vin required")
	}

	exists, err := r.CustomerExists(ctx, nil, shopID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, InvalidRequest("Customer not found")
	}

	vehicle := models.Vehicle{
		ShopID:       shopID,
		CustomerID:   req.CustomerID,
		VIN:          vin,
		Make:         trimmedOrNil(req.Make),
		Model:        trimmedOrNil(req.Model),
		Year:         req.Year,
		LicensePlate: trimmedOrNil(req.LicensePlate),
	}
	if err := r.db.WithContext(ctx).Create(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Vehicle VIN already exists")
		}
		return nil, Internal("create vehicle", err)
	}
	return &vehicle, nil
}

// CustomerHistoryEntry is one past invoice of a customer.
type CustomerHistoryEntry struct {
	ID            uint      `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   utils.Day `json:"invoice_date"`
	TotalAmount   string    `json:"total_amount"`
	Status        string    `json:"status"`
	VehicleVIN    string    `json:"vehicle_vin"`
	Make          *string   `json:"make,omitempty"`
	Model         *string   `json:"model,omitempty"`
	Year          *int      `json:"year,omitempty"`
}

// CustomerHistory lists the customer's invoices, newest first.
func (r *PartyRegistry) CustomerHistory(ctx context.Context, shopID, customerID uint) ([]CustomerHistoryEntry, error) {
	exists, err := r.CustomerExists(ctx, nil, shopID, customerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NotFound("Customer not found")
	}

	var invoices []models.Invoice
	err = r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("shop_id = ? AND customer_id = ?", shopID, customerID).
		Order("invoice_date DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, Internal("customer history", err)
	}

	history := make([]CustomerHistoryEntry, 0, len(invoices))
	for _, inv := range invoices {
		entry := CustomerHistoryEntry{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   utils.Day(inv.InvoiceDate),
			TotalAmount:   inv.TotalAmount.StringFixed(2),
			Status:        string(inv.Status),
		}
		if inv.Vehicle != nil {
			entry.VehicleVIN = inv.Vehicle.VIN
			entry.Make = inv.Vehicle.Make
			entry.Model = inv.Vehicle.Model
			entry.Year = inv.Vehicle.Year
		}
		history = append(history, entry)
	}
	return history, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// likeEscaper neutralizes LIKE wildcards; queries pair it with ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for
// LOWER(col) LIKE ? ESCAPE '\' that matches s literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
