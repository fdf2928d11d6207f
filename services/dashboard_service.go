package services

import (
	"context"
	"time"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	reminderMinDaysOpen = 7
	reminderListLimit   = 20
)

// DashboardService is a read-only view over the shop's invoices.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db, now: time.Now}
}

type DashboardQuery struct {
	Month     int
	Year      int
	WeekStart *time.Time
}

type DailySales struct {
	Day   utils.Day       `json:"day"`
	Total decimal.Decimal `json:"total"`
}

type ReminderEntry struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   utils.Day       `json:"invoice_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DaysOpen      int             `json:"days_open"`
	CustomerName  string          `json:"customer_name"`
	VehicleVIN    string          `json:"vehicle_vin"`
}

type Dashboard struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	WeekStart   utils.Day       `json:"weekStart"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	TotalUnpaid decimal.Decimal `json:"totalUnpaid"`
	DailySales  []DailySales    `json:"dailySales"`
	Reminders   []ReminderEntry `json:"reminders"`
}

// GetDashboard aggregates paid sales for the month, the open balance, paid
// sales per day of the week starting at WeekStart and the approved invoices
// that have been waiting for payment for a week or more.
func (s *DashboardService) GetDashboard(ctx context.Context, shopID uint, q DashboardQuery) (*Dashboard, error) {
	today := utils.DateOnly(s.now())
	if q.Month < 1 || q.Month > 12 {
		q.Month = int(today.Month())
	}
	if q.Year <= 0 {
		q.Year = today.Year()
	}
	weekStart := today
	if q.WeekStart != nil {
		weekStart = utils.DateOnly(*q.WeekStart)
	}

	db := s.db.WithContext(ctx)
	monthStart := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)

	var totalSales decimal.Decimal
	err := db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("shop_id = ? AND status = ?", shopID, models.StatusPaid).
		Where("invoice_date >= ? AND invoice_date < ?", monthStart, monthStart.AddDate(0, 1, 0)).
		Row().Scan(&totalSales)
	if err != nil {
		return nil, Internal("dashboard total sales", err)
	}

	var totalUnpaid decimal.Decimal
	err = db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("shop_id = ? AND status IN ?", shopID, []models.InvoiceStatus{models.StatusApproved, models.StatusOverdue}).
		Row().Scan(&totalUnpaid)
	if err != nil {
		return nil, Internal("dashboard total unpaid", err)
	}

	daily, err := s.dailySales(db, shopID, weekStart)
	if err != nil {
		return nil, err
	}
	reminders, err := s.reminders(db, shopID, today)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Month:       q.Month,
		Year:        q.Year,
		WeekStart:   utils.Day(weekStart),
		TotalSales:  totalSales,
		TotalUnpaid: totalUnpaid,
		DailySales:  daily,
		Reminders:   reminders,
	}, nil
}

// dailySales returns one entry per day of the week, zero on days without
// paid invoices.
func (s *DashboardService) dailySales(db *gorm.DB, shopID uint, weekStart time.Time) ([]DailySales, error) {
	var paid []models.Invoice
	err := db.Select("id", "invoice_date", "total_amount").
		Where("shop_id = ? AND status = ?", shopID, models.StatusPaid).
		Where("invoice_date >= ? AND invoice_date < ?", weekStart, weekStart.AddDate(0, 0, 7)).
		Find(&paid).Error
	if err != nil {
		return nil, Internal("dashboard daily sales", err)
	}

	days := make([]DailySales, 7)
	for i := range days {
		days[i] = DailySales{Day: utils.Day(weekStart.AddDate(0, 0, i)), Total: decimal.Zero}
	}
	for _, inv := range paid {
		idx := utils.DaysBetween(weekStart, utils.DateOnly(inv.InvoiceDate))
		if idx >= 0 && idx < len(days) {
			days[idx].Total = days[idx].Total.Add(inv.TotalAmount)
		}
	}
	return days, nil
}

type reminderRow struct {
	ID            uint
	InvoiceNumber string
	InvoiceDate   time.Time
	TotalAmount   decimal.Decimal
	CustomerName  string
	VehicleVIN    string `gorm:"column:vehicle_vin"`
}

func (s *DashboardService) reminders(db *gorm.DB, shopID uint, today time.Time) ([]ReminderEntry, error) {
	var rows []reminderRow
	err := db.Table("invoices").
		Select(`invoices.id, invoices.invoice_number, invoices.invoice_date, invoices.total_amount,
			customers.name AS customer_name, vehicles.vin AS vehicle_vin`).
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Joins("JOIN vehicles ON vehicles.id = invoices.vehicle_id").
		Where("invoices.shop_id = ? AND invoices.status = ?", shopID, models.StatusApproved).
		Where("invoices.invoice_date <= ?", today.AddDate(0, 0, -reminderMinDaysOpen)).
		Order("invoices.invoice_date ASC, invoices.id ASC").
		Limit(reminderListLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, Internal("dashboard reminders", err)
	}

	entries := make([]ReminderEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, ReminderEntry{
			ID:            r.ID,
			InvoiceNumber: r.InvoiceNumber,
			InvoiceDate:   utils.Day(r.InvoiceDate),
			TotalAmount:   r.TotalAmount,
			DaysOpen:      utils.DaysBetween(utils.DateOnly(r.InvoiceDate), today),
			CustomerName:  r.CustomerName,
			VehicleVIN:    r.VehicleVIN,
		})
	}
	return entries, nil
}
