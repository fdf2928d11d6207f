// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderService runs the daily overdue sweep and sends payment reminders.
// It never takes part in invoice creation.
type ReminderService struct {
	db          *gorm.DB
	notifier    Notifier
	policy      StatusPolicy
	minDaysOpen int
	logger      *zap.Logger
	now         func() time.Time

	cron *cron.Cron
}

func NewReminderService(db *gorm.DB, notifier Notifier, policy StatusPolicy, minDaysOpen int, logger *zap.Logger) *ReminderService {
	if policy == nil {
		policy = PermissivePolicy{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if minDaysOpen <= 0 {
		minDaysOpen = reminderMinDaysOpen
	}
	return &ReminderService{
		db:          db,
		notifier:    notifier,
		policy:      policy,
		minDaysOpen: minDaysOpen,
		logger:      logger,
		now:         time.Now,
	}
}

// StartScheduler registers RunOnce on the cron schedule and starts it.
func (s *ReminderService) StartScheduler(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("reminder run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("reminder scheduler started", zap.String("schedule", schedule))
	return nil
}

// StopScheduler stops the cron and waits for a running job to finish.
func (s *ReminderService) StopScheduler() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("reminder scheduler stopped")
}

func (s *ReminderService) RunOnce(ctx context.Context) error {
	s.logger.Info("starting daily reminder processing")

	moved, err := s.MarkOverdue(ctx)
	if err != nil {
		return err
	}
	sent, failed, err := s.SendReminders(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("daily reminder processing completed",
		zap.Int64("marked_overdue", moved),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)
	return nil
}

// MarkOverdue moves Approved invoices whose due date has passed to Overdue.
// Nothing changes when the status policy forbids Approved -> Overdue.
func (s *ReminderService) MarkOverdue(ctx context.Context) (int64, error) {
	if !s.policy.Allows(models.StatusApproved, models.StatusOverdue) {
		return 0, nil
	}

	today := utils.DateOnly(s.now())
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.StatusApproved, today).
		Update("status", models.StatusOverdue)
	if res.Error != nil {
		return 0, Internal("mark overdue invoices", res.Error)
	}
	return res.RowsAffected, nil
}

type reminderCandidate struct {
	ID            uint
	ShopID        uint
	CustomerID    uint
	InvoiceNumber string
	InvoiceDate   time.Time
	TotalAmount   decimal.Decimal
	Status        models.InvoiceStatus
	CustomerName  string
	CustomerPhone string
	ShopName      string
}

// SendReminders notifies the customer of every Overdue invoice and of every
// Approved invoice open for at least minDaysOpen days. An invoice gets at
// most one reminder per day. Every attempt is recorded as a ReminderLog.
func (s *ReminderService) SendReminders(ctx context.Context) (sent, failed int, err error) {
	now := s.now()
	today := utils.DateOnly(now)

	var candidates []reminderCandidate
	err = s.db.WithContext(ctx).Table("invoices").
		Select(`invoices.id, invoices.shop_id, invoices.customer_id, invoices.invoice_number,
			invoices.invoice_date, invoices.total_amount, invoices.status,
			customers.name AS customer_name, customers.phone AS customer_phone, shops.name AS shop_name`).
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Joins("JOIN shops ON shops.id = invoices.shop_id").
		Where("(invoices.status = ? OR (invoices.status = ? AND invoices.invoice_date <= ?))",
			models.StatusOverdue, models.StatusApproved, today.AddDate(0, 0, -s.minDaysOpen)).
		Where("NOT EXISTS (SELECT 1 FROM reminder_logs WHERE reminder_logs.invoice_id = invoices.id AND reminder_logs.sent_at >= ?)", today).
		Order("invoices.shop_id ASC, invoices.invoice_date ASC, invoices.id ASC").
		Scan(&candidates).Error
	if err != nil {
		return 0, 0, Internal("load reminder candidates", err)
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}

		message := reminderMessage(c, utils.DaysBetween(utils.DateOnly(c.InvoiceDate), today))
		entry := models.ReminderLog{
			ShopID:     c.ShopID,
			InvoiceID:  c.ID,
			CustomerID: c.CustomerID,
			Channel:    s.notifier.Channel(),
			Message:    message,
			Status:     models.ReminderStatusSent,
			SentAt:     now,
		}

		if err := s.notifier.Send(ctx, c.CustomerPhone, message); err != nil {
			s.logger.Warn("failed to send reminder",
				zap.Uint("invoice_id", c.ID),
				zap.String("invoice_number", c.InvoiceNumber),
				zap.Error(err),
			)
			entry.Status = models.ReminderStatusFailed
			entry.ErrorMessage = err.Error()
			failed++
		} else {
			sent++
		}

		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			s.logger.Error("failed to log reminder", zap.Uint("invoice_id", c.ID), zap.Error(err))
		}
	}
	return sent, failed, nil
}

func reminderMessage(c reminderCandidate, daysOpen int) string {
	if c.Status == models.StatusOverdue {
		return fmt.Sprintf("Hi %s, invoice %s from %s for $%s is overdue. Please contact us to arrange payment.",
			c.CustomerName, c.InvoiceNumber, c.ShopName, c.TotalAmount.StringFixed(2))
	}
	return fmt.Sprintf("Hi %s, invoice %s from %s for $%s has been open for %d days. Please contact us to arrange payment.",
		c.CustomerName, c.InvoiceNumber, c.ShopName, c.TotalAmount.StringFixed(2), daysOpen)
}
