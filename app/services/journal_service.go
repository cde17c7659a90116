package services

import (
	"encoding/json"
	"fmt"
	"time"

	"DataPos/app/models"

	"gorm.io/gorm"
)

// JournalService keeps the local copy of committed sales, print jobs
// and drawer events, so the documents list and reprints work without a
// round trip to the back office.
type JournalService struct {
	db *gorm.DB
}

// NewJournalService creates a journal over the given database.
func NewJournalService(db *gorm.DB) *JournalService {
	return &JournalService{db: db}
}

// SetDB attaches the database once it exists, e.g. after the setup
// wizard finishes. A nil db keeps the journal disabled.
func (s *JournalService) SetDB(db *gorm.DB) {
	s.db = db
}

// RecordSale journals a committed sale.
func (s *JournalService) RecordSale(sale *models.Sale) error {
	if s.db == nil {
		return fmt.Errorf("journal not initialized")
	}

	data, err := json.Marshal(sale)
	if err != nil {
		return fmt.Errorf("failed to serialize sale: %w", err)
	}

	entry := models.JournalSale{
		ReceiptNumber: sale.ReceiptNumber,
		SaleData:      string(data),
		PaymentMethod: sale.PaymentMethod,
		GrandTotal:    sale.GrandTotal,
		CashierName:   sale.CashierName,
		CreatedAt:     sale.CreatedAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	return s.db.Create(&entry).Error
}

// RecentSales returns the newest journaled sales, newest first.
func (s *JournalService) RecentSales(limit int) ([]models.Sale, error) {
	if s.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	var entries []models.JournalSale
	err := s.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	return decodeSales(entries)
}

// TodaySales returns the sales journaled since local midnight.
func (s *JournalService) TodaySales() ([]models.Sale, error) {
	if s.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var entries []models.JournalSale
	err := s.db.Where("created_at >= ?", midnight).Order("created_at DESC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	return decodeSales(entries)
}

// FindSale looks up a journaled sale by receipt number.
func (s *JournalService) FindSale(receiptNumber string) (*models.Sale, error) {
	if s.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}

	var entry models.JournalSale
	err := s.db.Where("receipt_number = ?", receiptNumber).First(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("receipt %s not found in journal: %w", receiptNumber, err)
	}

	var sale models.Sale
	if err := json.Unmarshal([]byte(entry.SaleData), &sale); err != nil {
		return nil, fmt.Errorf("corrupt journal entry for %s: %w", receiptNumber, err)
	}
	return &sale, nil
}

// RecordPrintJob logs one print dispatch attempt.
func (s *JournalService) RecordPrintJob(receiptNumber, format, backend string, success bool, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("journal not initialized")
	}

	job := models.PrintJob{
		ReceiptNumber: receiptNumber,
		Format:        format,
		Backend:       backend,
		Success:       success,
		Error:         errMsg,
		CreatedAt:     time.Now(),
	}
	return s.db.Create(&job).Error
}

// FailedPrintJobs lists recent failed prints for manual reprinting.
func (s *JournalService) FailedPrintJobs(limit int) ([]models.PrintJob, error) {
	if s.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	var jobs []models.PrintJob
	err := s.db.Where("success = ?", false).Order("created_at DESC").Limit(limit).Find(&jobs).Error
	return jobs, err
}

// RecordDrawerEvent appends to the drawer audit trail. Errors are
// swallowed; a missing audit row must never block the till.
func (s *JournalService) RecordDrawerEvent(sessionID uint, kind string, amount, balance float64, reason string) {
	if s.db == nil {
		return
	}

	event := models.DrawerEvent{
		SessionID: sessionID,
		Kind:      kind,
		Amount:    amount,
		Balance:   balance,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	s.db.Create(&event)
}

// DrawerEvents lists the audit trail of one session, oldest first.
func (s *JournalService) DrawerEvents(sessionID uint) ([]models.DrawerEvent, error) {
	if s.db == nil {
		return nil, fmt.Errorf("journal not initialized")
	}

	var events []models.DrawerEvent
	err := s.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&events).Error
	return events, err
}

// ClearOldEntries removes journal rows older than the retention window.
func (s *JournalService) ClearOldEntries(daysToKeep int) error {
	if s.db == nil {
		return fmt.Errorf("journal not initialized")
	}

	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	if err := s.db.Where("created_at < ?", cutoff).Delete(&models.JournalSale{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("created_at < ?", cutoff).Delete(&models.PrintJob{}).Error; err != nil {
		return err
	}
	return s.db.Where("created_at < ?", cutoff).Delete(&models.DrawerEvent{}).Error
}

func decodeSales(entries []models.JournalSale) ([]models.Sale, error) {
	sales := make([]models.Sale, 0, len(entries))
	for _, entry := range entries {
		var sale models.Sale
		if err := json.Unmarshal([]byte(entry.SaleData), &sale); err != nil {
			// Skip corrupt rows rather than losing the whole list
			continue
		}
		sales = append(sales, sale)
	}
	return sales, nil
}
