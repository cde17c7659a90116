package services

import (
	"fmt"
	"sync"
	"time"

	"DataPos/app/models"
)

// CashierAPI is the back-office surface for drawer sessions.
type CashierAPI interface {
	OpenDrawer(openingBalance float64, openedBy string) (*models.DrawerSession, error)
	CloseDrawer(sessionID uint, actualBalance float64) (*models.DrawerCloseResult, error)
	CurrentDrawer() (*models.DrawerSession, error)
	AddDrawerTransaction(sessionID uint, kind string, amount float64, reason string) (*models.DrawerTransaction, error)
}

// DrawerService runs the cash drawer state machine: closed, open once,
// closed for good. Cash settlements add the tendered amount to the
// running balances; bank settlements never touch the till.
type DrawerService struct {
	mu      sync.Mutex
	api     CashierAPI
	journal *JournalService
	session *models.DrawerSession
}

// NewDrawerService creates a drawer service. journal may be nil.
func NewDrawerService(api CashierAPI, journal *JournalService) *DrawerService {
	return &DrawerService{api: api, journal: journal}
}

// Open starts a session with the counted opening float.
func (s *DrawerService) Open(openingBalance float64, openedBy string) (*models.DrawerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return nil, stateErr(CodeDrawerAlreadyOpen, "the cash drawer is already open")
	}
	if openingBalance < 0 {
		return nil, fmt.Errorf("opening balance cannot be negative")
	}

	session, err := s.api.OpenDrawer(openingBalance, openedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to open drawer: %w", err)
	}

	// Balances start at the opening float regardless of what the
	// service echoed back.
	session.OpeningBalance = openingBalance
	session.CurrentBalance = openingBalance
	session.ExpectedBalance = openingBalance
	session.Status = models.DrawerOpen
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now()
	}

	s.session = session
	s.journalEvent("open", openingBalance, "")
	return s.snapshotLocked(), nil
}

// Resume picks up a session left open on the back office, e.g. after a
// terminal restart mid-shift.
func (s *DrawerService) Resume() (*models.DrawerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return s.snapshotLocked(), nil
	}

	session, err := s.api.CurrentDrawer()
	if err != nil {
		return nil, fmt.Errorf("failed to resume drawer: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	s.session = session
	return s.snapshotLocked(), nil
}

// RecordCashSale adds a cash settlement to the running balances. The
// full tendered amount goes into the drawer; change paid back out is
// reconciled at close.
func (s *DrawerService) RecordCashSale(tendered float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return stateErr(CodeDrawerNotOpen, "the cash drawer is not open")
	}

	s.session.CurrentBalance += tendered
	s.session.ExpectedBalance += tendered
	s.session.CashSalesTotal += tendered
	s.session.SaleCount++
	s.journalEvent("sale", tendered, "")
	return nil
}

// RecordTransaction records a manual cash movement (payout, top-up).
func (s *DrawerService) RecordTransaction(kind string, amount float64, reason string) (*models.DrawerTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, stateErr(CodeDrawerNotOpen, "the cash drawer is not open")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("transaction amount must be positive")
	}
	if kind != models.DrawerCashIn && kind != models.DrawerCashOut {
		return nil, fmt.Errorf("unknown transaction kind %q", kind)
	}

	tx, err := s.api.AddDrawerTransaction(s.session.ID, kind, amount, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to record drawer transaction: %w", err)
	}

	if kind == models.DrawerCashIn {
		s.session.CurrentBalance += amount
		s.session.ExpectedBalance += amount
	} else {
		s.session.CurrentBalance -= amount
		s.session.ExpectedBalance -= amount
	}
	s.journalEvent(kind, amount, reason)
	return tx, nil
}

// Close ends the session with the counted actual balance. Discrepancy
// is actual minus expected. The instance is unusable afterwards; any
// further settlement sees a closed drawer.
func (s *DrawerService) Close(actualBalance float64) (*models.DrawerCloseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, stateErr(CodeDrawerNotOpen, "the cash drawer is not open")
	}

	remote, err := s.api.CloseDrawer(s.session.ID, actualBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to close drawer: %w", err)
	}

	result := &models.DrawerCloseResult{
		SessionID:       s.session.ID,
		ExpectedBalance: s.session.ExpectedBalance,
		ActualBalance:   actualBalance,
		Discrepancy:     actualBalance - s.session.ExpectedBalance,
		ClosedAt:        time.Now(),
	}
	if remote != nil && !remote.ClosedAt.IsZero() {
		result.ClosedAt = remote.ClosedAt
	}

	s.journalEvent("close", actualBalance, fmt.Sprintf("discrepancy %.2f", result.Discrepancy))
	s.session = nil
	return result, nil
}

// IsOpen reports whether a session is active.
func (s *DrawerService) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Current returns a copy of the active session, or nil.
func (s *DrawerService) Current() *models.DrawerSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *DrawerService) snapshotLocked() *models.DrawerSession {
	if s.session == nil {
		return nil
	}
	snapshot := *s.session
	return &snapshot
}

// journalEvent writes the local audit trail; failures never block the till.
func (s *DrawerService) journalEvent(kind string, amount float64, reason string) {
	if s.journal == nil || s.session == nil {
		return
	}
	s.journal.RecordDrawerEvent(s.session.ID, kind, amount, s.session.CurrentBalance, reason)
}
