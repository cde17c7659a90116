package services

import (
	"fmt"
	"sync"

	"DataPos/app/models"

	"golang.org/x/crypto/bcrypt"
)

// UserAPI fetches operator profiles from the back office.
type UserAPI interface {
	GetUser(username string) (*models.User, error)
}

// SessionService tracks the signed-on operator and temporary privilege
// elevation. A cashier may not change prices or the VAT override; a
// manager PIN elevates the session until the next sign-off.
type SessionService struct {
	mu       sync.Mutex
	api      UserAPI
	user     *models.User
	elevated bool
}

// NewSessionService creates a session service. api may be nil when the
// terminal runs without operator profiles.
func NewSessionService(api UserAPI) *SessionService {
	return &SessionService{api: api}
}

// SignOn sets the current operator and drops any elevation.
func (s *SessionService) SignOn(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.elevated = false
}

// SignOff clears the operator.
func (s *SessionService) SignOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.elevated = false
}

// Current returns the signed-on operator, or nil.
func (s *SessionService) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// CashierName returns the operator display name for receipts.
func (s *SessionService) CashierName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	if s.user.FullName != "" {
		return s.user.FullName
	}
	return s.user.Username
}

// CanEditPricing reports whether price edits, product swaps and the VAT
// override are allowed right now.
func (s *SessionService) CanEditPricing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.elevated {
		return true
	}
	return s.user.CanEditPricing()
}

// ElevateWithPIN elevates the session by verifying a manager's PIN
// against the bcrypt hash on their profile.
func (s *SessionService) ElevateWithPIN(username, pin string) error {
	if s.api == nil {
		return fmt.Errorf("operator profiles are not available")
	}

	approver, err := s.api.GetUser(username)
	if err != nil {
		return fmt.Errorf("failed to load approver profile: %w", err)
	}

	if !approver.CanEditPricing() {
		return validationErr(CodeNotAllowed, "approver does not have pricing privileges")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(approver.PinHash), []byte(pin)); err != nil {
		return validationErr(CodeNotAllowed, "invalid PIN")
	}

	s.mu.Lock()
	s.elevated = true
	s.mu.Unlock()
	return nil
}

// DropElevation ends a temporary elevation.
func (s *SessionService) DropElevation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elevated = false
}
