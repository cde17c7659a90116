package services

import (
	"fmt"
	"sync"

	"DataPos/app/models"
)

// SettingsAPI is the back-office settings surface.
type SettingsAPI interface {
	GetCompanySettings() (*models.CompanySettings, error)
	GetCommentTemplates() ([]models.CommentTemplate, error)
}

// SettingsService caches the seller identity and the canned receipt
// comments. The cache survives back-office outages so receipts keep
// printing with the last known company header.
type SettingsService struct {
	mu        sync.Mutex
	api       SettingsAPI
	company   *models.CompanySettings
	templates []models.CommentTemplate
}

// NewSettingsService creates a settings service.
func NewSettingsService(api SettingsAPI) *SettingsService {
	return &SettingsService{api: api}
}

// Refresh fetches company settings and comment templates.
func (s *SettingsService) Refresh() error {
	company, err := s.api.GetCompanySettings()
	if err != nil {
		return fmt.Errorf("failed to refresh company settings: %w", err)
	}

	templates, err := s.api.GetCommentTemplates()
	if err != nil {
		return fmt.Errorf("failed to refresh comment templates: %w", err)
	}

	s.mu.Lock()
	s.company = company
	s.templates = templates
	s.mu.Unlock()
	return nil
}

// Company returns the cached seller identity, never nil.
func (s *SettingsService) Company() *models.CompanySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.company == nil {
		return &models.CompanySettings{}
	}
	snapshot := *s.company
	return &snapshot
}

// Templates returns the cached comment templates.
func (s *SettingsService) Templates() []models.CommentTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	templates := make([]models.CommentTemplate, len(s.templates))
	copy(templates, s.templates)
	return templates
}

// DefaultComment returns the default active template content, or empty
// when none is configured.
func (s *SettingsService) DefaultComment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.templates {
		if t.IsDefault && t.IsActive {
			return t.Content
		}
	}
	return ""
}
