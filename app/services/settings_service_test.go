package services_test

import (
	"fmt"
	"testing"

	"DataPos/app/models"
	"DataPos/app/services"
)

type stubSettingsAPI struct {
	company   *models.CompanySettings
	templates []models.CommentTemplate
	err       error
}

func (s *stubSettingsAPI) GetCompanySettings() (*models.CompanySettings, error) {
	return s.company, s.err
}

func (s *stubSettingsAPI) GetCommentTemplates() ([]models.CommentTemplate, error) {
	return s.templates, s.err
}

func TestSettingsCompanyNeverNil(t *testing.T) {
	settings := services.NewSettingsService(&stubSettingsAPI{})
	if settings.Company() == nil {
		t.Fatal("Company returned nil before the first refresh")
	}
}

func TestSettingsCacheSurvivesOutage(t *testing.T) {
	api := &stubSettingsAPI{
		company: &models.CompanySettings{Name: "Market Drini", NUI: "811234567"},
	}
	settings := services.NewSettingsService(api)

	if err := settings.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// The back office goes away; the cached identity stays serveable
	api.err = fmt.Errorf("connection refused")
	if err := settings.Refresh(); err == nil {
		t.Error("expected Refresh to report the outage")
	}
	if got := settings.Company().Name; got != "Market Drini" {
		t.Errorf("Company().Name = %q after outage, want the cached value", got)
	}
}

func TestSettingsDefaultComment(t *testing.T) {
	api := &stubSettingsAPI{
		company: &models.CompanySettings{Name: "Market Drini"},
		templates: []models.CommentTemplate{
			{ID: 1, Title: "Inactive", Content: "old", IsDefault: true, IsActive: false},
			{ID: 2, Title: "Greeting", Content: "Ju presim përsëri!", IsDefault: true, IsActive: true},
			{ID: 3, Title: "Other", Content: "x", IsActive: true},
		},
	}
	settings := services.NewSettingsService(api)
	if err := settings.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := settings.DefaultComment(); got != "Ju presim përsëri!" {
		t.Errorf("DefaultComment = %q, want the active default", got)
	}

	api.templates = nil
	settings.Refresh()
	if got := settings.DefaultComment(); got != "" {
		t.Errorf("DefaultComment = %q with no templates, want empty", got)
	}
}
